package defaults

import "time"

// HTTP timeouts.
const (
	// AnnotationHTTPTimeout is the default per-request timeout for annotation downloads.
	AnnotationHTTPTimeout = 60 * time.Second

	// GEOHTTPTimeout is the default per-request timeout for GEO SOFT downloads.
	GEOHTTPTimeout = 5 * time.Minute

	// RBridgeTimeout bounds a single Rscript conversion.
	RBridgeTimeout = 10 * time.Minute
)

// Remote endpoints.
const (
	// GEOBaseURL is the root of the NCBI GEO FTP mirror served over HTTPS.
	GEOBaseURL = "https://ftp.ncbi.nlm.nih.gov/geo"

	// AnnotationURL is the Bioconductor Illumina 450k hg19 annotation package.
	AnnotationURL = "https://bioconductor.org/packages/release/data/annotation/src/contrib/IlluminaHumanMethylation450kanno.ilmn12.hg19_0.6.1.tar.gz"
)

// Pipeline identity.
const (
	// GEOTag prefixes every GEO pipeline output.
	GEOTag = "s00005"

	// AnnotationTag prefixes every annotation pipeline output.
	AnnotationTag = "s00007"

	// GEOAccession is the default GEO series.
	GEOAccession = "GSE40279"

	// PhenotypeField is the sample metadata field summarized by default.
	PhenotypeField = "characteristics_ch1"

	// AnnotationName is the default annotation tag.
	AnnotationName = "Illumina450k"

	// RscriptBinary is the default statistical bridge executable.
	RscriptBinary = "Rscript"
)

// Monitoring and logging.
const (
	// DiskPath is the filesystem path whose usage is reported.
	DiskPath = "."

	// InspectFieldCount is how many metadata fields are logged per inspected record.
	InspectFieldCount = 5

	// DownloadProgressInterval throttles download progress log lines.
	DownloadProgressInterval = 5 * time.Second

	// CacheCompressionLevel is the zlib level for parsed-object caches.
	CacheCompressionLevel = 3

	// ManifestFormat is the serialization format of manifest sidecars.
	ManifestFormat = "yaml"
)
