// Package geo downloads, parses, caches and summarizes NCBI GEO series.
//
// A Fetcher runs the GEO pipeline operations for one accession:
//
//	DownloadArchive     fetch <ID>_family.soft.gz unless the canonical archive is cached
//	LoadOrParse         decode the parsed-series cache, or parse the archive and cache it
//	InspectRecord       log the first metadata fields of one sample
//	SummarizeAndExport  tally a metadata field and export one CSV row per sample
//	VerifyCache         reload the cache and log what it holds (never fails)
//
// Downloads go through a Provider; Client is the HTTPS implementation
// against the GEO FTP mirror.
package geo
