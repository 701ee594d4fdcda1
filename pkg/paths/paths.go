// Package paths derives the deterministic file layout of both pipelines from
// an identifier and the data and results base directories.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/omicsfetch/omicsfetch/pkg/defaults"
)

// Dirs holds the two base directories.
type Dirs struct {
	Data    string
	Results string
}

// Ensure creates both directories.
func (d Dirs) Ensure() error {
	for _, dir := range []string{d.Data, d.Results} {
		if dir == "" {
			return fmt.Errorf("base directory is not set")
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// GEO is the file layout of the GEO pipeline for one accession.
type GEO struct {
	ID string

	// Archive is the canonical raw SOFT family archive.
	Archive string

	// ParserArchive is the provider's default file name, which the SOFT
	// parser uses to infer the record type.
	ParserArchive string

	// Cache is the parsed-object cache.
	Cache string

	// Phenotypes is the exported CSV.
	Phenotypes string

	// Log is the run log.
	Log string
}

// ForGEO returns the layout for accession id and creates both base directories.
func ForGEO(dirs Dirs, id string) (*GEO, error) {
	if err := dirs.Ensure(); err != nil {
		return nil, err
	}
	tag := defaults.GEOTag
	return &GEO{
		ID:            id,
		Archive:       filepath.Join(dirs.Data, fmt.Sprintf("%s_%s_family.soft.gz", tag, id)),
		ParserArchive: filepath.Join(dirs.Data, ProviderFileName(id)),
		Cache:         filepath.Join(dirs.Data, fmt.Sprintf("%s_%s_gse_object.json.zlib", tag, id)),
		Phenotypes:    filepath.Join(dirs.Results, fmt.Sprintf("%s_%s_phenotypes.csv", tag, id)),
		Log:           filepath.Join(dirs.Results, fmt.Sprintf("%s_download_dataset_%s.txt", tag, id)),
	}, nil
}

// ProviderFileName is the name GEO gives a series family archive.
func ProviderFileName(id string) string {
	return id + "_family.soft.gz"
}

// Annotation is the file layout of the annotation pipeline for one tag.
type Annotation struct {
	Tag string

	// Archive is the downloaded package.
	Archive string

	// ExtractDir receives the archive contents.
	ExtractDir string

	// Merged is the merged annotation CSV.
	Merged string

	// Log is the run log.
	Log string
}

// ForAnnotation returns the layout for tag and creates both base directories.
// label names the run log and defaults to tag when empty.
func ForAnnotation(dirs Dirs, tag, label string) (*Annotation, error) {
	if err := dirs.Ensure(); err != nil {
		return nil, err
	}
	if label == "" {
		label = tag
	}
	stage := defaults.AnnotationTag
	lower := strings.ToLower(tag)
	return &Annotation{
		Tag:        tag,
		Archive:    filepath.Join(dirs.Data, tag+"_annotation.tar.gz"),
		ExtractDir: filepath.Join(dirs.Data, fmt.Sprintf("%s_%s_annotation", stage, lower)),
		Merged:     filepath.Join(dirs.Data, fmt.Sprintf("%s_%s_annotation_merged.csv", stage, lower)),
		Log:        filepath.Join(dirs.Results, fmt.Sprintf("%s_extract_annotation_%s.txt", stage, label)),
	}, nil
}
