package geo

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/omicsfetch/omicsfetch/pkg/paths"
)

const seriesSOFT = `^DATABASE = GeoMiame
!Database_name = Gene Expression Omnibus (GEO)
^SERIES = GSE1000
!Series_title = Methylation across age
!Series_geo_accession = GSE1000
!Series_status = Public
!Series_submission_date = Jan 01 2020
!Series_summary = test
!Series_type = Methylation profiling by array
^SAMPLE = GSM1
!Sample_title = donor one
!Sample_geo_accession = GSM1
!Sample_status = Public
!Sample_source_name_ch1 = whole blood
!Sample_organism_ch1 = Homo sapiens
!Sample_characteristics_ch1 = Age (y): 45
!Sample_characteristics_ch1 = Sex: female
!Sample_characteristics_ch1 = batch7
^SAMPLE = GSM2
!Sample_title = donor two
!Sample_geo_accession = GSM2
!Sample_characteristics_ch1 = age (y):  89 
!Sample_characteristics_ch1 = tissue: blood
`

// fakeProvider writes the series fixture under the provider's file name.
type fakeProvider struct {
	calls   int
	content []byte
	err     error
}

func (p *fakeProvider) Download(_ context.Context, id, destDir string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	dest := filepath.Join(destDir, paths.ProviderFileName(id))
	return dest, os.WriteFile(dest, p.content, 0o644)
}

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newTestFetcher(t *testing.T, id string) (*Fetcher, *fakeProvider) {
	t.Helper()
	root := t.TempDir()
	p, err := paths.ForGEO(paths.Dirs{Data: filepath.Join(root, "data"), Results: filepath.Join(root, "results")}, id)
	require.NoError(t, err)

	provider := &fakeProvider{content: gzipBytes(t, seriesSOFT)}
	return NewFetcher(p, provider, WithRunID("test-run")), provider
}
