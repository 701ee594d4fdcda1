package annotation

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omicsfetch/omicsfetch/pkg/errors"
	"github.com/omicsfetch/omicsfetch/pkg/fetch"
	"github.com/omicsfetch/omicsfetch/pkg/paths"
	"github.com/omicsfetch/omicsfetch/pkg/step"
	"github.com/omicsfetch/omicsfetch/pkg/table"
)

// fakeBridge returns canned tables keyed by lower-cased file name.
type fakeBridge struct {
	available bool
	tables    map[string]*table.Table
	loads     []string
}

func (b *fakeBridge) Available() bool { return b.available }

func (b *fakeBridge) LoadTable(_ context.Context, path string) (*table.Table, error) {
	b.loads = append(b.loads, path)
	t, ok := b.tables[strings.ToLower(filepath.Base(path))]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, path)
	}
	return t, nil
}

func newBridge() *fakeBridge {
	return &fakeBridge{
		available: true,
		tables: map[string]*table.Table{
			LocationsFile: {
				Columns: []string{"CpG", "chr", "pos"},
				Rows:    [][]string{{"cg1", "chr1", "100"}, {"cg2", "chr2", "200"}, {"cg3", "chrX", "300"}},
			},
			OtherFile: {
				Columns: []string{"CpG", "UCSC_RefGene_Name"},
				Rows:    [][]string{{"cg3", "GENE3"}, {"cg1", "GENE1"}},
			},
		},
	}
}

func tarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, body := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(body)),
		}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func annotationPackage(t *testing.T) []byte {
	return tarGz(t, map[string]string{
		"pkg/DESCRIPTION":        "Package: anno",
		"pkg/data/Locations.rda": "rda",
		"pkg/data/Other.rda":     "rda",
	})
}

type server struct {
	*httptest.Server
	hits atomic.Int32
}

func serve(t *testing.T, body []byte) *server {
	t.Helper()
	s := &server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.hits.Add(1)
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func newTestFetcher(t *testing.T, url string, opts ...Option) *Fetcher {
	t.Helper()
	root := t.TempDir()
	p, err := paths.ForAnnotation(paths.Dirs{
		Data:    filepath.Join(root, "data"),
		Results: filepath.Join(root, "results"),
	}, "Illumina450k", "")
	require.NoError(t, err)
	return NewFetcher(p, url, fetch.NewDownloader(), opts...)
}

func TestRun_FullPipeline(t *testing.T) {
	srv := serve(t, annotationPackage(t))
	bridge := newBridge()
	f := newTestFetcher(t, srv.URL+"/anno.tar.gz", WithBridge(bridge), WithRunID("run-1"))

	require.NoError(t, f.Run(context.Background(), step.NewRunner(nil), true))

	merged, err := table.ReadCSV(f.Paths().Merged)
	require.NoError(t, err)
	assert.Equal(t, []string{"CpG", "chr", "pos", "UCSC_RefGene_Name"}, merged.Columns)
	assert.Equal(t, [][]string{
		{"cg1", "chr1", "100", "GENE1"},
		{"cg3", "chrX", "300", "GENE3"},
	}, merged.Rows)
	assert.Len(t, bridge.loads, 2)

	_, err = os.Stat(filepath.Join(f.Paths().ExtractDir, "pkg", "DESCRIPTION"))
	assert.NoError(t, err)
}

func TestRun_SecondRunSkipsDownload(t *testing.T) {
	srv := serve(t, annotationPackage(t))
	f := newTestFetcher(t, srv.URL)

	r := step.NewRunner(nil)
	require.NoError(t, f.Run(context.Background(), r, false))
	require.NoError(t, f.Run(context.Background(), r, false))
	assert.Equal(t, int32(1), srv.hits.Load())
}

func TestRun_SkipsRDAWithoutBridge(t *testing.T) {
	srv := serve(t, annotationPackage(t))
	bridge := newBridge()
	bridge.available = false
	f := newTestFetcher(t, srv.URL, WithBridge(bridge))

	require.NoError(t, f.Run(context.Background(), step.NewRunner(nil), true))

	assert.Empty(t, bridge.loads)
	_, err := os.Stat(f.Paths().Merged)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_SkipsRDAWhenNotRequested(t *testing.T) {
	srv := serve(t, annotationPackage(t))
	bridge := newBridge()
	f := newTestFetcher(t, srv.URL, WithBridge(bridge))

	require.NoError(t, f.Run(context.Background(), step.NewRunner(nil), false))
	assert.Empty(t, bridge.loads)
}

func TestRun_RejectsTraversal(t *testing.T) {
	srv := serve(t, tarGz(t, map[string]string{"../evil.txt": "x"}))
	f := newTestFetcher(t, srv.URL)

	err := f.Run(context.Background(), step.NewRunner(nil), false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnsafeArchive), "got %v", err)

	_, statErr := os.Stat(filepath.Join(filepath.Dir(f.Paths().ExtractDir), "evil.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_HTTPErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	f := newTestFetcher(t, srv.URL)

	err := f.Run(context.Background(), step.NewRunner(nil), false)
	require.Error(t, err)
	_, statErr := os.Stat(f.Paths().Archive)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_MissingRDAIsFatal(t *testing.T) {
	srv := serve(t, tarGz(t, map[string]string{"pkg/data/Locations.rda": "rda"}))
	f := newTestFetcher(t, srv.URL, WithBridge(newBridge()))

	err := f.Run(context.Background(), step.NewRunner(nil), true)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound), "got %v", err)
}

func TestDiscoverRDA(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "data", "LOCATIONS.RDA"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "other.rda"), nil, 0o644))

	files, err := DiscoverRDA(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "data", "LOCATIONS.RDA"), files.Locations)
	assert.Equal(t, filepath.Join(root, "a", "other.rda"), files.Other)
}

func TestDiscoverRDA_Missing(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Other.rda"), nil, 0o644))

	_, err := DiscoverRDA(root)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	assert.Contains(t, err.Error(), LocationsFile)
	assert.NotContains(t, err.Error(), OtherFile)
}

func TestLoadAndMerge_OverlappingColumns(t *testing.T) {
	bridge := newBridge()
	bridge.tables[OtherFile] = &table.Table{Columns: []string{"CpG", "chr"}, Rows: [][]string{{"cg1", "chr1"}}}
	f := newTestFetcher(t, "http://unused", WithBridge(bridge))

	_, err := f.LoadAndMerge(context.Background(), &Files{Locations: "/x/Locations.rda", Other: "/x/Other.rda"})
	assert.Error(t, err)
}

func TestLoadAndMerge_NoBridge(t *testing.T) {
	f := newTestFetcher(t, "http://unused")

	_, err := f.LoadAndMerge(context.Background(), &Files{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnavailable))
}
