package soft

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = "testdata/GSE1000_family.soft"

func readFixture(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile(fixture)
	require.NoError(t, err)
	return b
}

func writeGzip(t *testing.T, path string, content []byte) {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"GSE40279", TypeSeries, false},
		{"GSE40279_family.soft.gz", TypeSeries, false},
		{"gsm123", TypeSample, false},
		{"GPL13534", TypePlatform, false},
		{"GDS507", TypeDataset, false},
		{"s00005_GSE40279_family.soft.gz", "", true},
		{"GS", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := TypeOf(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Series(t *testing.T) {
	doc, err := Parse(context.Background(), bytes.NewReader(readFixture(t)), TypeSeries)
	require.NoError(t, err)
	require.Len(t, doc.Entities, 6)

	s, err := doc.Series()
	require.NoError(t, err)

	assert.Equal(t, "GSE1000", s.Accession)
	ids, ok := s.Metadata.Get("sample_id")
	require.True(t, ok)
	assert.Equal(t, []string{"GSM1", "GSM2", "GSM3"}, ids)
	assert.Equal(t, []string{"title", "geo_accession", "sample_id"}, s.Metadata.Keys())

	require.Len(t, s.Platforms, 1)
	assert.Equal(t, 2, s.Platforms[0].Table.Rows)
	assert.Equal(t, "platform identifier", s.Platforms[0].Table.Columns[0].Description)

	require.Len(t, s.Samples, 3)
	first := s.Samples[0]
	assert.Equal(t, "GSM1", first.Accession)
	chars, _ := first.Metadata.Get("characteristics_ch1")
	assert.Equal(t, []string{"age (y): 67", "gender: F"}, chars)
	desc, _ := first.Metadata.Get("description")
	assert.Equal(t, []string{"ratio=0.5"}, desc)
	require.NotNil(t, first.Table)
	assert.Equal(t, []Column{{Name: "ID_REF"}, {Name: "VALUE", Description: "beta value"}}, first.Table.Columns)
	assert.Equal(t, 2, first.Table.Rows)

	assert.Nil(t, s.Samples[1].Table)
}

func TestParse_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GSE1000_family.soft.gz")
	writeGzip(t, path, readFixture(t))

	doc, err := ParseFile(context.Background(), path)
	require.NoError(t, err)
	s, err := doc.Series()
	require.NoError(t, err)
	assert.Len(t, s.Samples, 3)
}

func TestParseFile_UnknownTypeFromName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s00005_GSE1000_family.soft.gz")
	writeGzip(t, path, readFixture(t))

	_, err := ParseFile(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownType))

	doc, err := ParseFileAs(context.Background(), path, "GSE1000")
	require.NoError(t, err)
	assert.Equal(t, TypeSeries, doc.Type)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no entities", "!Series_title = x\n"},
		{"unterminated table", "^SAMPLE = GSM1\n!sample_table_begin\nID_REF\tVALUE\n"},
		{"table outside entity", "!sample_table_begin\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), strings.NewReader(tt.input), TypeSeries)
			assert.Error(t, err)
		})
	}
}

func TestParse_CorruptGzip(t *testing.T) {
	input := append([]byte{0x1f, 0x8b}, []byte("not really gzip")...)
	_, err := Parse(context.Background(), bytes.NewReader(input), TypeSeries)
	assert.Error(t, err)
}

func TestDocument_SeriesRequiresGSE(t *testing.T) {
	doc, err := Parse(context.Background(), strings.NewReader("^SAMPLE = GSM1\n!Sample_title = x\n"), TypeSample)
	require.NoError(t, err)

	_, err = doc.Series()
	assert.Error(t, err)

	doc.Type = TypeSeries
	_, err = doc.Series()
	assert.Error(t, err, "no SERIES entity")
}

func TestMetadata_AddKeepsOrder(t *testing.T) {
	var m Metadata
	m.Add("b", "1")
	m.Add("a", "2")
	m.Add("b", "3")

	assert.Equal(t, []string{"b", "a"}, m.Keys())
	v, ok := m.Get("b")
	assert.True(t, ok)
	assert.Equal(t, []string{"1", "3"}, v)
	_, ok = m.Get("c")
	assert.False(t, ok)
}

func TestSeries_Sample(t *testing.T) {
	s := &Series{Samples: []*Entity{{Accession: "GSM1"}}}

	e, ok := s.Sample(0)
	require.True(t, ok)
	assert.Equal(t, "GSM1", e.Accession)

	_, ok = s.Sample(1)
	assert.False(t, ok)
	_, ok = s.Sample(-1)
	assert.False(t, ok)
}
