package geo

import (
	"compress/zlib"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/omicsfetch/omicsfetch/pkg/geo/soft"
)

// SaveSeries writes s to path as zlib-compressed JSON. The file is written
// next to path and renamed into place.
func SaveSeries(path string, s *soft.Series, level int) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	zw, err := zlib.NewWriterLevel(tmp, level)
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("invalid compression level %d: %w", level, err)
	}
	if err := json.NewEncoder(zw).Encode(s); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode series: %w", err)
	}
	if err := zw.Close(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to compress series: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move cache file into %s: %w", path, err)
	}
	return nil
}

// LoadSeries reads a series written by SaveSeries.
func LoadSeries(path string) (*soft.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open compressed cache: %w", err)
	}
	defer zr.Close()

	var s soft.Series
	if err := json.NewDecoder(zr).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode cached series: %w", err)
	}
	return &s, nil
}
