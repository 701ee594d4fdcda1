package soft

import (
	"fmt"
	"strings"
)

// Type is a GEO record type, taken from the first three characters of an
// accession or file name.
type Type string

const (
	TypeSeries   Type = "GSE"
	TypeSample   Type = "GSM"
	TypePlatform Type = "GPL"
	TypeDataset  Type = "GDS"
)

// Entity kinds as they appear after "^".
const (
	KindDatabase = "DATABASE"
	KindSeries   = "SERIES"
	KindPlatform = "PLATFORM"
	KindSample   = "SAMPLE"
	KindDataset  = "DATASET"
	KindSubset   = "SUBSET"
)

// SupportedTypes returns the record types the parser accepts.
func SupportedTypes() []Type {
	return []Type{TypeSeries, TypeSample, TypePlatform, TypeDataset}
}

// TypeOf infers the record type from an accession or file base name.
func TypeOf(name string) (Type, error) {
	if len(name) < 3 {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	t := Type(strings.ToUpper(name[:3]))
	for _, s := range SupportedTypes() {
		if t == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, name[:3])
}

// Field is one attribute with all of its values.
type Field struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// Metadata is an ordered attribute list. Keys keep their first-seen order.
type Metadata []Field

// Add appends value to key, creating the field if needed.
func (m *Metadata) Add(key, value string) {
	for i := range *m {
		if (*m)[i].Key == key {
			(*m)[i].Values = append((*m)[i].Values, value)
			return
		}
	}
	*m = append(*m, Field{Key: key, Values: []string{value}})
}

// Get returns the values of key.
func (m Metadata) Get(key string) ([]string, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Values, true
		}
	}
	return nil, false
}

// Keys returns all keys in order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, f := range m {
		keys = append(keys, f.Key)
	}
	return keys
}

// Column is a data table column.
type Column struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Table is the shape of an entity's data table.
type Table struct {
	Columns []Column `json:"columns"`
	Rows    int      `json:"rows"`
}

// Entity is one "^KIND = accession" block.
type Entity struct {
	Kind      string   `json:"kind"`
	Accession string   `json:"accession"`
	Metadata  Metadata `json:"metadata"`
	Table     *Table   `json:"table,omitempty"`
}

// Document is a parsed SOFT file.
type Document struct {
	Type     Type      `json:"type"`
	Entities []*Entity `json:"entities"`
}

// Series is the view of a GSE family file used by the pipelines.
type Series struct {
	Accession string    `json:"accession"`
	Metadata  Metadata  `json:"metadata"`
	Platforms []*Entity `json:"platforms,omitempty"`
	Samples   []*Entity `json:"samples"`
}

// Sample returns the sample at index i.
func (s *Series) Sample(i int) (*Entity, bool) {
	if i < 0 || i >= len(s.Samples) {
		return nil, false
	}
	return s.Samples[i], true
}

// Series builds the series view. The document must be of type GSE and hold
// exactly one SERIES entity.
func (d *Document) Series() (*Series, error) {
	if d.Type != TypeSeries {
		return nil, fmt.Errorf("document type is %s, not %s", d.Type, TypeSeries)
	}

	s := &Series{}
	found := 0
	for _, e := range d.Entities {
		switch e.Kind {
		case KindSeries:
			found++
			s.Accession = e.Accession
			s.Metadata = e.Metadata
		case KindPlatform:
			s.Platforms = append(s.Platforms, e)
		case KindSample:
			s.Samples = append(s.Samples, e)
		}
	}

	if found != 1 {
		return nil, fmt.Errorf("expected one %s entity, found %d", KindSeries, found)
	}
	return s, nil
}
