package soft

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownType is returned when the record type cannot be inferred.
var ErrUnknownType = errors.New("unknown GEO type")

const (
	maxLineSize = 64 * 1024 * 1024

	// ctx is checked every checkEvery lines.
	checkEvery = 4096
)

var gzipMagic = []byte{0x1f, 0x8b}

// ParseFile parses path, inferring the record type from its base name.
// A name that does not start with a known type prefix yields ErrUnknownType.
func ParseFile(ctx context.Context, path string) (*Document, error) {
	t, err := TypeOf(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return parseFile(ctx, path, t)
}

// ParseFileAs parses path as the record type of accession, regardless of
// the file name.
func ParseFileAs(ctx context.Context, path, accession string) (*Document, error) {
	t, err := TypeOf(accession)
	if err != nil {
		return nil, err
	}
	return parseFile(ctx, path, t)
}

func parseFile(ctx context.Context, path string, t Type) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Parse(ctx, f, t)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	slog.Debug("parsed SOFT file",
		slog.String("path", path),
		slog.String("type", string(t)),
		slog.Int("entities", len(doc.Entities)))
	return doc, nil
}

// Parse reads a SOFT document of type t from r. Gzip input is detected
// from its magic bytes.
func Parse(ctx context.Context, r io.Reader, t Type) (*Document, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var src io.Reader = br
	if bytes.Equal(head, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	p := &parser{doc: &Document{Type: t}}
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for n := 1; scanner.Scan(); n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := p.line(strings.TrimRight(scanner.Text(), "\r")); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read SOFT data: %w", err)
	}
	if p.inTable {
		return nil, fmt.Errorf("unterminated data table in %s %s", p.cur.Kind, p.cur.Accession)
	}
	if len(p.doc.Entities) == 0 {
		return nil, fmt.Errorf("no SOFT entities found")
	}

	return p.doc, nil
}

type parser struct {
	doc          *Document
	cur          *Entity
	descriptions map[string]string
	inTable      bool
	needHeader   bool
}

func (p *parser) line(line string) error {
	if p.inTable {
		return p.tableLine(line)
	}
	if strings.TrimSpace(line) == "" {
		return nil
	}

	switch line[0] {
	case '^':
		key, value := splitEntry(line[1:])
		p.cur = &Entity{Kind: strings.ToUpper(key), Accession: value}
		p.descriptions = map[string]string{}
		p.doc.Entities = append(p.doc.Entities, p.cur)
	case '!':
		key, value := splitEntry(line[1:])
		if strings.HasSuffix(strings.ToLower(key), "_table_begin") {
			if p.cur == nil {
				return fmt.Errorf("data table outside of an entity")
			}
			p.inTable, p.needHeader = true, true
			p.cur.Table = &Table{}
			return nil
		}
		if p.cur == nil {
			return nil
		}
		p.cur.Metadata.Add(stripPrefix(key), value)
	case '#':
		if p.cur != nil {
			name, desc := splitEntry(line[1:])
			p.descriptions[name] = desc
		}
	}
	return nil
}

func (p *parser) tableLine(line string) error {
	if strings.HasPrefix(line, "!") && strings.HasSuffix(strings.ToLower(strings.TrimSpace(line)), "_table_end") {
		p.inTable = false
		return nil
	}
	if p.needHeader {
		for _, name := range strings.Split(line, "\t") {
			p.cur.Table.Columns = append(p.cur.Table.Columns, Column{Name: name, Description: p.descriptions[name]})
		}
		p.needHeader = false
		return nil
	}
	if strings.TrimSpace(line) != "" {
		p.cur.Table.Rows++
	}
	return nil
}

// splitEntry splits "key = value" on the first "=".
func splitEntry(s string) (string, string) {
	key, value, found := strings.Cut(s, "=")
	if !found {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(key), strings.TrimSpace(value)
}

// stripPrefix removes the entity prefix: "Sample_title" -> "title".
func stripPrefix(key string) string {
	if _, rest, found := strings.Cut(key, "_"); found && rest != "" {
		return rest
	}
	return key
}
