package geo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/omicsfetch/omicsfetch/pkg/errors"
	"github.com/omicsfetch/omicsfetch/pkg/geo/soft"
	"github.com/omicsfetch/omicsfetch/pkg/table"
)

// SampleIDColumn is the first column of the phenotype table.
const SampleIDColumn = "sample_id"

// Count is the number of occurrences of one raw field value.
type Count struct {
	Label string
	N     int
}

// Summary is the result of summarizing one metadata field.
type Summary struct {
	Field string

	// Counts tallies raw values in first-seen order.
	Counts []Count

	// Table has one row per sample.
	Table *table.Table

	// Present is the number of samples carrying the field.
	Present int
}

// Summarize tallies field across samples and builds one record per sample
// from its "key: value" entries. Entries are split on the first colon; the
// key is trimmed and lower-cased, the value trimmed. Entries without a colon
// only count in the tally.
func Summarize(s *soft.Series, field string) *Summary {
	lower := cases.Lower(language.Und)
	sum := &Summary{Field: field}
	index := map[string]int{}
	records := make([]*table.Record, 0, len(s.Samples))

	for _, sample := range s.Samples {
		rec := table.NewRecord()
		rec.Set(SampleIDColumn, sample.Accession)

		values, ok := sample.Metadata.Get(field)
		if ok && len(values) > 0 {
			sum.Present++
		}
		for _, item := range values {
			if i, seen := index[item]; seen {
				sum.Counts[i].N++
			} else {
				index[item] = len(sum.Counts)
				sum.Counts = append(sum.Counts, Count{Label: item, N: 1})
			}

			k, v, found := strings.Cut(item, ":")
			if !found {
				continue
			}
			rec.Set(lower.String(strings.TrimSpace(k)), strings.TrimSpace(v))
		}
		records = append(records, rec)
	}

	sum.Table = table.FromRecords(records)
	return sum
}

// SummarizeAndExport logs the tally of field and writes the phenotype CSV.
// When no sample carries field, the closest metadata key is suggested.
func (f *Fetcher) SummarizeAndExport(ctx context.Context, s *soft.Series, field string) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := Summarize(s, field)

	f.log.Info(fmt.Sprintf("metadata summary: %s", field))
	for _, c := range sum.Counts {
		f.log.Info(fmt.Sprintf("  %s: %d", c.Label, c.N))
	}
	if sum.Present == 0 {
		attrs := []any{slog.String("field", field)}
		if suggestion := closestKey(s, field); suggestion != "" {
			attrs = append(attrs, slog.String("did_you_mean", suggestion))
		}
		f.log.Warn("no sample carries the requested field", attrs...)
	}

	if err := table.WriteCSV(f.paths.Phenotypes, sum.Table); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to export phenotype CSV", err)
	}
	f.log.Info("parsed phenotype CSV saved",
		slog.String("path", f.paths.Phenotypes),
		slog.Int("rows", len(sum.Table.Rows)),
		slog.Int("columns", len(sum.Table.Columns)))

	return sum, nil
}

// closestKey returns the sample metadata key with the smallest edit distance
// to field, or "" when there are no keys.
func closestKey(s *soft.Series, field string) string {
	best, bestDist := "", -1
	seen := map[string]bool{}
	for _, sample := range s.Samples {
		for _, key := range sample.Metadata.Keys() {
			if seen[key] {
				continue
			}
			seen[key] = true
			if d := levenshtein.ComputeDistance(field, key); bestDist < 0 || d < bestDist {
				best, bestDist = key, d
			}
		}
	}
	return best
}
