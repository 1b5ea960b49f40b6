package helpers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/incilens-org/incilens/engine"
	"github.com/incilens-org/incilens/schema"
)

// ============================================================================
// CSV HELPERS — Raw bytes → rows the core can consume
// ============================================================================
// The consumer reads the CSV from wherever it lives (file, S3, export).
// These helpers only convert bytes into raw rows for schema.Normalize and
// into a population lookup for the per-capita join.
// ============================================================================

// ParseIncidents parses CSV bytes into raw rows keyed by the header's
// source field names. Malformed rows are skipped; cell interpretation is
// schema.Normalize's job.
func ParseIncidents(data []byte) ([]schema.RawRecord, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	var rows []schema.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		rec := make(schema.RawRecord, len(headers))
		for i, val := range row {
			if i >= len(headers) {
				break
			}
			rec[headers[i]] = strings.TrimSpace(val)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// ParsePopulation parses a two-column (entity, population) CSV into a
// PopulationLookup. Rows with an unparseable population are omitted —
// absence is the lookup's way of saying "no baseline", and the per-capita
// join handles it explicitly.
func ParsePopulation(data []byte) (engine.PopulationLookup, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read population CSV headers: %w", err)
	}
	if len(headers) < 2 {
		return nil, fmt.Errorf("population CSV needs entity and population columns, got %d", len(headers))
	}

	lookup := make(engine.PopulationLookup)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		pop, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil || name == "" {
			continue
		}
		lookup[name] = pop
	}
	return lookup, nil
}

// WithAliases derives a new lookup where each alias resolves to its
// canonical entry's population ("Russia" → "Russian Federation"). Aliases
// whose canonical name has no population stay absent. The input lookup is
// unchanged.
func WithAliases(lookup engine.PopulationLookup, aliases map[string]string) engine.PopulationLookup {
	out := make(engine.PopulationLookup, len(lookup)+len(aliases))
	for k, v := range lookup {
		out[k] = v
	}
	for alias, canonical := range aliases {
		if pop, ok := lookup[canonical]; ok {
			out[alias] = pop
		}
	}
	return out
}

// Head returns the first n rows — a development-size subset of a large
// export. n past the end returns everything.
func Head(rows []schema.RawRecord, n int) []schema.RawRecord {
	if n < 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}
