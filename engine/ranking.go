package engine

import (
	"fmt"
	"sort"
)

// ============================================================================
// RANKING — Deterministic sorting, top-N extraction, rank queries
// ============================================================================
// Aggregation leaves row order unspecified; this is the one place order is
// imposed. Ties are never left to an unstable sort — reproducible reports
// need the same ranking on every run, so equal metric values fall back to a
// secondary metric when configured and to lexicographic key order always.
// ============================================================================

// RankOption configures TopN and RankOf ordering.
type RankOption func(*rankConfig)

type rankConfig struct {
	Ascending     bool
	TieBreak      string // secondary metric name, "" = none
	TieBreakValue bool
}

// Ascending sorts smallest-first instead of the default largest-first.
func Ascending() RankOption {
	return func(c *rankConfig) { c.Ascending = true }
}

// TieBreakMetric breaks primary-metric ties with a secondary metric before
// falling back to key order.
func TieBreakMetric(metric string) RankOption {
	return func(c *rankConfig) {
		c.TieBreak = metric
		c.TieBreakValue = true
	}
}

// sortRows returns the table's rows in full ranked order.
func sortRows(a AggregateTable, metric string, cfg *rankConfig) []AggregateRow {
	rows := a.Rows()
	sort.SliceStable(rows, func(i, j int) bool {
		vi, vj := rows[i].Metric(metric), rows[j].Metric(metric)
		if vi != vj {
			if cfg.Ascending {
				return vi < vj
			}
			return vi > vj
		}
		if cfg.TieBreakValue {
			ti, tj := rows[i].Metric(cfg.TieBreak), rows[j].Metric(cfg.TieBreak)
			if ti != tj {
				if cfg.Ascending {
					return ti < tj
				}
				return ti > tj
			}
		}
		// fixed total order on the key, regardless of sort direction
		return rows[i].KeyString() < rows[j].KeyString()
	})
	return rows
}

// TopN returns the n rows with the extreme metric values, in rank order.
// The result is always a prefix of the full sort — no row appears at rank k
// unless every better row appears before it. Fewer than n rows is not an
// error; a negative n is.
func TopN(a AggregateTable, metric string, n int, opts ...RankOption) ([]AggregateRow, error) {
	if n < 0 {
		return nil, &InvalidArgumentError{Reason: fmt.Sprintf("topN size %d is negative", n)}
	}
	cfg := &rankConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	rows := sortRows(a, metric, cfg)
	if n < len(rows) {
		rows = rows[:n]
	}
	return rows, nil
}

// RankOf returns the 1-based rank of an entity in the full ordering TopN
// would produce — it never needs a prior TopN call. ErrNotFound is returned
// when the entity is absent from the table.
func RankOf(a AggregateTable, metric string, key []string, opts ...RankOption) (int, error) {
	if _, ok := a.Lookup(key...); !ok {
		return 0, fmt.Errorf("rank of %v: %w", key, ErrNotFound)
	}
	cfg := &rankConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	rows := sortRows(a, metric, cfg)
	want := AggregateRow{Key: key}.KeyString()
	for i, r := range rows {
		if r.KeyString() == want {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("rank of %v: %w", key, ErrNotFound)
}
