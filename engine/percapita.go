package engine

import (
	"github.com/sirupsen/logrus"
)

// ============================================================================
// PER-CAPITA NORMALIZATION — Counts joined against a population baseline
// ============================================================================
// The population source is an external collaborator; this component only
// implements the join. Lookup is exact-key — resolving name aliases
// ("Russia" vs a reference dataset's canonical name) is the caller's job
// when building the PopulationLookup.
// ============================================================================

// PopulationLookup maps an entity name to its population. Absence of a key
// is a first-class state distinct from a zero population.
type PopulationLookup map[string]float64

// MetricRate is the metric name PerCapita adds to its result rows.
const MetricRate = "ratePerScale"

// DefaultScale expresses rates per million.
const DefaultScale = 1_000_000

// PerCapitaOption configures PerCapita.
type PerCapitaOption func(*perCapitaConfig)

type perCapitaConfig struct {
	Scale  float64
	Metric string
}

// WithScale overrides the rate scale (default: per million).
func WithScale(scale float64) PerCapitaOption {
	return func(c *perCapitaConfig) { c.Scale = scale }
}

// WithRateMetric selects which metric of the input rows is normalized
// (default "count").
func WithRateMetric(metric string) PerCapitaOption {
	return func(c *perCapitaConfig) { c.Metric = metric }
}

// PerCapita joins an entity-keyed aggregate table against a population
// lookup and derives ratePerScale = metric/population*scale per row.
//
// Entities with no population entry are dropped from the result — a missing
// denominator makes the rate undefined, and zeroing it would corrupt any
// downstream ranking. Misses are counted and logged, never raised: the
// output is always a subset of the input.
func PerCapita(counts AggregateTable, population PopulationLookup, opts ...PerCapitaOption) AggregateTable {
	cfg := &perCapitaConfig{Scale: DefaultScale, Metric: "count"}
	for _, opt := range opts {
		opt(cfg)
	}

	rows := make([]AggregateRow, 0, counts.Len())
	misses := 0
	for _, r := range counts.Rows() {
		pop, ok := population[r.KeyString()]
		if !ok || pop <= 0 {
			misses++
			continue
		}
		metrics := make(map[string]float64, len(r.Metrics)+1)
		for k, v := range r.Metrics {
			metrics[k] = v
		}
		metrics[MetricRate] = r.Metric(cfg.Metric) / pop * cfg.Scale
		rows = append(rows, AggregateRow{Key: r.Key, Metrics: metrics})
	}

	if misses > 0 {
		logrus.WithFields(logrus.Fields{
			"component": "engine",
			"entities":  counts.Len(),
			"dropped":   misses,
		}).Debug("per-capita join dropped entities without population")
	}

	return newAggregateTable(counts.GroupBy, rows)
}
