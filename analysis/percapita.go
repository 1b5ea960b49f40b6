package analysis

import (
	"github.com/incilens-org/incilens/engine"
)

// ============================================================================
// PER-CAPITA RANKING — Incident volume normalized by population
// ============================================================================
// The population lookup comes from an external reference dataset; callers
// resolve name mismatches with helpers.WithAliases before handing it in.
// Countries absent from the lookup are excluded, never zeroed — a missing
// denominator would otherwise corrupt the ranking.
// ============================================================================

// PerCapitaReport ranks countries by incidents per capita.
type PerCapitaReport struct {
	Rates   engine.AggregateTable // per country: attacks count + ratePerScale
	Top     []engine.AggregateRow // ranked by ratePerScale
	Dropped int                   // countries without a population baseline
}

// AttacksPerCapita counts incidents per country, joins against the
// population baseline and ranks by rate per scale (default: per million).
func AttacksPerCapita(t engine.Table, population engine.PopulationLookup, topN int, opts ...engine.PerCapitaOption) (*PerCapitaReport, error) {
	counts, err := engine.Aggregate(t, []string{engine.FieldCountry}, map[string]engine.MetricSpec{
		"count": engine.Count(),
	})
	if err != nil {
		return nil, err
	}

	rates := engine.PerCapita(counts, population, opts...)

	top, err := engine.TopN(rates, engine.MetricRate, topN)
	if err != nil {
		return nil, err
	}

	return &PerCapitaReport{
		Rates:   rates,
		Top:     top,
		Dropped: counts.Len() - rates.Len(),
	}, nil
}
