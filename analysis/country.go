package analysis

import (
	"errors"

	"github.com/incilens-org/incilens/engine"
)

// ============================================================================
// COUNTRY PROFILE — One country's ranks and in-country breakdown
// ============================================================================

// CountryReport answers "where does this country stand" on the global
// rankings and what incidents there look like. Ranks are 1-based; 0 means
// the country does not appear in that ranking (no incidents, or no
// population baseline for the per-capita rank).
type CountryReport struct {
	Country   string
	Incidents int

	AttackRank    int
	CasualtyRank  int
	PerCapitaRank int
	RatePerScale  float64

	AttackTypes []engine.AggregateRow // in-country, ranked by count
	TargetTypes []engine.AggregateRow
	Cities      []engine.AggregateRow
}

// CountryProfile builds the report for one country. A country with no
// incidents yields a zero-valued report, not an error.
func CountryProfile(t engine.Table, country string, population engine.PopulationLookup) (*CountryReport, error) {
	report := &CountryReport{Country: country}

	byCountry, err := engine.Aggregate(t, []string{engine.FieldCountry}, map[string]engine.MetricSpec{
		MetricAttacks: engine.Count(),
		"casualties":  engine.Sum(engine.FieldCasualties),
		"count":       engine.Count(),
	})
	if err != nil {
		return nil, err
	}

	if row, ok := byCountry.Lookup(country); ok {
		report.Incidents = int(row.Metric(MetricAttacks))

		report.AttackRank, err = rankOrZero(byCountry, MetricAttacks, country)
		if err != nil {
			return nil, err
		}
		report.CasualtyRank, err = rankOrZero(byCountry, "casualties", country)
		if err != nil {
			return nil, err
		}

		rates := engine.PerCapita(byCountry, population)
		if rateRow, ok := rates.Lookup(country); ok {
			report.RatePerScale = rateRow.Metric(engine.MetricRate)
			report.PerCapitaRank, err = rankOrZero(rates, engine.MetricRate, country)
			if err != nil {
				return nil, err
			}
		}
	}

	scoped := t.Filter(func(r engine.Record) bool { return r.Country == country })
	if scoped.Len() > 0 {
		report.AttackTypes, err = rankedCounts(scoped, engine.FieldAttackType)
		if err != nil {
			return nil, err
		}
		report.TargetTypes, err = rankedCounts(scoped, engine.FieldTargetType)
		if err != nil {
			return nil, err
		}
		report.Cities, err = rankedCounts(scoped, engine.FieldCity)
		if err != nil {
			return nil, err
		}
	}

	return report, nil
}

// rankOrZero maps ErrNotFound to rank 0.
func rankOrZero(a engine.AggregateTable, metric, key string) (int, error) {
	rank, err := engine.RankOf(a, metric, []string{key})
	if errors.Is(err, engine.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rank, nil
}

// rankedCounts aggregates counts over one field and returns every group in
// rank order.
func rankedCounts(t engine.Table, field string) ([]engine.AggregateRow, error) {
	agg, err := engine.Aggregate(t, []string{field}, map[string]engine.MetricSpec{
		MetricAttacks: engine.Count(),
	})
	if err != nil {
		return nil, err
	}
	return engine.TopN(agg, MetricAttacks, agg.Len())
}
