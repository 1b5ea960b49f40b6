package analysis

import (
	"github.com/incilens-org/incilens/engine"
)

// ============================================================================
// OVERVIEW — Where do incidents happen?
// ============================================================================

// OverviewReport summarizes incident volume by geography.
type OverviewReport struct {
	TotalIncidents int
	ByRegion       engine.AggregateTable
	ByCountry      engine.AggregateTable
	TopRegions     []engine.AggregateRow
	TopCountries   []engine.AggregateRow
}

// Overview counts incidents and casualties per region and per country and
// ranks both.
func Overview(t engine.Table, topN int) (*OverviewReport, error) {
	metrics := map[string]engine.MetricSpec{
		MetricAttacks: engine.Count(),
		MetricKilled:  engine.Sum(engine.FieldKilled),
		MetricWounded: engine.Sum(engine.FieldWounded),
	}

	byRegion, err := engine.Aggregate(t, []string{engine.FieldRegion}, metrics)
	if err != nil {
		return nil, err
	}
	byCountry, err := engine.Aggregate(t, []string{engine.FieldCountry}, metrics)
	if err != nil {
		return nil, err
	}

	topRegions, err := engine.TopN(byRegion, MetricAttacks, topN)
	if err != nil {
		return nil, err
	}
	topCountries, err := engine.TopN(byCountry, MetricAttacks, topN)
	if err != nil {
		return nil, err
	}

	return &OverviewReport{
		TotalIncidents: t.Len(),
		ByRegion:       byRegion,
		ByCountry:      byCountry,
		TopRegions:     topRegions,
		TopCountries:   topCountries,
	}, nil
}
