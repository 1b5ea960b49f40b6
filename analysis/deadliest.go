package analysis

import (
	"sort"

	"github.com/incilens-org/incilens/engine"
)

// ============================================================================
// LETHALITY — Deadliest incidents, actors and regions
// ============================================================================

// MetricAvgCasualties is the derived per-attack casualty average in the
// region lethality table.
const MetricAvgCasualties = "avgCasualties"

// DeadliestReport describes the most lethal incidents and who/where they
// concentrate.
type DeadliestReport struct {
	Incidents []engine.Record       // topN single incidents by killed
	Actors    []engine.AggregateRow // actors ranked by total killed, "Unknown" excluded
	Regions   engine.AggregateTable // per region: attacks, totals, averages
}

// Deadliest ranks single incidents, actors and regions by lethality.
// Incident order is deterministic: killed descending, then year, country
// and city ascending.
func Deadliest(t engine.Table, topN int) (*DeadliestReport, error) {
	if topN < 0 {
		return nil, &engine.InvalidArgumentError{Reason: "deadliest topN is negative"}
	}

	incidents := t.Records()
	sort.SliceStable(incidents, func(i, j int) bool {
		a, b := incidents[i], incidents[j]
		if a.Killed != b.Killed {
			return a.Killed > b.Killed
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		return a.City < b.City
	})
	if topN < len(incidents) {
		incidents = incidents[:topN]
	}

	actorStats, err := engine.Aggregate(knownActors(t), []string{engine.FieldGroup}, map[string]engine.MetricSpec{
		MetricAttacks: engine.Count(),
		MetricKilled:  engine.Sum(engine.FieldKilled),
		MetricWounded: engine.Sum(engine.FieldWounded),
	})
	if err != nil {
		return nil, err
	}
	actors, err := engine.TopN(actorStats, MetricKilled, topN)
	if err != nil {
		return nil, err
	}

	regions, err := engine.Aggregate(t, []string{engine.FieldRegion}, map[string]engine.MetricSpec{
		MetricAttacks: engine.Count(),
		MetricKilled:  engine.Sum(engine.FieldKilled),
		MetricWounded: engine.Sum(engine.FieldWounded),
		"avgKilled":   engine.Mean(engine.FieldKilled),
		"avgWounded":  engine.Mean(engine.FieldWounded),
	})
	if err != nil {
		return nil, err
	}
	regions = regions.WithMetric(MetricAvgCasualties, func(r engine.AggregateRow) float64 {
		return r.Metric("avgKilled") + r.Metric("avgWounded")
	})

	return &DeadliestReport{
		Incidents: incidents,
		Actors:    actors,
		Regions:   regions,
	}, nil
}
