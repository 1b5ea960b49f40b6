package analysis

import (
	"github.com/incilens-org/incilens/engine"
)

// ============================================================================
// ACTOR ACTIVITY — Who is active, where, how, for how long
// ============================================================================
// All of this excludes the "Unknown" attribution sentinel up front — an
// analysis-level choice, not an engine default.
// ============================================================================

// Derived metric names in the actor activity table.
const (
	MetricActiveYears    = "activeYears"
	MetricAttacksPerYear = "attacksPerYear"
)

// GroupsReport profiles the most active actors.
type GroupsReport struct {
	// Activity holds one row per known actor: attacks, firstYear,
	// lastYear, killed, wounded, countries, regions, plus the derived
	// activeYears and attacksPerYear.
	Activity engine.AggregateTable

	MostActive []engine.AggregateRow // ranked by attack count

	Methods *engine.CrossTabTable // top actors × attack type, row %
	Targets *engine.CrossTabTable // top actors × top target types, row %

	// Spread ranks actors with at least minAttacks incidents by how many
	// countries they operated in.
	Spread []engine.AggregateRow
}

// Groups builds the actor activity report. topN bounds the ranked lists and
// the cross-tab axes; minAttacks filters the geographic-spread ranking down
// to actors with a significant footprint.
func Groups(t engine.Table, topN, minAttacks int) (*GroupsReport, error) {
	known := knownActors(t)

	activity, err := engine.Aggregate(known, []string{engine.FieldGroup}, map[string]engine.MetricSpec{
		MetricAttacks: engine.Count(),
		"firstYear":   engine.Min(engine.FieldYear),
		"lastYear":    engine.Max(engine.FieldYear),
		MetricKilled:  engine.Sum(engine.FieldKilled),
		MetricWounded: engine.Sum(engine.FieldWounded),
		"countries":   engine.Distinct(engine.FieldCountry),
		"regions":     engine.Distinct(engine.FieldRegion),
	})
	if err != nil {
		return nil, err
	}

	// Derived ratios stay out of the aggregation primitive — attach them
	// here, where the semantics ("active" means first through last year,
	// inclusive) are an analysis decision.
	activity = activity.
		WithMetric(MetricActiveYears, func(r engine.AggregateRow) float64 {
			return r.Metric("lastYear") - r.Metric("firstYear") + 1
		}).
		WithMetric(MetricAttacksPerYear, func(r engine.AggregateRow) float64 {
			years := r.Metric(MetricActiveYears)
			if years == 0 {
				return 0
			}
			return r.Metric(MetricAttacks) / years
		})

	mostActive, err := engine.TopN(activity, MetricAttacks, topN)
	if err != nil {
		return nil, err
	}

	topActors := make([]string, len(mostActive))
	for i, r := range mostActive {
		topActors[i] = r.KeyString()
	}
	actorSet := stringSet(topActors)
	topTable := known.Filter(func(r engine.Record) bool { return actorSet[r.Group] })

	methods, err := engine.CrossTab(topTable, engine.FieldGroup, engine.FieldAttackType, engine.NormalizeRow)
	if err != nil {
		return nil, err
	}

	targetNames, err := topValues(known, engine.FieldTargetType, 8)
	if err != nil {
		return nil, err
	}
	targetSet := stringSet(targetNames)
	targets, err := engine.CrossTab(
		topTable.Filter(func(r engine.Record) bool { return targetSet[r.TargetType] }),
		engine.FieldGroup, engine.FieldTargetType, engine.NormalizeRow)
	if err != nil {
		return nil, err
	}

	significant := activity.FilterRows(func(r engine.AggregateRow) bool {
		return r.Metric(MetricAttacks) >= float64(minAttacks)
	})
	spread, err := engine.TopN(significant, "countries", topN, engine.TieBreakMetric(MetricAttacks))
	if err != nil {
		return nil, err
	}

	return &GroupsReport{
		Activity:   activity,
		MostActive: mostActive,
		Methods:    methods,
		Targets:    targets,
		Spread:     spread,
	}, nil
}

// RegionActors profiles the known actors active inside one region,
// ranked by attack count.
func RegionActors(t engine.Table, region string) (engine.AggregateTable, []engine.AggregateRow, error) {
	scoped := knownActors(t).Filter(func(r engine.Record) bool { return r.Region == region })

	activity, err := engine.Aggregate(scoped, []string{engine.FieldGroup}, map[string]engine.MetricSpec{
		MetricAttacks: engine.Count(),
		"firstYear":   engine.Min(engine.FieldYear),
		"lastYear":    engine.Max(engine.FieldYear),
		MetricKilled:  engine.Sum(engine.FieldKilled),
		"countries":   engine.Distinct(engine.FieldCountry),
	})
	if err != nil {
		return engine.AggregateTable{}, nil, err
	}
	ranked, err := engine.TopN(activity, MetricAttacks, activity.Len())
	if err != nil {
		return engine.AggregateTable{}, nil, err
	}
	return activity, ranked, nil
}
