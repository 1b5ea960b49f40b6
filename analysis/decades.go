package analysis

import (
	"github.com/incilens-org/incilens/engine"
)

// ============================================================================
// DECADE COMPARISON — How the phenomenon evolved across decades
// ============================================================================

// MetricAvgKilled is the derived lethality ratio in the decade overview.
const MetricAvgKilled = "avgKilledPerAttack"

// DecadeReport describes per-decade volume and the evolution of methods,
// weapons, targets and hotspots. Evolution tables are row-normalized: each
// decade's row reads as a percentage distribution.
type DecadeReport struct {
	Overview engine.AggregateTable // per decade: attacks, killed, wounded, countries, actors, avgKilledPerAttack

	AttackTypes *engine.CrossTabTable // decade × attack type, row %
	WeaponTypes *engine.CrossTabTable // decade × weapon type, row %
	TargetTypes *engine.CrossTabTable // decade × top-K target types, row %
	Regions     *engine.CrossTabTable // decade × top-K regions, row %
}

// Decades builds the decade-evolution report. Target types and regions are
// restricted to their top-K values to keep those tables readable; attack
// and weapon types are low-cardinality and taken whole.
func Decades(t engine.Table, topRegions, topTargets int) (*DecadeReport, error) {
	overview, err := engine.Aggregate(t, []string{engine.FieldDecade}, map[string]engine.MetricSpec{
		MetricAttacks: engine.Count(),
		MetricKilled:  engine.Sum(engine.FieldKilled),
		MetricWounded: engine.Sum(engine.FieldWounded),
		"countries":   engine.Distinct(engine.FieldCountry),
		"actors":      engine.Distinct(engine.FieldGroup),
	})
	if err != nil {
		return nil, err
	}
	overview = overview.WithMetric(MetricAvgKilled, func(r engine.AggregateRow) float64 {
		attacks := r.Metric(MetricAttacks)
		if attacks == 0 {
			return 0
		}
		return r.Metric(MetricKilled) / attacks
	})

	attackTypes, err := engine.CrossTab(t, engine.FieldDecade, engine.FieldAttackType, engine.NormalizeRow)
	if err != nil {
		return nil, err
	}
	weaponTypes, err := engine.CrossTab(t, engine.FieldDecade, engine.FieldWeaponType, engine.NormalizeRow)
	if err != nil {
		return nil, err
	}

	targets, err := topValues(t, engine.FieldTargetType, topTargets)
	if err != nil {
		return nil, err
	}
	targetSet := stringSet(targets)
	targetTypes, err := engine.CrossTab(
		t.Filter(func(r engine.Record) bool { return targetSet[r.TargetType] }),
		engine.FieldDecade, engine.FieldTargetType, engine.NormalizeRow)
	if err != nil {
		return nil, err
	}

	regionNames, err := topValues(t, engine.FieldRegion, topRegions)
	if err != nil {
		return nil, err
	}
	regionSet := stringSet(regionNames)
	regions, err := engine.CrossTab(
		t.Filter(func(r engine.Record) bool { return regionSet[r.Region] }),
		engine.FieldDecade, engine.FieldRegion, engine.NormalizeRow)
	if err != nil {
		return nil, err
	}

	return &DecadeReport{
		Overview:    overview,
		AttackTypes: attackTypes,
		WeaponTypes: weaponTypes,
		TargetTypes: targetTypes,
		Regions:     regions,
	}, nil
}
