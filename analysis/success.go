package analysis

import (
	"github.com/incilens-org/incilens/engine"
)

// ============================================================================
// SUCCESS RATES — Share of incidents that achieved their aim
// ============================================================================
// success is a 0/1 measure, so mean(success) is the rate and sum(success)
// the successful count — the same sum/count/mean triple on every axis.
// ============================================================================

// Success metric names.
const (
	MetricSuccessRate = "successRate"
	MetricSuccessful  = "successful"
	MetricTotal       = "total"
)

// SuccessReport holds success statistics along four axes. Actor rates are
// restricted to the topActors most active known actors — rates over a
// handful of incidents are noise.
type SuccessReport struct {
	ByAttackType engine.AggregateTable
	ByRegion     engine.AggregateTable
	ByWeaponType engine.AggregateTable
	ByActor      engine.AggregateTable
}

func successMetrics() map[string]engine.MetricSpec {
	return map[string]engine.MetricSpec{
		MetricSuccessRate: engine.Mean(engine.FieldSuccess),
		MetricSuccessful:  engine.Sum(engine.FieldSuccess),
		MetricTotal:       engine.Count(),
	}
}

// SuccessRates computes success statistics by attack type, region, weapon
// type and actor.
func SuccessRates(t engine.Table, topActors int) (*SuccessReport, error) {
	byAttackType, err := engine.Aggregate(t, []string{engine.FieldAttackType}, successMetrics())
	if err != nil {
		return nil, err
	}
	byRegion, err := engine.Aggregate(t, []string{engine.FieldRegion}, successMetrics())
	if err != nil {
		return nil, err
	}
	byWeaponType, err := engine.Aggregate(t, []string{engine.FieldWeaponType}, successMetrics())
	if err != nil {
		return nil, err
	}

	known := knownActors(t)
	actorNames, err := topValues(known, engine.FieldGroup, topActors)
	if err != nil {
		return nil, err
	}
	actorSet := stringSet(actorNames)
	byActor, err := engine.Aggregate(
		known.Filter(func(r engine.Record) bool { return actorSet[r.Group] }),
		[]string{engine.FieldGroup}, successMetrics())
	if err != nil {
		return nil, err
	}

	return &SuccessReport{
		ByAttackType: byAttackType,
		ByRegion:     byRegion,
		ByWeaponType: byWeaponType,
		ByActor:      byActor,
	}, nil
}
