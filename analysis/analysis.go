// Package analysis composes the engine primitives into the standard
// reports over a normalized incident table: regional overviews, seasonal
// patterns, decade evolution, actor activity, success rates, lethality and
// per-capita rankings.
//
// Every function here is a thin caller of engine.Aggregate / CrossTab /
// TopN — policy decisions the engine refuses to make (excluding the
// "Unknown" actor sentinel, restricting a cross-tab axis to its top-K
// values, deriving ratio metrics) live at this layer.
package analysis

import (
	"github.com/incilens-org/incilens/engine"
)

// Metric names shared across reports.
const (
	MetricAttacks = "attacks"
	MetricKilled  = "killed"
	MetricWounded = "wounded"
)

// topValues returns the keys of the n most frequent values of a dimension
// field, most frequent first.
func topValues(t engine.Table, field string, n int) ([]string, error) {
	agg, err := engine.Aggregate(t, []string{field}, map[string]engine.MetricSpec{
		MetricAttacks: engine.Count(),
	})
	if err != nil {
		return nil, err
	}
	rows, err := engine.TopN(agg, MetricAttacks, n)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.KeyString()
	}
	return out, nil
}

func stringSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}

// knownActors excludes the "Unknown" attribution sentinel. The engine
// treats "Unknown" as an ordinary group value; dropping it is an explicit
// analysis choice, applied before aggregation.
func knownActors(t engine.Table) engine.Table {
	return t.Filter(func(r engine.Record) bool { return r.Group != "Unknown" })
}
