// Package incilens provides an aggregation and ranking engine for
// historical incident datasets.
//
// Usage:
//
//	import (
//	    "github.com/incilens-org/incilens/engine"
//	    "github.com/incilens-org/incilens/schema"
//	)
//
//	table, err := schema.Normalize(rows, schema.GTDMapping())
//	agg, err := engine.Aggregate(table, []string{engine.FieldCountry},
//	    map[string]engine.MetricSpec{
//	        "attacks": engine.Count(),
//	        "killed":  engine.Sum(engine.FieldKilled),
//	    })
//	top, err := engine.TopN(agg, "attacks", 20)
//
// The engine consumes a normalized in-memory table and produces plain
// numeric result tables — aggregates, cross-tabulations, per-capita rates,
// rankings. Loading data and rendering charts or reports are the consumer's
// job; the analysis package bundles the standard report compositions.
package incilens
