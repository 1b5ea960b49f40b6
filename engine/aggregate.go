package engine

import (
	"encoding/json"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"github.com/sirupsen/logrus"
)

// ============================================================================
// AGGREGATION — Grouped statistics over one or more dimensions
// ============================================================================
// Pipeline primitive: group records by a tuple of dimension values, then
// reduce each group with the requested metric operations. Ranking, top-N
// slicing and derived metrics are deliberately not done here — they belong
// to RankingEngine and to the caller (WithMetric), keeping this primitive
// composable.
//
// The reduction is commutative and associative per op (mean is carried as
// sum+count), so partial aggregates over input partitions merge cleanly.
// ============================================================================

// Op names an aggregation operation.
type Op string

const (
	OpCount         Op = "count"         // row count, ignores the field
	OpSum           Op = "sum"           // sum of a measure
	OpMean          Op = "mean"          // sum/count of a measure
	OpMin           Op = "min"           // smallest measure value
	OpMax           Op = "max"           // largest measure value
	OpDistinctCount Op = "distinctCount" // number of distinct dimension values
	OpMedian        Op = "median"        // 0.5 quantile of a measure
	OpStdDev        Op = "stddev"        // sample standard deviation of a measure
)

// MetricSpec binds an output metric name to a source field and operation.
type MetricSpec struct {
	Field string
	Op    Op
}

// Convenience constructors for the common specs.
func Count() MetricSpec                { return MetricSpec{Op: OpCount} }
func Sum(field string) MetricSpec      { return MetricSpec{Field: field, Op: OpSum} }
func Mean(field string) MetricSpec     { return MetricSpec{Field: field, Op: OpMean} }
func Min(field string) MetricSpec      { return MetricSpec{Field: field, Op: OpMin} }
func Max(field string) MetricSpec      { return MetricSpec{Field: field, Op: OpMax} }
func Distinct(field string) MetricSpec { return MetricSpec{Field: field, Op: OpDistinctCount} }
func Median(field string) MetricSpec   { return MetricSpec{Field: field, Op: OpMedian} }
func StdDev(field string) MetricSpec   { return MetricSpec{Field: field, Op: OpStdDev} }

// keySep joins tuple keys into a single lookup string. Unit separator —
// never appears in field values.
const keySep = "\x1f"

// ============================================================================
// AGGREGATE TABLE
// ============================================================================

// AggregateRow is one group's computed statistics.
type AggregateRow struct {
	Key     []string           `json:"key"`
	Metrics map[string]float64 `json:"metrics"`
}

// Metric returns a named metric value, 0 when absent.
func (r AggregateRow) Metric(name string) float64 { return r.Metrics[name] }

// KeyString joins the key tuple for map lookups.
func (r AggregateRow) KeyString() string { return strings.Join(r.Key, keySep) }

// AggregateTable is a collection of AggregateRows, one per distinct key.
type AggregateTable struct {
	GroupBy []string
	rows    []AggregateRow
	index   map[string]int
}

func newAggregateTable(groupBy []string, rows []AggregateRow) AggregateTable {
	idx := make(map[string]int, len(rows))
	for i, r := range rows {
		idx[r.KeyString()] = i
	}
	gb := make([]string, len(groupBy))
	copy(gb, groupBy)
	return AggregateTable{GroupBy: gb, rows: rows, index: idx}
}

func (a AggregateTable) Len() int              { return len(a.rows) }
func (a AggregateTable) At(i int) AggregateRow { return a.rows[i] }

// Rows returns a copy of the rows. Row order is not contractual — impose
// order with TopN.
func (a AggregateTable) Rows() []AggregateRow {
	cp := make([]AggregateRow, len(a.rows))
	copy(cp, a.rows)
	return cp
}

// Lookup finds the row for a key tuple.
func (a AggregateTable) Lookup(key ...string) (AggregateRow, bool) {
	i, ok := a.index[strings.Join(key, keySep)]
	if !ok {
		return AggregateRow{}, false
	}
	return a.rows[i], true
}

// Keys returns every group key's joined string form.
func (a AggregateTable) Keys() []string {
	out := make([]string, len(a.rows))
	for i, r := range a.rows {
		out[i] = r.KeyString()
	}
	return out
}

// MarshalJSON emits the group-by fields and rows; the lookup index is a
// derived structure and stays internal.
func (a AggregateTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		GroupBy []string       `json:"groupBy"`
		Rows    []AggregateRow `json:"rows"`
	}{a.GroupBy, a.rows})
}

// WithMetric derives a new table with an extra metric computed per row.
// This is how callers attach derived metrics (attacks per active year,
// average casualties per attack) without pushing arithmetic into the
// aggregation primitive. The receiver is unchanged.
func (a AggregateTable) WithMetric(name string, fn func(AggregateRow) float64) AggregateTable {
	rows := make([]AggregateRow, len(a.rows))
	for i, r := range a.rows {
		metrics := make(map[string]float64, len(r.Metrics)+1)
		for k, v := range r.Metrics {
			metrics[k] = v
		}
		metrics[name] = fn(r)
		rows[i] = AggregateRow{Key: r.Key, Metrics: metrics}
	}
	return newAggregateTable(a.GroupBy, rows)
}

// FilterRows derives a new table keeping rows for which keep returns true.
func (a AggregateTable) FilterRows(keep func(AggregateRow) bool) AggregateTable {
	rows := make([]AggregateRow, 0, len(a.rows))
	for _, r := range a.rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return newAggregateTable(a.GroupBy, rows)
}

// ============================================================================
// AGGREGATION
// ============================================================================

type groupAcc struct {
	key      []string
	count    int
	sums     map[string]float64
	mins     map[string]float64
	maxs     map[string]float64
	vals     map[string][]float64          // only for median/stddev
	distinct map[string]map[string]struct{} // only for distinctCount
}

// Aggregate groups a table by one or more dimension fields and computes the
// requested metrics per group. Records with an undefined grouping value
// (no season when the month is unknown) are excluded from the grouping, not
// coerced to a default. An empty table yields an empty AggregateTable.
func Aggregate(t Table, groupBy []string, metrics map[string]MetricSpec) (AggregateTable, error) {
	if len(groupBy) == 0 {
		return AggregateTable{}, &InvalidArgumentError{Reason: "aggregate needs at least one group-by field"}
	}

	dims := make([]func(Record) (string, bool), len(groupBy))
	for i, field := range groupBy {
		fn, err := dimensionAccessor(field)
		if err != nil {
			return AggregateTable{}, err
		}
		dims[i] = fn
	}

	// Validate metric specs up front — a bad spec is a contract violation,
	// not something to discover halfway through a pass.
	measureFns := make(map[string]func(Record) float64)
	distinctFns := make(map[string]func(Record) (string, bool))
	for name, spec := range metrics {
		switch spec.Op {
		case OpCount:
			// field ignored
		case OpSum, OpMean, OpMin, OpMax, OpMedian, OpStdDev:
			fn, err := measureAccessor(spec.Field)
			if err != nil {
				return AggregateTable{}, err
			}
			measureFns[name] = fn
		case OpDistinctCount:
			fn, err := dimensionAccessor(spec.Field)
			if err != nil {
				return AggregateTable{}, err
			}
			distinctFns[name] = fn
		default:
			return AggregateTable{}, &UnsupportedOpError{Op: spec.Op}
		}
	}

	grouped := make(map[string]*groupAcc)
	order := make([]string, 0)

	for i := 0; i < t.Len(); i++ {
		rec := t.At(i)

		key := make([]string, len(dims))
		defined := true
		for d, fn := range dims {
			v, ok := fn(rec)
			if !ok {
				defined = false
				break
			}
			key[d] = v
		}
		if !defined {
			continue
		}

		ks := strings.Join(key, keySep)
		acc, exists := grouped[ks]
		if !exists {
			acc = &groupAcc{
				key:      key,
				sums:     make(map[string]float64),
				mins:     make(map[string]float64),
				maxs:     make(map[string]float64),
				vals:     make(map[string][]float64),
				distinct: make(map[string]map[string]struct{}),
			}
			grouped[ks] = acc
			order = append(order, ks)
		}
		acc.accumulate(rec, metrics, measureFns, distinctFns)
	}

	rows := make([]AggregateRow, 0, len(order))
	for _, ks := range order {
		rows = append(rows, grouped[ks].finish(metrics))
	}

	logrus.WithFields(logrus.Fields{
		"component": "engine",
		"groupBy":   groupBy,
		"records":   t.Len(),
		"groups":    len(rows),
	}).Debug("aggregated table")

	return newAggregateTable(groupBy, rows), nil
}

func (a *groupAcc) accumulate(
	rec Record,
	metrics map[string]MetricSpec,
	measureFns map[string]func(Record) float64,
	distinctFns map[string]func(Record) (string, bool),
) {
	a.count++
	for name, spec := range metrics {
		switch spec.Op {
		case OpCount:
			// count is the group size
		case OpSum, OpMean:
			a.sums[name] += measureFns[name](rec)
		case OpMin:
			v := measureFns[name](rec)
			if cur, ok := a.mins[name]; !ok || v < cur {
				a.mins[name] = v
			}
		case OpMax:
			v := measureFns[name](rec)
			if cur, ok := a.maxs[name]; !ok || v > cur {
				a.maxs[name] = v
			}
		case OpMedian, OpStdDev:
			a.vals[name] = append(a.vals[name], measureFns[name](rec))
		case OpDistinctCount:
			v, ok := distinctFns[name](rec)
			if !ok {
				break
			}
			set := a.distinct[name]
			if set == nil {
				set = make(map[string]struct{})
				a.distinct[name] = set
			}
			set[v] = struct{}{}
		}
	}
}

func (a *groupAcc) finish(metrics map[string]MetricSpec) AggregateRow {
	out := make(map[string]float64, len(metrics))
	for name, spec := range metrics {
		switch spec.Op {
		case OpCount:
			out[name] = float64(a.count)
		case OpSum:
			out[name] = a.sums[name]
		case OpMean:
			// merged sum/count, never an average of averages
			if a.count > 0 {
				out[name] = a.sums[name] / float64(a.count)
			}
		case OpMin:
			out[name] = a.mins[name]
		case OpMax:
			out[name] = a.maxs[name]
		case OpMedian:
			s := stats.Sample{Xs: a.vals[name]}
			out[name] = s.Quantile(0.5)
		case OpStdDev:
			// sample standard deviation needs n ≥ 2; a singleton group has
			// no spread, not an undefined one
			if len(a.vals[name]) < 2 {
				out[name] = 0
				break
			}
			s := stats.Sample{Xs: a.vals[name]}
			out[name] = s.StdDev()
		case OpDistinctCount:
			out[name] = float64(len(a.distinct[name]))
		}
	}
	return AggregateRow{Key: a.key, Metrics: out}
}
