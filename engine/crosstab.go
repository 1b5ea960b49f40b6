package engine

import (
	"encoding/json"
	"sort"

	"github.com/sirupsen/logrus"
)

// ============================================================================
// CROSS-TABULATION — Two-dimensional contingency tables
// ============================================================================
// Backs the "distribution evolution" analyses: rowField is typically a time
// bucket (decade, year), colField a categorical attribute (attack type,
// weapon type, region). Storage is sparse — absent cells query as 0.
//
// Cardinality is the caller's problem: restrict colField to its top-K
// values before building the table if the output must stay bounded.
// ============================================================================

// NormalizeMode selects how cell counts are converted for Value queries.
type NormalizeMode string

const (
	NormalizeNone   NormalizeMode = "none"
	NormalizeRow    NormalizeMode = "row"
	NormalizeColumn NormalizeMode = "column"
)

type cellKey struct {
	row, col string
}

// CrossTabTable is a sparse (rowKey, colKey) → count mapping with totals
// and optional percentage normalization. Immutable once built.
type CrossTabTable struct {
	RowField string
	ColField string
	Mode     NormalizeMode

	cells     map[cellKey]float64
	rowTotals map[string]float64
	colTotals map[string]float64
	rowKeys   []string // sorted
	colKeys   []string // sorted
}

// CrossTab counts every observed (rowField, colField) pair in the table.
// Records with an undefined value on either axis (no season, unknown
// month/day) are excluded. Pairs never observed are simply absent and
// resolve to 0 when queried.
func CrossTab(t Table, rowField, colField string, mode NormalizeMode) (*CrossTabTable, error) {
	switch mode {
	case NormalizeNone, NormalizeRow, NormalizeColumn:
	default:
		return nil, &InvalidArgumentError{Reason: "unknown normalize mode " + string(mode)}
	}

	rowFn, err := dimensionAccessor(rowField)
	if err != nil {
		return nil, err
	}
	colFn, err := dimensionAccessor(colField)
	if err != nil {
		return nil, err
	}

	ct := &CrossTabTable{
		RowField:  rowField,
		ColField:  colField,
		Mode:      mode,
		cells:     make(map[cellKey]float64),
		rowTotals: make(map[string]float64),
		colTotals: make(map[string]float64),
	}

	for i := 0; i < t.Len(); i++ {
		rec := t.At(i)
		row, ok := rowFn(rec)
		if !ok {
			continue
		}
		col, ok := colFn(rec)
		if !ok {
			continue
		}
		if _, seen := ct.rowTotals[row]; !seen {
			ct.rowKeys = append(ct.rowKeys, row)
		}
		if _, seen := ct.colTotals[col]; !seen {
			ct.colKeys = append(ct.colKeys, col)
		}
		ct.cells[cellKey{row, col}]++
		ct.rowTotals[row]++
		ct.colTotals[col]++
	}

	sort.Strings(ct.rowKeys)
	sort.Strings(ct.colKeys)

	logrus.WithFields(logrus.Fields{
		"component": "engine",
		"rowField":  rowField,
		"colField":  colField,
		"rows":      len(ct.rowKeys),
		"cols":      len(ct.colKeys),
	}).Debug("built cross-tabulation")

	return ct, nil
}

// RowKeys returns the observed row keys in sorted order.
func (ct *CrossTabTable) RowKeys() []string {
	cp := make([]string, len(ct.rowKeys))
	copy(cp, ct.rowKeys)
	return cp
}

// ColKeys returns the observed column keys in sorted order.
func (ct *CrossTabTable) ColKeys() []string {
	cp := make([]string, len(ct.colKeys))
	copy(cp, ct.colKeys)
	return cp
}

// Count returns the raw observation count for a cell, 0 for pairs never
// observed.
func (ct *CrossTabTable) Count(row, col string) float64 {
	return ct.cells[cellKey{row, col}]
}

// RowTotal returns the total observations in a row.
func (ct *CrossTabTable) RowTotal(row string) float64 { return ct.rowTotals[row] }

// ColTotal returns the total observations in a column.
func (ct *CrossTabTable) ColTotal(col string) float64 { return ct.colTotals[col] }

// Value returns the cell value under the table's normalize mode. With row
// normalization the cell becomes 100*count/rowTotal; a zero-total row is
// defined as all-zero percentages rather than NaN, so downstream consumers
// never see a division artifact. Column mode is symmetric.
func (ct *CrossTabTable) Value(row, col string) float64 {
	count := ct.Count(row, col)
	switch ct.Mode {
	case NormalizeRow:
		total := ct.rowTotals[row]
		if total == 0 {
			return 0
		}
		return 100 * count / total
	case NormalizeColumn:
		total := ct.colTotals[col]
		if total == 0 {
			return 0
		}
		return 100 * count / total
	default:
		return count
	}
}

// Row returns the normalized values of one row keyed by column.
func (ct *CrossTabTable) Row(row string) map[string]float64 {
	out := make(map[string]float64, len(ct.colKeys))
	for _, col := range ct.colKeys {
		out[col] = ct.Value(row, col)
	}
	return out
}

// MarshalJSON emits the dense normalized matrix plus totals, keyed the way
// a rendering collaborator consumes it.
func (ct *CrossTabTable) MarshalJSON() ([]byte, error) {
	rows := make(map[string]map[string]float64, len(ct.rowKeys))
	totals := make(map[string]float64, len(ct.rowKeys))
	for _, r := range ct.rowKeys {
		rows[r] = ct.Row(r)
		totals[r] = ct.rowTotals[r]
	}
	return json.Marshal(struct {
		RowField  string                        `json:"rowField"`
		ColField  string                        `json:"colField"`
		Mode      NormalizeMode                 `json:"mode"`
		RowKeys   []string                      `json:"rowKeys"`
		ColKeys   []string                      `json:"colKeys"`
		Rows      map[string]map[string]float64 `json:"rows"`
		RowTotals map[string]float64            `json:"rowTotals"`
	}{ct.RowField, ct.ColField, ct.Mode, ct.rowKeys, ct.colKeys, rows, totals})
}
