package engine

import (
	"errors"
	"testing"
)

// ============================================================================
// CROSS-TABULATION TESTS
// ============================================================================

func crossTabTable() Table {
	return NewTable([]Record{
		{Year: 1995, Month: 1, Region: "North", AttackType: "Bombing"},
		{Year: 1995, Month: 2, Region: "North", AttackType: "Bombing"},
		{Year: 1995, Month: 3, Region: "North", AttackType: "Armed Assault"},
		{Year: 2003, Month: 4, Region: "South", AttackType: "Bombing"},
		{Year: 2003, Month: 0, Region: "South", AttackType: "Armed Assault"},
	})
}

func TestCrossTabCounts(t *testing.T) {
	ct, err := CrossTab(crossTabTable(), FieldDecade, FieldAttackType, NormalizeNone)
	if err != nil {
		t.Fatalf("CrossTab failed: %v", err)
	}

	cases := []struct {
		row, col string
		want     float64
	}{
		{"1990s", "Bombing", 2},
		{"1990s", "Armed Assault", 1},
		{"2000s", "Bombing", 1},
		{"2000s", "Armed Assault", 1},
		{"2000s", "Hijacking", 0}, // never observed
	}
	for _, c := range cases {
		if got := ct.Value(c.row, c.col); got != c.want {
			t.Errorf("Value(%s, %s) = %v, want %v", c.row, c.col, got, c.want)
		}
	}
	if ct.RowTotal("1990s") != 3 || ct.ColTotal("Bombing") != 3 {
		t.Errorf("totals = %v / %v", ct.RowTotal("1990s"), ct.ColTotal("Bombing"))
	}
}

func TestCrossTabRowPercentagesSumTo100(t *testing.T) {
	ct, err := CrossTab(crossTabTable(), FieldDecade, FieldAttackType, NormalizeRow)
	if err != nil {
		t.Fatalf("CrossTab failed: %v", err)
	}
	for _, row := range ct.RowKeys() {
		var sum float64
		for _, col := range ct.ColKeys() {
			sum += ct.Value(row, col)
		}
		approx(t, sum, 100, 1e-6, "row "+row+" percentage sum")
	}
}

func TestCrossTabColumnPercentages(t *testing.T) {
	ct, err := CrossTab(crossTabTable(), FieldDecade, FieldAttackType, NormalizeColumn)
	if err != nil {
		t.Fatalf("CrossTab failed: %v", err)
	}
	approx(t, ct.Value("1990s", "Bombing"), 100*2.0/3.0, 1e-9, "column share")
	for _, col := range ct.ColKeys() {
		var sum float64
		for _, row := range ct.RowKeys() {
			sum += ct.Value(row, col)
		}
		approx(t, sum, 100, 1e-6, "column "+col+" percentage sum")
	}
}

func TestCrossTabZeroTotalRowIsAllZero(t *testing.T) {
	ct, err := CrossTab(crossTabTable(), FieldDecade, FieldAttackType, NormalizeRow)
	if err != nil {
		t.Fatalf("CrossTab failed: %v", err)
	}
	// a never-observed row must not produce NaN
	for _, col := range ct.ColKeys() {
		if got := ct.Value("2010s", col); got != 0 {
			t.Errorf("Value(2010s, %s) = %v, want 0", col, got)
		}
	}
}

func TestCrossTabExcludesUndefinedAxis(t *testing.T) {
	// month==0 has no season, so that record drops out of a season axis
	ct, err := CrossTab(crossTabTable(), FieldRegion, FieldSeason, NormalizeNone)
	if err != nil {
		t.Fatalf("CrossTab failed: %v", err)
	}
	var total float64
	for _, row := range ct.RowKeys() {
		total += ct.RowTotal(row)
	}
	if total != 4 {
		t.Errorf("season cross-tab counted %v records, want 4", total)
	}
}

func TestCrossTabKeysSorted(t *testing.T) {
	ct, err := CrossTab(crossTabTable(), FieldRegion, FieldAttackType, NormalizeNone)
	if err != nil {
		t.Fatalf("CrossTab failed: %v", err)
	}
	cols := ct.ColKeys()
	for i := 1; i < len(cols); i++ {
		if cols[i-1] > cols[i] {
			t.Errorf("column keys not sorted: %v", cols)
		}
	}
}

func TestCrossTabBadInput(t *testing.T) {
	if _, err := CrossTab(crossTabTable(), FieldRegion, FieldAttackType, NormalizeMode("fraction")); err == nil {
		t.Error("unknown normalize mode accepted")
	}
	_, err := CrossTab(crossTabTable(), "nonsense", FieldAttackType, NormalizeNone)
	var ufe *UnknownFieldError
	if !errors.As(err, &ufe) {
		t.Errorf("want UnknownFieldError, got %v", err)
	}
}
