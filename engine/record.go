package engine

import (
	"fmt"
	"strconv"
)

// ============================================================================
// RECORD & TABLE — Normalized incident data
// ============================================================================
// A Record is one incident after schema normalization. A Table is an
// immutable collection of Records; downstream components never mutate it,
// they derive new tables or aggregate results.
//
// The engine addresses fields by name: dimensions (string-valued, used for
// grouping and cross-tabulation) and measures (numeric, used for
// aggregation). Year/month/day are exposed both ways.
// ============================================================================

// Record is a single normalized incident.
//
// Month and Day use 0 as the "unknown" sentinel. Group uses the literal
// string "Unknown" as a valid value, not absence — exclusion, where an
// analysis wants it, is a caller-side filter.
type Record struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 0 = unknown
	Day   int `json:"day"`   // 0 = unknown

	Country    string `json:"country"`
	Region     string `json:"region"`
	City       string `json:"city,omitempty"`
	AttackType string `json:"attackType"`
	Target     string `json:"target"`
	TargetType string `json:"targetType"`
	WeaponType string `json:"weaponType"`
	Group      string `json:"group"`

	Killed  float64 `json:"killed"`
	Wounded float64 `json:"wounded"`
	Success bool    `json:"success"`
}

// Casualties is killed plus wounded.
func (r Record) Casualties() float64 { return r.Killed + r.Wounded }

// Decade is the calendar decade the incident falls in (1994 → 1990).
func (r Record) Decade() int { return r.Year / 10 * 10 }

// Season maps the month to a meteorological season. ok is false when the
// month is unknown — such records carry no season at all.
func (r Record) Season() (season string, ok bool) {
	switch r.Month {
	case 12, 1, 2:
		return "Winter", true
	case 3, 4, 5:
		return "Spring", true
	case 6, 7, 8:
		return "Summer", true
	case 9, 10, 11:
		return "Autumn", true
	}
	return "", false
}

// ============================================================================
// TABLE
// ============================================================================

// Table is an immutable collection of Records. Build one with NewTable;
// Filter derives a new Table without touching the receiver.
type Table struct {
	records []Record
}

// NewTable builds a Table from a record slice. The slice is copied so later
// mutation of the argument cannot leak into the table.
func NewTable(records []Record) Table {
	cp := make([]Record, len(records))
	copy(cp, records)
	return Table{records: cp}
}

func (t Table) Len() int        { return len(t.records) }
func (t Table) At(i int) Record { return t.records[i] }

// Records returns a copy of the underlying records.
func (t Table) Records() []Record {
	cp := make([]Record, len(t.records))
	copy(cp, t.records)
	return cp
}

// Filter derives a new Table containing the records for which keep returns
// true. The parent table is unchanged.
func (t Table) Filter(keep func(Record) bool) Table {
	out := make([]Record, 0, len(t.records))
	for _, r := range t.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return Table{records: out}
}

// ============================================================================
// FIELD ACCESSORS — name-based dimension and measure lookup
// ============================================================================

// Canonical field names understood by Aggregate and CrossTab.
const (
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldDay        = "day"
	FieldDecade     = "decade"
	FieldSeason     = "season"
	FieldCountry    = "country"
	FieldRegion     = "region"
	FieldCity       = "city"
	FieldAttackType = "attackType"
	FieldTarget     = "target"
	FieldTargetType = "targetType"
	FieldWeaponType = "weaponType"
	FieldGroup      = "group"
	FieldKilled     = "killed"
	FieldWounded    = "wounded"
	FieldCasualties = "casualties"
	FieldSuccess    = "success"
)

// dimensionAccessors resolve a field name to a grouping value. ok=false
// means the value is undefined for that record (unknown month/day, no
// season) and the record is excluded from grouping on that field.
var dimensionAccessors = map[string]func(Record) (string, bool){
	FieldYear:   func(r Record) (string, bool) { return strconv.Itoa(r.Year), true },
	FieldMonth:  func(r Record) (string, bool) { return fmt.Sprintf("%02d", r.Month), r.Month > 0 },
	FieldDay:    func(r Record) (string, bool) { return fmt.Sprintf("%02d", r.Day), r.Day > 0 },
	FieldDecade: func(r Record) (string, bool) { return strconv.Itoa(r.Decade()) + "s", true },
	FieldSeason: func(r Record) (string, bool) { return r.Season() },

	FieldCountry:    func(r Record) (string, bool) { return r.Country, true },
	FieldRegion:     func(r Record) (string, bool) { return r.Region, true },
	FieldCity:       func(r Record) (string, bool) { return r.City, true },
	FieldAttackType: func(r Record) (string, bool) { return r.AttackType, true },
	FieldTarget:     func(r Record) (string, bool) { return r.Target, true },
	FieldTargetType: func(r Record) (string, bool) { return r.TargetType, true },
	FieldWeaponType: func(r Record) (string, bool) { return r.WeaponType, true },
	FieldGroup:      func(r Record) (string, bool) { return r.Group, true },
}

// measureAccessors resolve a field name to a numeric value. The 0/1 success
// measure makes mean(success) a success rate.
var measureAccessors = map[string]func(Record) float64{
	FieldKilled:     func(r Record) float64 { return r.Killed },
	FieldWounded:    func(r Record) float64 { return r.Wounded },
	FieldCasualties: func(r Record) float64 { return r.Casualties() },
	FieldYear:       func(r Record) float64 { return float64(r.Year) },
	FieldMonth:      func(r Record) float64 { return float64(r.Month) },
	FieldDay:        func(r Record) float64 { return float64(r.Day) },
	FieldSuccess: func(r Record) float64 {
		if r.Success {
			return 1
		}
		return 0
	},
}

// DimensionFields lists the field names valid for grouping.
func DimensionFields() []string {
	return []string{
		FieldYear, FieldMonth, FieldDay, FieldDecade, FieldSeason,
		FieldCountry, FieldRegion, FieldCity, FieldAttackType,
		FieldTarget, FieldTargetType, FieldWeaponType, FieldGroup,
	}
}

// MeasureFields lists the field names valid for numeric aggregation.
func MeasureFields() []string {
	return []string{
		FieldKilled, FieldWounded, FieldCasualties, FieldSuccess,
		FieldYear, FieldMonth, FieldDay,
	}
}

func dimensionAccessor(field string) (func(Record) (string, bool), error) {
	fn, ok := dimensionAccessors[field]
	if !ok {
		return nil, &UnknownFieldError{Field: field, Kind: "dimension"}
	}
	return fn, nil
}

func measureAccessor(field string) (func(Record) float64, error) {
	fn, ok := measureAccessors[field]
	if !ok {
		return nil, &UnknownFieldError{Field: field, Kind: "measure"}
	}
	return fn, nil
}
