package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/incilens-org/incilens/engine"
)

// ============================================================================
// NORMALIZER — Raw tabular rows → engine.Table
// ============================================================================
// Canonicalizes field names per a caller-supplied Mapping, coerces the
// casualty measures to numbers (unparseable → 0, never an error, never a
// dropped row — missing casualty counts are common and non-fatal), and
// leaves calendar buckets (decade, season) to be derived by the Record
// itself. A required source field missing from the input is the one hard
// failure.
// ============================================================================

// RawRecord is one unnormalized row: source field name → raw cell value.
type RawRecord map[string]string

// SchemaError reports a required source field absent from the input table.
type SchemaError struct {
	Field  string // canonical field name
	Source string // source field name looked for
}

func (e *SchemaError) Error() string {
	if e.Source != e.Field {
		return fmt.Sprintf("schema: required field %q (source %q) missing from input", e.Field, e.Source)
	}
	return fmt.Sprintf("schema: required field %q missing from input", e.Field)
}

// requiredFields are the canonical fields every input table must carry.
// City is optional — only some exports include it.
var requiredFields = []string{
	engine.FieldYear, engine.FieldMonth, engine.FieldDay,
	engine.FieldCountry, engine.FieldRegion,
	engine.FieldAttackType, engine.FieldTarget, engine.FieldTargetType,
	engine.FieldWeaponType, engine.FieldGroup,
	engine.FieldKilled, engine.FieldWounded, engine.FieldSuccess,
}

// Normalize builds an immutable engine.Table from raw rows.
//
// An empty input yields an empty table. Otherwise every required canonical
// field must be present (under its source name) in at least one row, or a
// SchemaError aborts the run. Rows are never dropped: unparseable numeric
// cells coerce to 0 and are counted as warnings, unknown months and days
// stay 0 and simply keep the record out of season- and day-keyed grouping.
func Normalize(rows []RawRecord, m Mapping) (engine.Table, error) {
	if len(rows) == 0 {
		return engine.NewTable(nil), nil
	}

	sources := make(map[string]string, len(requiredFields)+1)
	for _, f := range requiredFields {
		sources[f] = m.sourceFor(f)
	}
	sources[engine.FieldCity] = m.sourceFor(engine.FieldCity)

	if err := checkRequired(rows, sources); err != nil {
		return engine.Table{}, err
	}

	coerced := 0
	records := make([]engine.Record, 0, len(rows))
	for _, row := range rows {
		get := func(canonical string) string {
			return strings.TrimSpace(row[sources[canonical]])
		}

		rec := engine.Record{
			Year:       atoi(get(engine.FieldYear)),
			Month:      atoi(get(engine.FieldMonth)),
			Day:        atoi(get(engine.FieldDay)),
			Country:    get(engine.FieldCountry),
			Region:     get(engine.FieldRegion),
			City:       get(engine.FieldCity),
			AttackType: get(engine.FieldAttackType),
			Target:     get(engine.FieldTarget),
			TargetType: get(engine.FieldTargetType),
			WeaponType: get(engine.FieldWeaponType),
			Group:      get(engine.FieldGroup),
			Success:    parseBool(get(engine.FieldSuccess)),
		}
		rec.Killed = coerceCasualty(get(engine.FieldKilled), &coerced)
		rec.Wounded = coerceCasualty(get(engine.FieldWounded), &coerced)
		records = append(records, rec)
	}

	if coerced > 0 {
		logrus.WithFields(logrus.Fields{
			"component": "schema",
			"cells":     coerced,
		}).Warn("non-numeric casualty values coerced to 0")
	}
	logrus.WithFields(logrus.Fields{
		"component": "schema",
		"records":   len(records),
	}).Debug("normalized raw table")

	return engine.NewTable(records), nil
}

// checkRequired verifies each required field appears, under its source
// name, in at least one row.
func checkRequired(rows []RawRecord, sources map[string]string) error {
	present := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			present[k] = true
		}
	}
	for _, f := range requiredFields {
		if !present[sources[f]] {
			return &SchemaError{Field: f, Source: sources[f]}
		}
	}
	return nil
}

// coerceCasualty parses a casualty cell. Anything unparseable — empty,
// text, malformed — becomes 0 and bumps the warning counter; negative
// values clamp to 0 since the canonical schema requires killed/wounded ≥ 0.
func coerceCasualty(s string, coerced *int) float64 {
	if s == "" {
		*coerced++
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*coerced++
		return 0
	}
	if v < 0 {
		*coerced++
		return 0
	}
	return v
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	// tolerate "1970.0" style numeric exports
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "1.0", "true", "yes":
		return true
	}
	return false
}
