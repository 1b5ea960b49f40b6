package schema

import (
	"errors"
	"testing"

	"github.com/incilens-org/incilens/engine"
)

// ============================================================================
// NORMALIZER TESTS
// ============================================================================

func gtdRow(overrides map[string]string) RawRecord {
	row := RawRecord{
		"iyear":           "1995",
		"imonth":          "7",
		"iday":            "14",
		"country_txt":     "Kazakhstan",
		"region_txt":      "Central Asia",
		"city":            "Almaty",
		"attacktype1_txt": "Bombing",
		"target1":         "Bank branch",
		"targtype1_txt":   "Business",
		"weaptype1_txt":   "Explosives",
		"gname":           "Unknown",
		"nkill":           "3",
		"nwound":          "10.0",
		"success":         "1",
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

func TestNormalizeRenamesFields(t *testing.T) {
	table, err := Normalize([]RawRecord{gtdRow(nil)}, GTDMapping())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("got %d records, want 1", table.Len())
	}

	rec := table.At(0)
	if rec.Year != 1995 || rec.Month != 7 || rec.Day != 14 {
		t.Errorf("date = %d-%d-%d", rec.Year, rec.Month, rec.Day)
	}
	if rec.Country != "Kazakhstan" || rec.Region != "Central Asia" || rec.City != "Almaty" {
		t.Errorf("place = %q / %q / %q", rec.Country, rec.Region, rec.City)
	}
	if rec.AttackType != "Bombing" || rec.WeaponType != "Explosives" || rec.Group != "Unknown" {
		t.Errorf("categories = %q / %q / %q", rec.AttackType, rec.WeaponType, rec.Group)
	}
	if rec.Killed != 3 || rec.Wounded != 10 || !rec.Success {
		t.Errorf("measures = %v / %v / %v", rec.Killed, rec.Wounded, rec.Success)
	}
}

func TestNormalizeCoercesBadCasualties(t *testing.T) {
	cases := []struct {
		name string
		cell string
	}{
		{"empty", ""},
		{"text", "unknown"},
		{"negative", "-4"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			table, err := Normalize([]RawRecord{gtdRow(map[string]string{"nkill": c.cell})}, GTDMapping())
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if got := table.At(0).Killed; got != 0 {
				t.Errorf("killed = %v, want coercion to 0", got)
			}
			// the row itself survives
			if table.Len() != 1 {
				t.Errorf("row was dropped")
			}
		})
	}
}

func TestNormalizeUnknownMonthHasNoSeason(t *testing.T) {
	table, err := Normalize([]RawRecord{gtdRow(map[string]string{"imonth": "0"})}, GTDMapping())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	rec := table.At(0)
	if rec.Month != 0 {
		t.Fatalf("month = %d, want 0", rec.Month)
	}
	if _, ok := rec.Season(); ok {
		t.Error("record with unknown month reported a season")
	}
}

func TestNormalizeDecade(t *testing.T) {
	table, err := Normalize([]RawRecord{gtdRow(map[string]string{"iyear": "1994"})}, GTDMapping())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got := table.At(0).Decade(); got != 1990 {
		t.Errorf("decade of 1994 = %d, want 1990", got)
	}
}

func TestNormalizeFloatStyleIntegers(t *testing.T) {
	// some exports serialize integers as "1995.0"
	table, err := Normalize([]RawRecord{gtdRow(map[string]string{
		"iyear":   "1995.0",
		"imonth":  "7.0",
		"success": "1.0",
	})}, GTDMapping())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	rec := table.At(0)
	if rec.Year != 1995 || rec.Month != 7 || !rec.Success {
		t.Errorf("got year=%d month=%d success=%v", rec.Year, rec.Month, rec.Success)
	}
}

func TestNormalizeMissingRequiredField(t *testing.T) {
	row := gtdRow(nil)
	delete(row, "country_txt")
	_, err := Normalize([]RawRecord{row}, GTDMapping())

	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("want SchemaError, got %v", err)
	}
	if se.Field != engine.FieldCountry || se.Source != "country_txt" {
		t.Errorf("error names %q (source %q)", se.Field, se.Source)
	}
}

func TestNormalizeOptionalCity(t *testing.T) {
	row := gtdRow(nil)
	delete(row, "city")
	table, err := Normalize([]RawRecord{row}, GTDMapping())
	if err != nil {
		t.Fatalf("city should be optional: %v", err)
	}
	if got := table.At(0).City; got != "" {
		t.Errorf("city = %q, want empty", got)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	table, err := Normalize(nil, GTDMapping())
	if err != nil {
		t.Fatalf("empty input is not an error: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("got %d records", table.Len())
	}
}

func TestNormalizeIdentityIdempotent(t *testing.T) {
	// canonical input under the identity mapping round-trips unchanged, so a
	// second pass over the same rows yields the same table
	canonical := RawRecord{
		"year": "2001", "month": "3", "day": "9",
		"country": "A", "region": "North",
		"attackType": "Bombing", "target": "Bridge", "targetType": "Infrastructure",
		"weaponType": "Explosives", "group": "Alpha",
		"killed": "2", "wounded": "5", "success": "1",
	}
	first, err := Normalize([]RawRecord{canonical}, Identity())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	second, err := Normalize([]RawRecord{canonical}, Identity())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if first.At(0) != second.At(0) {
		t.Errorf("normalization not stable: %+v vs %+v", first.At(0), second.At(0))
	}
}
