package schema

// ============================================================================
// FIELD MAPPING — Declarative source → canonical field configuration
// ============================================================================
// One mapping replaces the per-analysis renaming dictionaries the raw
// dataset otherwise forces on every caller. Source fields not listed pass
// through under their own name, so a mapping over already-canonical input
// is the identity.
// ============================================================================

// Mapping renames raw source fields to the engine's canonical schema.
// Keys are source field names, values canonical field names.
type Mapping struct {
	Rename map[string]string `yaml:"rename" json:"rename"`
}

// Identity returns an empty mapping: every field keeps its name.
func Identity() Mapping {
	return Mapping{Rename: map[string]string{}}
}

// GTDMapping maps the Global Terrorism Database export columns to the
// canonical schema.
func GTDMapping() Mapping {
	return Mapping{Rename: map[string]string{
		"iyear":           "year",
		"imonth":          "month",
		"iday":            "day",
		"country_txt":     "country",
		"region_txt":      "region",
		"city":            "city",
		"attacktype1_txt": "attackType",
		"target1":         "target",
		"targtype1_txt":   "targetType",
		"weaptype1_txt":   "weaponType",
		"gname":           "group",
		"nkill":           "killed",
		"nwound":          "wounded",
		"success":         "success",
	}}
}

// sourceFor resolves the source name a canonical field is read from.
func (m Mapping) sourceFor(canonical string) string {
	for src, dst := range m.Rename {
		if dst == canonical {
			return src
		}
	}
	return canonical
}
