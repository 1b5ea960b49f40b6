package analysis

import (
	"math"
	"testing"

	"github.com/incilens-org/incilens/engine"
)

// ============================================================================
// REPORT TESTS
// ============================================================================

// testTable is a small synthetic dataset spanning two decades, two regions
// and three actors (one of them the "Unknown" sentinel).
func testTable() engine.Table {
	return engine.NewTable([]engine.Record{
		{Year: 1994, Month: 1, Country: "A", Region: "North", City: "Alba", AttackType: "Bombing", TargetType: "Business", WeaponType: "Explosives", Group: "Alpha", Killed: 5, Wounded: 10, Success: true},
		{Year: 1995, Month: 4, Country: "A", Region: "North", City: "Alba", AttackType: "Bombing", TargetType: "Police", WeaponType: "Explosives", Group: "Alpha", Killed: 2, Wounded: 0, Success: false},
		{Year: 1996, Month: 7, Country: "B", Region: "North", City: "Borg", AttackType: "Armed Assault", TargetType: "Police", WeaponType: "Firearms", Group: "Alpha", Killed: 1, Wounded: 3, Success: true},
		{Year: 2004, Month: 10, Country: "B", Region: "South", City: "Borg", AttackType: "Armed Assault", TargetType: "Business", WeaponType: "Firearms", Group: "Beta", Killed: 0, Wounded: 1, Success: true},
		{Year: 2005, Month: 0, Country: "C", Region: "South", City: "Cove", AttackType: "Bombing", TargetType: "Business", WeaponType: "Explosives", Group: "Unknown", Killed: 9, Wounded: 2, Success: true},
	})
}

func approx(t *testing.T, got, want, eps float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func TestOverview(t *testing.T) {
	r, err := Overview(testTable(), 2)
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}
	if r.TotalIncidents != 5 {
		t.Errorf("total = %d", r.TotalIncidents)
	}

	north, ok := r.ByRegion.Lookup("North")
	if !ok || north.Metric(MetricAttacks) != 3 || north.Metric(MetricKilled) != 8 {
		t.Errorf("North = %v", north.Metrics)
	}
	if len(r.TopCountries) != 2 {
		t.Fatalf("top countries = %d rows", len(r.TopCountries))
	}
	// A and B tie on 2 attacks; alphabetical order resolves it
	if r.TopCountries[0].KeyString() != "A" || r.TopCountries[1].KeyString() != "B" {
		t.Errorf("top countries = %v, %v", r.TopCountries[0].Key, r.TopCountries[1].Key)
	}
}

func TestSeasonal(t *testing.T) {
	r, err := Seasonal(testTable(), 2, 1990)
	if err != nil {
		t.Fatalf("Seasonal failed: %v", err)
	}

	// the month==0 record enters no month or season group
	var monthTotal float64
	for _, row := range r.Monthly.Rows() {
		monthTotal += row.Metric(MetricAttacks)
	}
	if monthTotal != 4 {
		t.Errorf("monthly counts sum to %v, want 4", monthTotal)
	}

	winter, ok := r.Seasons.Lookup("Winter")
	if !ok || winter.Metric(MetricAttacks) != 1 {
		t.Errorf("Winter = %v", winter.Metrics)
	}

	// four populated months, one attack each
	approx(t, r.MonthlyMeanAttacks, 1, 1e-9, "monthly mean")

	if got := r.YearMonth.Count("1994", MonthKey(1)); got != 1 {
		t.Errorf("year-month cell = %v", got)
	}
}

func TestDecades(t *testing.T) {
	r, err := Decades(testTable(), 2, 2)
	if err != nil {
		t.Fatalf("Decades failed: %v", err)
	}

	nineties, ok := r.Overview.Lookup("1990s")
	if !ok {
		t.Fatal("1990s missing")
	}
	if nineties.Metric(MetricAttacks) != 3 || nineties.Metric("countries") != 2 {
		t.Errorf("1990s = %v", nineties.Metrics)
	}
	approx(t, nineties.Metric(MetricAvgKilled), 8.0/3.0, 1e-9, "avg killed per attack")

	// evolution rows are percentage distributions
	for _, decade := range r.AttackTypes.RowKeys() {
		var sum float64
		for _, col := range r.AttackTypes.ColKeys() {
			sum += r.AttackTypes.Value(decade, col)
		}
		approx(t, sum, 100, 1e-6, "attack-type row "+decade)
	}
}

func TestGroups(t *testing.T) {
	r, err := Groups(testTable(), 5, 2)
	if err != nil {
		t.Fatalf("Groups failed: %v", err)
	}

	// the Unknown sentinel is excluded everywhere in this report
	if _, ok := r.Activity.Lookup("Unknown"); ok {
		t.Error("Unknown actor in activity table")
	}

	alpha, ok := r.Activity.Lookup("Alpha")
	if !ok {
		t.Fatal("Alpha missing")
	}
	if alpha.Metric(MetricAttacks) != 3 || alpha.Metric("countries") != 2 {
		t.Errorf("Alpha = %v", alpha.Metrics)
	}
	approx(t, alpha.Metric(MetricActiveYears), 3, 1e-9, "Alpha active years")
	approx(t, alpha.Metric(MetricAttacksPerYear), 1, 1e-9, "Alpha attacks per year")

	if len(r.MostActive) == 0 || r.MostActive[0].KeyString() != "Alpha" {
		t.Errorf("most active = %v", r.MostActive)
	}

	// only Alpha clears the two-attack bar for the spread ranking
	if len(r.Spread) != 1 || r.Spread[0].KeyString() != "Alpha" {
		t.Errorf("spread = %v", r.Spread)
	}
}

func TestSuccessRates(t *testing.T) {
	r, err := SuccessRates(testTable(), 5)
	if err != nil {
		t.Fatalf("SuccessRates failed: %v", err)
	}

	bombing, ok := r.ByAttackType.Lookup("Bombing")
	if !ok {
		t.Fatal("Bombing missing")
	}
	approx(t, bombing.Metric(MetricSuccessRate), 2.0/3.0, 1e-9, "bombing success rate")
	if bombing.Metric(MetricSuccessful) != 2 || bombing.Metric(MetricTotal) != 3 {
		t.Errorf("bombing = %v", bombing.Metrics)
	}

	if _, ok := r.ByActor.Lookup("Unknown"); ok {
		t.Error("Unknown actor in success-by-actor table")
	}
}

func TestDeadliest(t *testing.T) {
	r, err := Deadliest(testTable(), 2)
	if err != nil {
		t.Fatalf("Deadliest failed: %v", err)
	}

	if len(r.Incidents) != 2 {
		t.Fatalf("incidents = %d rows", len(r.Incidents))
	}
	if r.Incidents[0].Killed != 9 || r.Incidents[1].Killed != 5 {
		t.Errorf("incident order: %v, %v", r.Incidents[0].Killed, r.Incidents[1].Killed)
	}

	// "Unknown" killed the most but is excluded from the actor ranking
	if r.Actors[0].KeyString() != "Alpha" {
		t.Errorf("deadliest actor = %v", r.Actors[0].Key)
	}

	north, _ := r.Regions.Lookup("North")
	approx(t, north.Metric(MetricAvgCasualties), (8.0+13.0)/3.0, 1e-9, "North avg casualties")
}

func TestAttacksPerCapita(t *testing.T) {
	pop := engine.PopulationLookup{
		"A": 2_000_000,
		"B": 1_000_000,
		// C absent
	}
	r, err := AttacksPerCapita(testTable(), pop, 10)
	if err != nil {
		t.Fatalf("AttacksPerCapita failed: %v", err)
	}

	if r.Dropped != 1 {
		t.Errorf("dropped = %d, want 1 (country C)", r.Dropped)
	}
	if len(r.Top) != 2 {
		t.Fatalf("top = %d rows", len(r.Top))
	}
	// B: 2 attacks over 1M → 2.0/M beats A: 2 attacks over 2M → 1.0/M
	if r.Top[0].KeyString() != "B" {
		t.Errorf("top per-capita = %v", r.Top[0].Key)
	}
	approx(t, r.Top[0].Metric(engine.MetricRate), 2, 1e-9, "B rate")
	approx(t, r.Top[1].Metric(engine.MetricRate), 1, 1e-9, "A rate")
}

func TestCountryProfile(t *testing.T) {
	pop := engine.PopulationLookup{"A": 2_000_000, "B": 1_000_000}
	r, err := CountryProfile(testTable(), "B", pop)
	if err != nil {
		t.Fatalf("CountryProfile failed: %v", err)
	}

	if r.Incidents != 2 {
		t.Errorf("incidents = %d", r.Incidents)
	}
	// A and B tie on attacks; A wins alphabetically, so B ranks second
	if r.AttackRank != 2 {
		t.Errorf("attack rank = %d", r.AttackRank)
	}
	if r.PerCapitaRank != 1 {
		t.Errorf("per-capita rank = %d", r.PerCapitaRank)
	}
	approx(t, r.RatePerScale, 2, 1e-9, "B rate per million")

	if len(r.AttackTypes) != 1 || r.AttackTypes[0].KeyString() != "Armed Assault" {
		t.Errorf("attack types = %v", r.AttackTypes)
	}
}

func TestCountryProfileAbsentCountry(t *testing.T) {
	r, err := CountryProfile(testTable(), "Atlantis", nil)
	if err != nil {
		t.Fatalf("absent country is not an error: %v", err)
	}
	if r.Incidents != 0 || r.AttackRank != 0 || r.PerCapitaRank != 0 {
		t.Errorf("absent country got non-zero report: %+v", r)
	}
}

func TestRegionActors(t *testing.T) {
	_, ranked, err := RegionActors(testTable(), "South")
	if err != nil {
		t.Fatalf("RegionActors failed: %v", err)
	}
	// South has Beta and an Unknown record; only Beta is a known actor
	if len(ranked) != 1 || ranked[0].KeyString() != "Beta" {
		t.Errorf("South actors = %v", ranked)
	}
}
