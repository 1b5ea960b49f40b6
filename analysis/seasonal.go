package analysis

import (
	"strconv"

	"github.com/aclements/go-moremath/stats"

	"github.com/incilens-org/incilens/engine"
)

// ============================================================================
// SEASONAL PATTERNS — Monthly, daily and seasonal incident rhythm
// ============================================================================
// Records with an unknown month carry no season and never enter month- or
// season-keyed groups; the engine enforces that, no pre-filter needed.
// ============================================================================

// SeasonalReport captures calendar-rhythm statistics.
type SeasonalReport struct {
	Monthly engine.AggregateTable // per month: attacks, killed
	Daily   engine.AggregateTable // per day of month (day > 0 only)
	Seasons engine.AggregateTable // per season: attacks, killed, wounded

	// Mean attacks across the twelve months, the reference line the
	// monthly distribution is read against.
	MonthlyMeanAttacks float64

	RegionSeason *engine.CrossTabTable // top regions × season, row %
	YearMonth    *engine.CrossTabTable // year × month raw counts, years ≥ since
}

// Seasonal builds the calendar-pattern report. The region×season cross-tab
// is restricted to the topRegions most active regions, the year×month
// heat-map matrix to years ≥ since.
func Seasonal(t engine.Table, topRegions, since int) (*SeasonalReport, error) {
	monthly, err := engine.Aggregate(t, []string{engine.FieldMonth}, map[string]engine.MetricSpec{
		MetricAttacks: engine.Count(),
		MetricKilled:  engine.Sum(engine.FieldKilled),
	})
	if err != nil {
		return nil, err
	}

	daily, err := engine.Aggregate(t, []string{engine.FieldDay}, map[string]engine.MetricSpec{
		MetricAttacks: engine.Count(),
	})
	if err != nil {
		return nil, err
	}

	seasons, err := engine.Aggregate(t, []string{engine.FieldSeason}, map[string]engine.MetricSpec{
		MetricAttacks: engine.Count(),
		MetricKilled:  engine.Sum(engine.FieldKilled),
		MetricWounded: engine.Sum(engine.FieldWounded),
	})
	if err != nil {
		return nil, err
	}

	counts := make([]float64, 0, monthly.Len())
	for _, row := range monthly.Rows() {
		counts = append(counts, row.Metric(MetricAttacks))
	}
	var meanAttacks float64
	if len(counts) > 0 {
		meanAttacks = stats.Mean(counts)
	}

	regions, err := topValues(t, engine.FieldRegion, topRegions)
	if err != nil {
		return nil, err
	}
	regionSet := stringSet(regions)
	topRegionTable := t.Filter(func(r engine.Record) bool { return regionSet[r.Region] })

	regionSeason, err := engine.CrossTab(topRegionTable, engine.FieldRegion, engine.FieldSeason, engine.NormalizeRow)
	if err != nil {
		return nil, err
	}

	recent := t.Filter(func(r engine.Record) bool { return r.Year >= since })
	yearMonth, err := engine.CrossTab(recent, engine.FieldYear, engine.FieldMonth, engine.NormalizeNone)
	if err != nil {
		return nil, err
	}

	return &SeasonalReport{
		Monthly:            monthly,
		Daily:              daily,
		Seasons:            seasons,
		MonthlyMeanAttacks: meanAttacks,
		RegionSeason:       regionSeason,
		YearMonth:          yearMonth,
	}, nil
}

// SeasonOrder lists the seasons in calendar order for stable presentation.
func SeasonOrder() []string { return []string{"Winter", "Spring", "Summer", "Autumn"} }

// MonthKey formats a month number the way the engine keys it.
func MonthKey(month int) string {
	if month < 10 {
		return "0" + strconv.Itoa(month)
	}
	return strconv.Itoa(month)
}
