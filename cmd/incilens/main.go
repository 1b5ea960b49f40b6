package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/incilens-org/incilens/analysis"
	"github.com/incilens-org/incilens/config"
	"github.com/incilens-org/incilens/engine"
	"github.com/incilens-org/incilens/helpers"
	"github.com/incilens-org/incilens/schema"
)

// ============================================================================
// INCILENS CLI — Runs the standard analyses over an incident dataset
// ============================================================================

const version = "0.3.0"

var analysisNames = []string{
	"overview", "seasonal", "decades", "groups",
	"percapita", "success", "deadliest", "country",
}

func main() {
	dataPath := flag.String("data", "", "Path to incident CSV export (required)")
	popPath := flag.String("population", "", "Path to population baseline CSV (entity,population)")
	cfgPath := flag.String("config", "", "Path to YAML config")
	which := flag.String("analysis", "overview", "Analysis to run: all, "+joinNames())
	country := flag.String("country", "", "Country for the country profile (overrides config)")
	topN := flag.Int("top", 0, "Ranked list size (overrides config)")
	sample := flag.Int("sample", 0, "Use only the first N rows (development subset)")
	format := flag.String("format", "json", "Output format: json, pretty, csv")
	outFile := flag.String("out", "", "Write output to file instead of stdout")
	logLevel := flag.String("log-level", "", "Log level (overrides config)")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Incilens — incident aggregation & ranking engine

Usage:
  incilens --data gtd.csv --analysis overview --format pretty
  incilens --data gtd.csv --analysis decades --format csv --out decades.csv
  incilens --data gtd.csv --population pop.csv --analysis percapita
  incilens --data gtd.csv --population pop.csv --analysis country --country Kazakhstan
  incilens --data gtd.csv --sample 5000 --analysis all

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Formats:
  json      Full JSON report (default)
  pretty    Pretty-printed JSON
  csv       The analysis's primary ranked table as CSV
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("incilens %s\n", version)
		os.Exit(0)
	}
	if *dataPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --data is required")
		flag.Usage()
		os.Exit(1)
	}

	// ── Config ────────────────────────────────────────────────────────────
	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *topN > 0 {
		cfg.Analysis.TopN = *topN
	}
	if *country != "" {
		cfg.Analysis.FocusCountry = *country
	}
	if *sample > 0 {
		cfg.Data.SampleRows = *sample
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	setupLogging(cfg.Log)

	// ── Load and normalize ────────────────────────────────────────────────
	data, err := os.ReadFile(*dataPath)
	if err != nil {
		fatalf("Failed to read data file: %v", err)
	}
	rows, err := helpers.ParseIncidents(data)
	if err != nil {
		fatalf("Failed to parse incident CSV: %v", err)
	}
	if cfg.Data.SampleRows > 0 {
		rows = helpers.Head(rows, cfg.Data.SampleRows)
		logrus.Infof("using development subset: %d rows", len(rows))
	}

	table, err := schema.Normalize(rows, cfg.Mapping)
	if err != nil {
		fatalf("Normalization failed: %v", err)
	}
	logrus.Infof("normalized %d incident records", table.Len())

	var population engine.PopulationLookup
	if *popPath != "" {
		popData, err := os.ReadFile(*popPath)
		if err != nil {
			fatalf("Failed to read population file: %v", err)
		}
		population, err = helpers.ParsePopulation(popData)
		if err != nil {
			fatalf("Failed to parse population CSV: %v", err)
		}
		population = helpers.WithAliases(population, cfg.Population.Aliases)
		logrus.Infof("population baseline: %d entities", len(population))
	}

	// ── Output writer ─────────────────────────────────────────────────────
	var writer io.Writer = os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		writer = f
	}

	// ── Run ───────────────────────────────────────────────────────────────
	if *which == "all" {
		out := make(map[string]any, len(analysisNames))
		for _, name := range analysisNames {
			if name == "percapita" && population == nil {
				continue
			}
			if name == "country" && cfg.Analysis.FocusCountry == "" {
				continue
			}
			report, _, err := runAnalysis(name, table, population, cfg)
			if err != nil {
				fatalf("Analysis %s failed: %v", name, err)
			}
			out[name] = report
		}
		writeJSON(writer, out, *format)
		return
	}

	report, primary, err := runAnalysis(*which, table, population, cfg)
	if err != nil {
		fatalf("Analysis %s failed: %v", *which, err)
	}
	if *format == "csv" {
		writeRowsCSV(writer, primary)
		return
	}
	writeJSON(writer, report, *format)
}

// runAnalysis dispatches one analysis and returns the full report plus its
// primary ranked table for CSV output.
func runAnalysis(name string, t engine.Table, population engine.PopulationLookup, cfg *config.Config) (any, rankedTable, error) {
	a := cfg.Analysis
	switch name {
	case "overview":
		r, err := analysis.Overview(t, a.TopN)
		if err != nil {
			return nil, rankedTable{}, err
		}
		return r, rankedTable{"country", r.TopCountries}, nil

	case "seasonal":
		r, err := analysis.Seasonal(t, a.TopRegions, a.Since)
		if err != nil {
			return nil, rankedTable{}, err
		}
		return r, rankedTable{"season", r.Seasons.Rows()}, nil

	case "decades":
		r, err := analysis.Decades(t, a.TopRegions, a.TopTargetTypes)
		if err != nil {
			return nil, rankedTable{}, err
		}
		return r, rankedTable{"decade", r.Overview.Rows()}, nil

	case "groups":
		r, err := analysis.Groups(t, a.TopN, a.MinActorAttacks)
		if err != nil {
			return nil, rankedTable{}, err
		}
		return r, rankedTable{"group", r.MostActive}, nil

	case "percapita":
		if population == nil {
			return nil, rankedTable{}, fmt.Errorf("percapita analysis needs --population")
		}
		r, err := analysis.AttacksPerCapita(t, population, a.TopN, engine.WithScale(a.Scale))
		if err != nil {
			return nil, rankedTable{}, err
		}
		return r, rankedTable{"country", r.Top}, nil

	case "success":
		r, err := analysis.SuccessRates(t, a.TopN)
		if err != nil {
			return nil, rankedTable{}, err
		}
		return r, rankedTable{"attackType", r.ByAttackType.Rows()}, nil

	case "deadliest":
		r, err := analysis.Deadliest(t, a.TopN)
		if err != nil {
			return nil, rankedTable{}, err
		}
		return r, rankedTable{"group", r.Actors}, nil

	case "country":
		if a.FocusCountry == "" {
			return nil, rankedTable{}, fmt.Errorf("country analysis needs --country")
		}
		r, err := analysis.CountryProfile(t, a.FocusCountry, population)
		if err != nil {
			return nil, rankedTable{}, err
		}
		return r, rankedTable{"attackType", r.AttackTypes}, nil
	}
	return nil, rankedTable{}, fmt.Errorf("unknown analysis %q (want all, %s)", name, joinNames())
}

// ============================================================================
// OUTPUT
// ============================================================================

// rankedTable is an analysis's primary table flattened for CSV.
type rankedTable struct {
	keyLabel string
	rows     []engine.AggregateRow
}

func writeRowsCSV(w io.Writer, t rankedTable) {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if len(t.rows) == 0 {
		cw.Write([]string{"Result", "No data"})
		return
	}

	// stable metric column order
	metricNames := make([]string, 0, len(t.rows[0].Metrics))
	for name := range t.rows[0].Metrics {
		metricNames = append(metricNames, name)
	}
	sort.Strings(metricNames)

	cw.Write(append([]string{t.keyLabel}, metricNames...))
	for _, row := range t.rows {
		out := []string{row.KeyString()}
		for _, name := range metricNames {
			out = append(out, fmtNum(row.Metric(name)))
		}
		cw.Write(out)
	}
}

func writeJSON(w io.Writer, v any, format string) {
	var out []byte
	var err error
	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		fatalf("Failed to marshal output: %v", err)
	}
	fmt.Fprintln(w, string(out))
}

// ============================================================================
// HELPERS
// ============================================================================

func setupLogging(cfg config.LogConfig) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	writers := []io.Writer{os.Stderr}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			fatalf("Failed to open log file: %v", err)
		}
		writers = append(writers, f)
	}
	logrus.SetOutput(io.MultiWriter(writers...))
}

func joinNames() string {
	out := ""
	for i, n := range analysisNames {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

func fmtNum(v float64) string {
	// whole numbers without decimals, rates with four
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
