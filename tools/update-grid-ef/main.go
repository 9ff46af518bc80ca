// Package main merges newly published grid emission factors into the
// embedded dataset at internal/gridef/data/grid_emission_factors.csv.
//
// Usage:
//
//	go run ./tools/update-grid-ef --input updates.csv [--dry-run]
//
// Flags:
//
//	--input       CSV of new or revised records, in the dataset layout
//	--output      Path to the dataset (default: ./internal/gridef/data/grid_emission_factors.csv)
//	--dry-run     Print the merged dataset without writing it
//	--max-factor  Upper plausibility bound in tCO2/MWh (default: 2.0)
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rshade/carbon-credit-engine/internal/gridef"
)

const (
	defaultOutput = "./internal/gridef/data/grid_emission_factors.csv"

	// The dirtiest national grids sit around 1.2 tCO2/MWh; values above this
	// bound are almost always kg/MWh or g/kWh typed into the wrong column.
	defaultMaxFactor = 2.0
)

func main() {
	input := flag.String("input", "", "CSV of updated grid emission factor records")
	output := flag.String("output", defaultOutput, "Path to grid_emission_factors.csv")
	dryRun := flag.Bool("dry-run", false, "Print the merged dataset without writing it")
	maxFactor := flag.Float64("max-factor", defaultMaxFactor, "Upper plausibility bound in tCO2/MWh")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: --input is required")
		os.Exit(2)
	}

	base, err := loadRecords(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading dataset: %v\n", err)
		os.Exit(1)
	}
	updates, err := loadRecords(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading updates: %v\n", err)
		os.Exit(1)
	}

	merged, changes := merge(base, updates)
	if err := validateRecords(merged, *maxFactor, time.Now().Year()); err != nil {
		fmt.Fprintf(os.Stderr, "Validation error: %v\n", err)
		os.Exit(1)
	}

	content, err := render(merged)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering dataset: %v\n", err)
		os.Exit(1)
	}

	for _, c := range changes {
		fmt.Println(c)
	}

	if *dryRun {
		fmt.Println("\n--- Dry run output ---")
		fmt.Print(string(content))
		return
	}

	if err := os.WriteFile(*output, content, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated %s: %d records, %d changes\n", *output, len(merged), len(changes))
	fmt.Println("Run 'go test ./internal/gridef/...' to verify the changes")
}

func loadRecords(path string) ([]gridef.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	table, err := gridef.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table.All(), nil
}

func recordKey(r gridef.Record) string {
	if r.RegionCode == "" {
		return r.CountryCode
	}
	return r.CountryCode + "/" + r.RegionCode
}

// merge replaces base records that share a (country, region) key with the
// update and appends the rest. It describes every change it made.
func merge(base, updates []gridef.Record) ([]gridef.Record, []string) {
	index := make(map[string]int, len(base))
	merged := append([]gridef.Record(nil), base...)
	for i, r := range merged {
		index[recordKey(r)] = i
	}

	var changes []string
	for _, u := range updates {
		key := recordKey(u)
		i, ok := index[key]
		if !ok {
			index[key] = len(merged)
			merged = append(merged, u)
			changes = append(changes, fmt.Sprintf("added %s: %v (%s %d)",
				key, u.EmissionFactor(), u.SourceName, u.DataYear))
			continue
		}
		old := merged[i]
		merged[i] = u
		if old.EmissionFactor() != u.EmissionFactor() || old.DataYear != u.DataYear || old.SourceName != u.SourceName {
			changes = append(changes, fmt.Sprintf("updated %s: %v -> %v (%s %d)",
				key, old.EmissionFactor(), u.EmissionFactor(), u.SourceName, u.DataYear))
		}
	}
	return merged, changes
}

// validateRecords checks every factor lies in [0, maxFactor] and no record
// claims data from the future.
func validateRecords(records []gridef.Record, maxFactor float64, currentYear int) error {
	var problems []string
	check := func(r gridef.Record, name string, v *float64) {
		if v != nil && (*v < 0 || *v > maxFactor) {
			problems = append(problems, fmt.Sprintf("%s: %s %v is outside valid range [0, %v]",
				recordKey(r), name, *v, maxFactor))
		}
	}

	for _, r := range records {
		cm := r.CombinedMargin
		check(r, "combined_margin", &cm)
		check(r, "operating_margin", r.OperatingMargin)
		check(r, "build_margin", r.BuildMargin)
		check(r, "weighted_average", r.WeightedAverage)
		if r.DataYear > currentYear {
			problems = append(problems, fmt.Sprintf("%s: data_year %d is in the future", recordKey(r), r.DataYear))
		}
		if strings.TrimSpace(r.SourceName) == "" {
			problems = append(problems, fmt.Sprintf("%s: source_name is empty", recordKey(r)))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("validation failed:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}

// render writes records sorted by country then region.
func render(records []gridef.Record) ([]byte, error) {
	table, err := gridef.NewTable(records)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := gridef.WriteCSV(&buf, table.All()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
