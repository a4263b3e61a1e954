// Command validate checks a percentile artifact for structural and numeric
// consistency and, when station directories are given, recomputes every
// entry from the station files and compares.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -artifact public/maps/data/datos_percentiles.json \
//	  -temp-dir public/maps/data/Datos_temp \
//	  -precip-dir public/maps/data/Datos_precip \
//	  -kind mean
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"regexp"

	"github.com/couchcryptid/climate-percentiles/internal/adapter/stationfs"
	"github.com/couchcryptid/climate-percentiles/internal/domain"
	"github.com/couchcryptid/climate-percentiles/internal/observability"
	"github.com/couchcryptid/climate-percentiles/internal/pipeline"
)

var periodRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	artifact := flag.String("artifact", "", "path to the percentile JSON artifact")
	tempDir := flag.String("temp-dir", "", "optional temperature station directory for recomputation")
	precipDir := flag.String("precip-dir", "", "optional precipitation station directory for recomputation")
	kind := flag.String("kind", string(domain.KindMean), "percentile kind used to produce the artifact")
	flag.Parse()

	if *artifact == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, *artifact, *tempDir, *precipDir, *kind); code != 0 {
		os.Exit(code)
	}
}

func run(out io.Writer, artifactPath, tempDir, precipDir, kindName string) int {
	kind, err := domain.ParsePercentileKind(kindName)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	data, err := os.ReadFile(artifactPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: read artifact: %v\n", err)
		return 1
	}
	report, err := domain.DecodeReport(data)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	localities, err := domain.Localities()
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	fmt.Fprintln(out, "=== Percentile Artifact Validation ===")
	fmt.Fprintln(out)

	phases := []*phase{
		validateLocalities(report, localities),
		validateRanges(report),
	}
	if tempDir != "" && precipDir != "" {
		phases = append(phases, validateRecompute(report, localities, tempDir, precipDir, kind))
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Entries: %d temperature, %d precipitation\n", report.Temperature.Len(), report.Precipitation.Len())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func categories(report *domain.Report) []struct {
	category domain.Category
	set      *domain.ResultSet
} {
	return []struct {
		category domain.Category
		set      *domain.ResultSet
	}{
		{domain.CategoryTemperature, report.Category(domain.CategoryTemperature)},
		{domain.CategoryPrecipitation, report.Category(domain.CategoryPrecipitation)},
	}
}

// ── Phase 1: Localities ──
// Every entry names a known locality, in locality-table order.

func validateLocalities(report domain.Report, localities []domain.Locality) *phase {
	p := &phase{name: "Phase 1: Localities (names and order)"}

	position := make(map[string]int, len(localities))
	for i, l := range localities {
		position[l.Name] = i
	}

	for _, c := range categories(&report) {
		last := -1
		for _, name := range c.set.Names() {
			pos, ok := position[name]
			if !ok {
				p.errorf("%s: unknown locality %q", c.category, name)
				continue
			}
			if pos < last {
				p.errorf("%s: locality %q out of table order", c.category, name)
			}
			last = pos
		}
	}
	return p
}

// ── Phase 2: Ranges ──
// Success entries carry a percentile in [0,100], a sample of at least one,
// a YYYY-MM period and two-decimal values.

func validateRanges(report domain.Report) *phase {
	p := &phase{name: "Phase 2: Ranges (percentile, sample, period)"}

	for _, c := range categories(&report) {
		for _, name := range c.set.Names() {
			r, _ := c.set.Get(name)
			if r.Failed() {
				continue
			}
			pct := float64(r.Percentile)
			if pct < 0 || pct > 100 {
				p.errorf("%s/%s: percentile %v outside [0,100]", c.category, name, pct)
			}
			if r.SampleSize < 1 {
				p.errorf("%s/%s: sample size %d < 1", c.category, name, r.SampleSize)
			}
			if !periodRe.MatchString(r.LatestPeriod) {
				p.errorf("%s/%s: period %q is not YYYY-MM", c.category, name, r.LatestPeriod)
			}
			for label, v := range map[string]float64{"percentile": pct, "value": float64(r.LatestValue)} {
				if math.Abs(domain.Round2(v)-v) > 1e-9 {
					p.errorf("%s/%s: %s %v not rounded to 2 decimals", c.category, name, label, v)
				}
			}
		}
	}
	return p
}

// ── Phase 3: Recompute ──
// Re-runs the aggregation over the station directories and compares.

func validateRecompute(report domain.Report, localities []domain.Locality, tempDir, precipDir string, kind domain.PercentileKind) *phase {
	p := &phase{name: "Phase 3: Recompute (artifact vs stations)"}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics()
	stations := stationfs.NewStore(logger)
	agg := pipeline.NewAggregator(stations, pipeline.NewCalculator(stations, kind, logger, metrics), logger, metrics)

	roots := map[domain.Category]string{
		domain.CategoryTemperature:   tempDir,
		domain.CategoryPrecipitation: precipDir,
	}

	for _, c := range categories(&report) {
		fresh := agg.Aggregate(localities, roots[c.category], c.category)

		for _, name := range fresh.Names() {
			want, _ := fresh.Get(name)
			got, ok := c.set.Get(name)
			if !ok {
				p.errorf("%s/%s: missing from artifact", c.category, name)
				continue
			}
			if got != want {
				p.errorf("%s/%s: artifact=%+v, recomputed=%+v", c.category, name, got, want)
			}
		}
		for _, name := range c.set.Names() {
			if _, ok := fresh.Get(name); !ok {
				p.errorf("%s/%s: no station file found to back this entry", c.category, name)
			}
		}
	}
	return p
}
