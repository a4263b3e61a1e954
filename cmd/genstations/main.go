// Command genstations writes deterministic synthetic station files for every
// locality in the built-in table, laid out the way the percentile pipeline
// expects them. It is used to seed local environments and demo maps.
//
// Usage:
//
//	go run ./cmd/genstations \
//	  -out public/maps/data \
//	  -years 30 \
//	  -end 2024-06 \
//	  -seed 42
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/climate-percentiles/internal/domain"
)

// clock is swapped in tests to pin the default end month.
var clock = clockwork.NewRealClock()

// options controls one generation run.
type options struct {
	outDir string
	years  int
	end    time.Time
	seed   uint64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "data root; Datos_temp and Datos_precip are created beneath it")
	years := flag.Int("years", 30, "number of years of history per station")
	end := flag.String("end", "", "last month to generate as YYYY-MM (default: previous calendar month)")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	endMonth, err := parseEnd(*end)
	if err != nil {
		return err
	}

	return generate(options{outDir: *outDir, years: *years, end: endMonth, seed: *seed})
}

func parseEnd(s string) (time.Time, error) {
	if s == "" {
		now := clock.Now().UTC()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -end %q: %w", s, err)
	}
	return t, nil
}

func generate(opts options) error {
	if opts.years < 1 {
		return fmt.Errorf("-years must be at least 1, got %d", opts.years)
	}

	localities, err := domain.Localities()
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	start := opts.end.AddDate(-opts.years, 1, 0)

	var files int
	for _, loc := range localities {
		code := loc.Codes[0]
		for _, c := range []struct {
			category domain.Category
			dir      string
			suffix   string
		}{
			{domain.CategoryTemperature, "Datos_temp", "_temp.txt"},
			{domain.CategoryPrecipitation, "Datos_precip", "_pp.txt"},
		} {
			series := synthesize(rng, c.category, start, opts.end)
			path := filepath.Join(opts.outDir, c.dir, code+c.suffix)
			if err := writeSeries(path, series); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			files++
		}
		log.Printf("%s: %s (%d months)", loc.Name, code, opts.years*12)
	}

	log.Printf("wrote %d station files under %s", files, opts.outDir)
	return nil
}

// synthesize builds a monthly series from start to end inclusive. Temperature
// follows a southern-hemisphere annual cycle; precipitation is concentrated in
// the austral winter and is zero in most summer months.
func synthesize(rng *rand.Rand, category domain.Category, start, end time.Time) domain.Series {
	var series domain.Series
	for t := start; !t.After(end); t = t.AddDate(0, 1, 0) {
		phase := 2 * math.Pi * float64(t.Month()-1) / 12

		var v float64
		switch category {
		case domain.CategoryTemperature:
			v = 14 + 5*math.Cos(phase) + rng.NormFloat64()*1.2
		default:
			mean := 45 - 45*math.Cos(phase)
			if rng.Float64() < 0.35 || mean < 10 && rng.Float64() < 0.6 {
				v = 0
			} else {
				v = math.Max(0, mean*rng.ExpFloat64())
			}
		}

		series = append(series, domain.Observation{
			Year:  t.Year(),
			Month: int(t.Month()),
			Value: domain.Round2(v),
		})
	}
	return series
}

func writeSeries(path string, series domain.Series) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var b strings.Builder
	for _, o := range series {
		fmt.Fprintf(&b, "%d %d %.2f\n", o.Year, o.Month, o.Value)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
