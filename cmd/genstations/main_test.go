package main

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-percentiles/internal/domain"
)

func TestGenerate_WritesParseableStations(t *testing.T) {
	out := t.TempDir()
	end := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, generate(options{outDir: out, years: 3, end: end, seed: 7}))

	locs, err := domain.Localities()
	require.NoError(t, err)

	for _, loc := range locs {
		for _, rel := range []string{
			filepath.Join("Datos_temp", loc.Codes[0]+"_temp.txt"),
			filepath.Join("Datos_precip", loc.Codes[0]+"_pp.txt"),
		} {
			data, err := os.ReadFile(filepath.Join(out, rel))
			require.NoError(t, err, rel)

			series, err := domain.ParseSeries(string(data))
			require.NoError(t, err, rel)
			require.Len(t, series, 36, rel)

			assert.Equal(t, "2024-06", series.Latest().Period(), rel)
			assert.Equal(t, "2021-07", series[0].Period(), rel)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	end := time.Date(2020, time.December, 1, 0, 0, 0, 0, time.UTC)
	a, b := t.TempDir(), t.TempDir()

	require.NoError(t, generate(options{outDir: a, years: 5, end: end, seed: 99}))
	require.NoError(t, generate(options{outDir: b, years: 5, end: end, seed: 99}))

	rel := filepath.Join("Datos_precip", "E000V00030_pp.txt")
	da, err := os.ReadFile(filepath.Join(a, rel))
	require.NoError(t, err)
	db, err := os.ReadFile(filepath.Join(b, rel))
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestGenerate_RejectsZeroYears(t *testing.T) {
	err := generate(options{outDir: t.TempDir(), years: 0, end: time.Now()})
	require.Error(t, err)
}

func TestSynthesize_PrecipitationNonNegative(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	start := time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(1999, time.December, 1, 0, 0, 0, 0, time.UTC)

	series := synthesize(rng, domain.CategoryPrecipitation, start, end)
	require.Len(t, series, 120)
	for _, o := range series {
		assert.GreaterOrEqual(t, o.Value, 0.0)
	}
}

func TestParseEnd(t *testing.T) {
	clock = clockwork.NewFakeClockAt(time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC))
	t.Cleanup(func() { clock = clockwork.NewRealClock() })

	got, err := parseEnd("")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = parseEnd("2023-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = parseEnd("March 2023")
	require.Error(t, err)
}
