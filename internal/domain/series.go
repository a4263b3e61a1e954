package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrNoValidData is returned when a station file holds no records. Its text
// is part of the output artifact contract.
var ErrNoValidData = errors.New("No valid data.") //nolint:staticcheck // message is a fixed output literal

// Observation is one monthly station reading.
type Observation struct {
	Year  int
	Month int // 1–12
	Value float64
}

// Period formats the observation's month as "YYYY-MM".
func (o Observation) Period() string {
	return fmt.Sprintf("%04d-%02d", o.Year, o.Month)
}

// before orders observations by the first day of their (year, month).
func (o Observation) before(other Observation) bool {
	if o.Year != other.Year {
		return o.Year < other.Year
	}
	return o.Month < other.Month
}

// Series is the set of observations read from one station file.
type Series []Observation

// SortChronological orders the series by (year, month). Duplicate periods
// keep their file order.
func (s Series) SortChronological() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].before(s[j])
	})
}

// Latest returns the last observation. The series must be sorted and non-empty.
func (s Series) Latest() Observation {
	return s[len(s)-1]
}

// MonthValues returns the values of every observation in the given calendar month.
func (s Series) MonthValues(month int) []float64 {
	var values []float64
	for _, o := range s {
		if o.Month == month {
			values = append(values, o.Value)
		}
	}
	return values
}

// ParseSeries parses whitespace-delimited "<year> <month> <value>" lines.
// Blank lines are skipped. Any other malformed line fails the whole series.
func ParseSeries(text string) (Series, error) {
	var series Series
	for i, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		obs, err := parseObservation(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		series = append(series, obs)
	}
	return series, nil
}

func parseObservation(fields []string) (Observation, error) {
	if len(fields) != 3 {
		return Observation{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}

	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return Observation{}, fmt.Errorf("invalid year %q", fields[0])
	}

	month, err := strconv.Atoi(fields[1])
	if err != nil || month < 1 || month > 12 {
		return Observation{}, fmt.Errorf("invalid month %q", fields[1])
	}

	value, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return Observation{}, fmt.Errorf("invalid value %q", fields[2])
	}

	return Observation{Year: year, Month: month, Value: value}, nil
}
