package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PercentileKind selects how ties between the score and the sample are credited.
type PercentileKind string

const (
	KindMean   PercentileKind = "mean"
	KindRank   PercentileKind = "rank"
	KindWeak   PercentileKind = "weak"
	KindStrict PercentileKind = "strict"
)

// ParsePercentileKind validates a kind name, case-insensitively.
func ParsePercentileKind(s string) (PercentileKind, error) {
	switch k := PercentileKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindMean, KindRank, KindWeak, KindStrict:
		return k, nil
	default:
		return "", fmt.Errorf("unknown percentile kind %q", s)
	}
}

// PercentileOfScore returns the percentile rank of score within sample,
// in [0, 100]. An empty sample scores 0.
func PercentileOfScore(sample []float64, score float64, kind PercentileKind) float64 {
	n := len(sample)
	if n == 0 {
		return 0
	}

	var less, equal int
	for _, v := range sample {
		switch {
		case v < score:
			less++
		case v == score:
			equal++
		}
	}
	lessOrEqual := less + equal
	scale := 100 / float64(n)

	switch kind {
	case KindRank:
		plus1 := 0
		if equal > 0 {
			plus1 = 1
		}
		return float64(less+lessOrEqual+plus1) * scale / 2
	case KindWeak:
		return float64(lessOrEqual) * scale
	case KindStrict:
		return float64(less) * scale
	default:
		return (float64(less) + 0.5*float64(equal)) * scale
	}
}

// Round2 rounds to two decimal places. The exact binary value is rounded and
// ties go to even, so 3.125 gives 3.12 and 1.115 (stored just below) gives 1.11.
func Round2(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}

// Summarize sorts the series, takes its latest observation and ranks it
// against every observation from the same calendar month.
func Summarize(series Series, kind PercentileKind) (Result, error) {
	if len(series) == 0 {
		return Result{}, ErrNoValidData
	}

	series.SortChronological()
	latest := series.Latest()
	sample := series.MonthValues(latest.Month)

	return Result{
		Percentile:   Decimal(Round2(PercentileOfScore(sample, latest.Value, kind))),
		LatestValue:  Decimal(Round2(latest.Value)),
		LatestPeriod: latest.Period(),
		SampleSize:   len(sample),
	}, nil
}
