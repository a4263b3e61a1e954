package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/climate-percentiles/internal/domain"
	"github.com/couchcryptid/climate-percentiles/internal/observability"
)

// StationLocator finds station files by code prefix under a root directory.
type StationLocator interface {
	Locate(codes []string, root string) []string
}

// Aggregator computes one category's result set across all localities.
type Aggregator struct {
	locator    StationLocator
	calculator *Calculator
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewAggregator creates an Aggregator.
func NewAggregator(locator StationLocator, calculator *Calculator, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{
		locator:    locator,
		calculator: calculator,
		logger:     logger,
		metrics:    metrics,
	}
}

// Aggregate scores each locality's first located station file under root.
// Localities without any file are left out of the set.
func (a *Aggregator) Aggregate(localities []domain.Locality, root string, category domain.Category) domain.ResultSet {
	var set domain.ResultSet
	label := string(category)

	for _, loc := range localities {
		files := a.locator.Locate(loc.Codes, root)
		if len(files) == 0 {
			a.logger.Debug("no station file for locality", "category", label, "locality", loc.Name)
			a.metrics.LocalitiesProcessed.WithLabelValues(label, observability.OutcomeMissing).Inc()
			continue
		}
		a.metrics.FilesLocated.WithLabelValues(label).Add(float64(len(files)))

		path := files[0]
		result := a.calculator.Compute(path)
		set.Set(loc.Name, result)

		if result.Failed() {
			a.logger.Warn("station computation failed",
				"category", label,
				"locality", loc.Name,
				"path", path,
				"error", result.Err,
			)
			a.metrics.LocalitiesProcessed.WithLabelValues(label, observability.OutcomeError).Inc()
			continue
		}

		a.logger.Debug("station scored",
			"category", label,
			"locality", loc.Name,
			"path", path,
			"percentile", float64(result.Percentile),
			"period", result.LatestPeriod,
		)
		a.metrics.LocalitiesProcessed.WithLabelValues(label, observability.OutcomeOK).Inc()
		a.metrics.SampleSize.WithLabelValues(label).Observe(float64(result.SampleSize))
	}

	return set
}
