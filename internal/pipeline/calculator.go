package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/couchcryptid/climate-percentiles/internal/domain"
	"github.com/couchcryptid/climate-percentiles/internal/observability"
)

// StationReader returns the raw contents of a station file.
type StationReader interface {
	ReadStation(path string) ([]byte, error)
}

// Calculator turns one station file into a percentile result.
type Calculator struct {
	reader  StationReader
	kind    domain.PercentileKind
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCalculator creates a Calculator scoring with the given percentile kind.
func NewCalculator(reader StationReader, kind domain.PercentileKind, logger *slog.Logger, metrics *observability.Metrics) *Calculator {
	return &Calculator{
		reader:  reader,
		kind:    kind,
		logger:  logger,
		metrics: metrics,
	}
}

// Compute reads, decodes, parses and scores the station file at path.
// Failures are returned as the error form of domain.Result, never as an error.
func (c *Calculator) Compute(path string) domain.Result {
	result, err := c.compute(path)
	if errors.Is(err, domain.ErrNoValidData) {
		return domain.ErrorResult(domain.ErrNoValidData.Error())
	}
	if err != nil {
		return domain.ErrorResult(fmt.Sprintf("Error processing %s: %v", filepath.Base(path), err))
	}
	return result
}

func (c *Calculator) compute(path string) (domain.Result, error) {
	raw, err := c.reader.ReadStation(path)
	if err != nil {
		return domain.Result{}, err
	}

	decoded := domain.DecodeLatin1(raw)
	if decoded.Lossy() {
		c.metrics.LossyDecodes.Inc()
		c.logger.Warn("station file contains C1 control bytes",
			"path", path,
			"count", len(decoded.ControlBytes),
			"first_offset", decoded.ControlBytes[0],
		)
	}

	series, err := domain.ParseSeries(decoded.Text)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Summarize(series, c.kind)
}
