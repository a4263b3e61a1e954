package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/climate-percentiles/internal/domain"
	"github.com/couchcryptid/climate-percentiles/internal/observability"
)

// ReportSink persists the encoded artifact.
type ReportSink interface {
	Save(ctx context.Context, data []byte) error
	Path() string
}

// ReportPublisher forwards the encoded artifact to downstream consumers.
type ReportPublisher interface {
	Publish(ctx context.Context, report []byte, generatedAt time.Time) error
}

// Options configures what a run reads.
type Options struct {
	Localities       []domain.Locality
	TemperatureDir   string
	PrecipitationDir string
	// PublishTimeout bounds the optional publish step.
	PublishTimeout time.Duration
}

// RunSummary describes a completed run.
type RunSummary struct {
	Report     domain.Report
	OutputPath string
	// PublishErr is set when the artifact was saved but could not be published.
	PublishErr error
}

// Pipeline runs both categories, saves the artifact and optionally publishes it.
type Pipeline struct {
	opts       Options
	aggregator *Aggregator
	sink       ReportSink
	publisher  ReportPublisher
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Pipeline. Pass a nil publisher to skip publication.
func New(opts Options, aggregator *Aggregator, sink ReportSink, publisher ReportPublisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		opts:       opts,
		aggregator: aggregator,
		sink:       sink,
		publisher:  publisher,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run computes temperature then precipitation results and saves the artifact.
// Only a failure to save is returned as an error; per-station failures are
// part of the report.
func (p *Pipeline) Run(ctx context.Context) (RunSummary, error) {
	start := clock.Now()
	defer func() {
		p.metrics.RunDuration.Set(clock.Since(start).Seconds())
		p.metrics.LastRunTimestamp.Set(float64(clock.Now().Unix()))
	}()

	p.logger.Info("run started", "localities", len(p.opts.Localities))

	var report domain.Report
	categories := []struct {
		category domain.Category
		root     string
	}{
		{domain.CategoryTemperature, p.opts.TemperatureDir},
		{domain.CategoryPrecipitation, p.opts.PrecipitationDir},
	}
	for _, c := range categories {
		set := p.aggregator.Aggregate(p.opts.Localities, c.root, c.category)
		*report.Category(c.category) = set
		p.logger.Info("category aggregated", "category", string(c.category), "root", c.root, "localities", set.Len())
	}

	summary := RunSummary{Report: report, OutputPath: p.sink.Path()}

	data, err := domain.EncodeReport(report)
	if err != nil {
		p.metrics.ReportWrites.WithLabelValues(observability.OutcomeError).Inc()
		return summary, err
	}

	if err := p.sink.Save(ctx, data); err != nil {
		p.metrics.ReportWrites.WithLabelValues(observability.OutcomeError).Inc()
		return summary, fmt.Errorf("save report: %w", err)
	}
	p.metrics.ReportWrites.WithLabelValues(observability.OutcomeOK).Inc()
	p.logger.Info("report saved", "path", summary.OutputPath, "bytes", len(data))

	if p.publisher != nil {
		summary.PublishErr = p.publish(ctx, data)
	}

	return summary, nil
}

func (p *Pipeline) publish(ctx context.Context, data []byte) error {
	if p.opts.PublishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.PublishTimeout)
		defer cancel()
	}

	if err := p.publisher.Publish(ctx, data, clock.Now()); err != nil {
		p.metrics.ReportPublishes.WithLabelValues(observability.OutcomeError).Inc()
		p.logger.Error("publish report failed", "error", err)
		return fmt.Errorf("publish report: %w", err)
	}
	p.metrics.ReportPublishes.WithLabelValues(observability.OutcomeOK).Inc()
	p.logger.Info("report published")
	return nil
}
