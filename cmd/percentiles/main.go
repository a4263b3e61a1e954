// Command percentiles ranks each locality's latest monthly station reading
// against its same-month history and writes the consolidated JSON artifact
// consumed by the climate maps.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	kafkaadapter "github.com/couchcryptid/climate-percentiles/internal/adapter/kafka"
	"github.com/couchcryptid/climate-percentiles/internal/adapter/jsonfile"
	"github.com/couchcryptid/climate-percentiles/internal/adapter/stationfs"
	"github.com/couchcryptid/climate-percentiles/internal/config"
	"github.com/couchcryptid/climate-percentiles/internal/domain"
	"github.com/couchcryptid/climate-percentiles/internal/observability"
	"github.com/couchcryptid/climate-percentiles/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	localities, err := domain.Localities()
	if err != nil {
		logger.Error("failed to load localities", "error", err)
		os.Exit(1)
	}

	// Publication is feature-flagged via KAFKA_ENABLED.
	var publisher pipeline.ReportPublisher
	if cfg.KafkaEnabled {
		kp := kafkaadapter.NewPublisher(cfg, logger)
		defer func() {
			if err := kp.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		publisher = kp
		logger.Info("kafka publication enabled", "topic", cfg.KafkaTopic)
	}

	stations := stationfs.NewStore(logger)
	calculator := pipeline.NewCalculator(stations, cfg.PercentileKind, logger, metrics)
	aggregator := pipeline.NewAggregator(stations, calculator, logger, metrics)

	p := pipeline.New(pipeline.Options{
		Localities:       localities,
		TemperatureDir:   cfg.TemperatureDir,
		PrecipitationDir: cfg.PrecipitationDir,
		PublishTimeout:   cfg.PublishTimeout,
	}, aggregator, jsonfile.NewStore(cfg.OutputPath), publisher, logger, metrics)

	summary, runErr := p.Run(context.Background())
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error saving JSON file: %v\n", runErr)
	} else {
		fmt.Printf("Success! Data saved to: %s\n", summary.OutputPath)
	}
	if summary.PublishErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: report was not published: %v\n", summary.PublishErr)
	}

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("write metrics textfile failed", "path", cfg.MetricsTextfile, "error", err)
		}
	}
}
