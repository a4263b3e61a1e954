package kafka

import (
	"context"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/climate-percentiles/internal/config"
)

// reportKey is the message key for every artifact, so a compacted topic keeps
// only the latest report.
const reportKey = "percentiles"

// messageWriter is the subset of *kafkago.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces the percentile artifact to a Kafka topic.
// It implements pipeline.ReportPublisher.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured report topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish writes the artifact as a single message.
func (p *Publisher) Publish(ctx context.Context, report []byte, generatedAt time.Time) error {
	msg := reportMessage(report, generatedAt)
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	p.logger.Debug("report published", "bytes", len(report))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func reportMessage(report []byte, generatedAt time.Time) kafkago.Message {
	return kafkago.Message{
		Key:   []byte(reportKey),
		Value: report,
		Headers: []kafkago.Header{
			{Key: "content_type", Value: []byte("application/json")},
			{Key: "generated_at", Value: []byte(generatedAt.UTC().Format(time.RFC3339))},
		},
	}
}
