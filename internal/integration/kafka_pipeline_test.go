//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/climate-percentiles/internal/adapter/jsonfile"
	"github.com/couchcryptid/climate-percentiles/internal/adapter/kafka"
	"github.com/couchcryptid/climate-percentiles/internal/adapter/stationfs"
	"github.com/couchcryptid/climate-percentiles/internal/config"
	"github.com/couchcryptid/climate-percentiles/internal/domain"
	"github.com/couchcryptid/climate-percentiles/internal/observability"
	"github.com/couchcryptid/climate-percentiles/internal/pipeline"
)

var fixtureRoot = filepath.Join("..", "pipeline", "testdata", "stations")

// publishedMessage holds a message read back from the report topic.
type publishedMessage struct {
	Key     string
	Value   []byte
	Headers map[string]string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("climate-percentiles-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func readPublished(ctx context.Context, t *testing.T, broker, topic string) publishedMessage {
	t.Helper()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	t.Cleanup(func() { _ = reader.Close() })

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err, "read from report topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return publishedMessage{Key: string(msg.Key), Value: msg.Value, Headers: headers}
}

// TestPublisherRoundTrip verifies the adapter layer writes key, headers and
// body the way downstream consumers expect.
func TestPublisherRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	const topic = "test-publisher"
	createTopic(t, broker, topic)

	publisher := kafka.NewPublisher(&config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   topic,
	}, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	body := []byte(`{"temperatura": {}, "precipitacion": {}}`)
	generatedAt := time.Date(2024, time.July, 1, 3, 0, 0, 0, time.UTC)
	require.NoError(t, publisher.Publish(ctx, body, generatedAt))

	msg := readPublished(ctx, t, broker, topic)
	assert.Equal(t, "percentiles", msg.Key)
	assert.Equal(t, body, msg.Value)
	assert.Equal(t, "application/json", msg.Headers["content_type"])
	assert.Equal(t, "2024-07-01T03:00:00Z", msg.Headers["generated_at"])
}

// TestPipelineEndToEnd runs the full job over the station fixtures and checks
// the published message is byte-identical to the artifact on disk.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	const topic = "test-pipeline"
	createTopic(t, broker, topic)

	pipeline.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.August, 2, 6, 30, 0, 0, time.UTC)))
	t.Cleanup(func() { pipeline.SetClock(nil) })

	locs, err := domain.Localities()
	require.NoError(t, err)

	logger := discardLogger()
	metrics := observability.NewMetrics()
	stations := stationfs.NewStore(logger)
	agg := pipeline.NewAggregator(stations, pipeline.NewCalculator(stations, domain.KindMean, logger, metrics), logger, metrics)

	publisher := kafka.NewPublisher(&config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   topic,
	}, logger)
	t.Cleanup(func() { _ = publisher.Close() })

	out := filepath.Join(t.TempDir(), "datos_percentiles.json")
	p := pipeline.New(pipeline.Options{
		Localities:       locs,
		TemperatureDir:   filepath.Join(fixtureRoot, "Datos_temp"),
		PrecipitationDir: filepath.Join(fixtureRoot, "Datos_precip"),
		PublishTimeout:   30 * time.Second,
	}, agg, jsonfile.NewStore(out), publisher, logger, metrics)

	summary, err := p.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, summary.PublishErr)

	onDisk, err := os.ReadFile(out)
	require.NoError(t, err)

	msg := readPublished(ctx, t, broker, topic)
	assert.Equal(t, "percentiles", msg.Key)
	assert.Equal(t, onDisk, msg.Value)
	assert.Equal(t, "2024-08-02T06:30:00Z", msg.Headers["generated_at"])

	report, err := domain.DecodeReport(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Temperature.Len())
	assert.Equal(t, 3, report.Precipitation.Len())

	concon, ok := report.Precipitation.Get("Concón")
	require.True(t, ok)
	assert.InDelta(t, 62.5, float64(concon.Percentile), 1e-9)
}
