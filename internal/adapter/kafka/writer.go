package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/config"
	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes each station of a snapshot as one Kafka message.
// It implements pipeline.Loader.
type Writer struct {
	writer messageWriter
	topic  string
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, topic: cfg.KafkaTopic, clock: clockwork.NewRealClock(), logger: logger}
}

// Load serializes and publishes the snapshot in a single WriteMessages call.
// Every message carries the same run_at header.
func (w *Writer) Load(ctx context.Context, stations []domain.Station) error {
	if len(stations) == 0 {
		return nil
	}
	runAt := w.clock.Now().UTC()
	msgs := make([]kafkago.Message, len(stations))
	for i := range stations {
		msg, err := serializeToMessage(stations[i], runAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish snapshot to %s: %w", w.topic, err)
	}
	w.logger.Info("snapshot published", "topic", w.topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Station into a Kafka message keyed by sno.
func serializeToMessage(st domain.Station, runAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station %s: %w", st.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(st.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "city", Value: []byte(st.City)},
			{Key: "run_at", Value: []byte(runAt.Format(time.RFC3339))},
		},
	}, nil
}
