package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/config"
	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/domain"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestWriter(fw *fakeWriter, now time.Time) *Writer {
	return &Writer{
		writer: fw,
		topic:  "youbike-stations",
		clock:  clockwork.NewFakeClockAt(now),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	st := domain.Station{
		ID:       "500101001",
		Name:     "捷運市府站(3號出口)",
		District: "信義區",
		Lat:      25.0408,
		Lng:      121.5671,
		City:     domain.CityTaipei,
		Bikes:    5,
		Docks:    10,
	}

	msg, err := serializeToMessage(st, now)
	require.NoError(t, err)

	assert.Equal(t, []byte("500101001"), msg.Key)
	assert.Contains(t, string(msg.Value), `"sbi":5`)
	assert.Contains(t, string(msg.Value), `"city":"Taipei"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "city", msg.Headers[0].Key)
	assert.Equal(t, []byte("Taipei"), msg.Headers[0].Value)
	assert.Equal(t, "run_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2026-10-18T09:30:00Z"), msg.Headers[1].Value)
}

func TestWriter_Load(t *testing.T) {
	fw := &fakeWriter{}
	w := newTestWriter(fw, time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC))

	stations := []domain.Station{
		{ID: "a", City: domain.CityTaipei},
		{ID: "b", City: domain.CityNewTaipei},
	}
	require.NoError(t, w.Load(context.Background(), stations))
	require.Len(t, fw.msgs, 2)
	assert.Equal(t, []byte("b"), fw.msgs[1].Key)
	assert.Equal(t, fw.msgs[0].Headers[1].Value, fw.msgs[1].Headers[1].Value, "one run_at per snapshot")

	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}

func TestWriter_Load_Empty(t *testing.T) {
	fw := &fakeWriter{err: errors.New("should not be called")}
	w := newTestWriter(fw, time.Now())
	assert.NoError(t, w.Load(context.Background(), nil))
}

func TestWriter_Load_Error(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	w := newTestWriter(fw, time.Now())

	err := w.Load(context.Background(), []domain.Station{{ID: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "youbike-stations")
	assert.Contains(t, err.Error(), "broker down")
}

func TestNewWriter(t *testing.T) {
	w := NewWriter(&config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "t"}, slog.Default())
	kw, ok := w.writer.(*kafkago.Writer)
	require.True(t, ok)
	assert.Equal(t, "t", kw.Topic)
	assert.Equal(t, kafkago.RequireAll, kw.RequiredAcks)
	require.NoError(t, w.Close())
}
