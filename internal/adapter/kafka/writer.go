package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/flood-risk-etl/internal/config"
	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/observability"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces one message per assessed station to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// StationMessage is the JSON value written for each station.
type StationMessage struct {
	domain.AssessedStation
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	AssessedAt time.Time `json:"assessed_at"`
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// Publish serializes the enriched station table and writes it in a single
// WriteMessages call.
func (w *Writer) Publish(ctx context.Context, a *domain.Assessment) error {
	if len(a.Stations) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(a.Stations))
	for i := range a.Stations {
		msg, err := serializeToMessage(a, a.Stations[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d station messages: %w", len(msgs), err)
	}
	w.metrics.MessagesProduced.Add(float64(len(msgs)))
	w.logger.Debug("assessment published", "run_id", a.RunID, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one assessed station into a Kafka message keyed
// by station name.
func serializeToMessage(a *domain.Assessment, s domain.AssessedStation) (kafkago.Message, error) {
	data, err := json.Marshal(StationMessage{
		AssessedStation: s,
		RunID:           a.RunID,
		Source:          a.Source,
		AssessedAt:      a.AssessedAt,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station %q: %w", s.Name, err)
	}
	return kafkago.Message{
		Key:   []byte(s.Name),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk", Value: []byte(s.Risk)},
			{Key: "run_id", Value: []byte(a.RunID)},
			{Key: "assessed_at", Value: []byte(a.AssessedAt.Format(time.RFC3339))},
		},
	}, nil
}
