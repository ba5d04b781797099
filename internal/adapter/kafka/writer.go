package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-track-service/internal/config"
	"github.com/couchcryptid/storm-track-service/internal/viewmodel"
	kafkago "github.com/segmentio/kafka-go"
)

// Header keys set on every prediction message.
const (
	HeaderStatus     = "status"
	HeaderRenderedAt = "rendered_at"
)

// Publisher produces rendered prediction views to a Kafka topic.
// It implements pipeline.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured prediction topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaPredictionTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes view and writes it keyed by its request token.
func (p *Publisher) Publish(ctx context.Context, token uint64, view viewmodel.PredictionView) error {
	msg, err := serializeToMessage(token, view)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write prediction %d: %w", token, err)
	}
	p.logger.Debug("prediction published", "token", token, "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a prediction view into a Kafka message.
func serializeToMessage(token uint64, view viewmodel.PredictionView) (kafkago.Message, error) {
	data, err := json.Marshal(view)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction view: %w", err)
	}
	status := "failure"
	if view.Success {
		status = "success"
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatUint(token, 10)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderStatus, Value: []byte(status)},
			{Key: HeaderRenderedAt, Value: []byte(view.RenderedAt.Format(time.RFC3339))},
		},
	}, nil
}
