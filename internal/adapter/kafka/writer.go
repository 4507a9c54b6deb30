package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"

	"github.com/couchcryptid/neo-approach-etl/internal/config"
	"github.com/couchcryptid/neo-approach-etl/internal/domain"
	"github.com/couchcryptid/neo-approach-etl/internal/write"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces one message per close approach to a Kafka topic.
// It implements pipeline.Sink.
type Publisher struct {
	writer    messageWriter
	batchSize int
	runID     string
	logger    *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured topic. runID is
// attached to every message as a header.
func NewPublisher(cfg *config.Config, runID string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return newPublisher(w, cfg.BatchSize, runID, logger)
}

func newPublisher(w messageWriter, batchSize int, runID string, logger *slog.Logger) *Publisher {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Publisher{writer: w, batchSize: batchSize, runID: runID, logger: logger}
}

func (p *Publisher) Name() string { return "kafka" }

// Write serializes and publishes results in batches of up to batchSize
// messages. It returns the number of messages acknowledged.
func (p *Publisher) Write(ctx context.Context, results iter.Seq[*domain.Approach]) (int, error) {
	sent := 0
	batch := make([]kafkago.Message, 0, p.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.writer.WriteMessages(ctx, batch...); err != nil {
			return fmt.Errorf("publish batch of %d: %w", len(batch), err)
		}
		sent += len(batch)
		p.logger.Debug("published batch", "messages", len(batch), "total", sent)
		batch = batch[:0]
		return nil
	}

	for a := range results {
		msg, err := serializeToMessage(a, p.runID)
		if err != nil {
			return sent, err
		}
		batch = append(batch, msg)
		if len(batch) == p.batchSize {
			if err := flush(); err != nil {
				return sent, err
			}
		}
	}
	if err := flush(); err != nil {
		return sent, err
	}
	return sent, nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an approach and its NEO into a Kafka message
// keyed by designation, so every approach of one object lands on the same
// partition.
func serializeToMessage(a *domain.Approach, runID string) (kafkago.Message, error) {
	rec, err := write.NewRecord(a)
	if err != nil {
		return kafkago.Message{}, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize approach: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.NEO.Designation),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "designation", Value: []byte(rec.NEO.Designation)},
			{Key: "datetime_utc", Value: []byte(rec.DateTimeUTC)},
			{Key: "run_id", Value: []byte(runID)},
		},
	}, nil
}
