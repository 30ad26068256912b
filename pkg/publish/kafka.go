package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"wikiassets/pkg/config"
)

// MessageWriter is the part of kafka.Writer used by KafkaPublisher
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher sends one message per catalog entry, keyed by entry name
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
}

// NewKafkaPublisher creates a publisher writing to cfg.Topic
func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           cfg.Timeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(writer, cfg.Topic)
}

func newKafkaPublisher(writer MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic}
}

func (k *KafkaPublisher) Name() string { return "kafka" }

// Publish writes all entries in one batch
func (k *KafkaPublisher) Publish(ctx context.Context, run Run) error {
	if len(run.Entries) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(run.Entries))
	for _, entry := range run.Entries {
		value, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal entry %q: %w", entry.Name, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(entry.Name),
			Value: value,
			Headers: []kafka.Header{
				{Key: "category", Value: []byte(run.Category)},
			},
		})
	}

	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write to topic %s: %w", k.topic, err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}
