package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ridematcher/internal/models"
	"ridematcher/pkg/logger"
)

// KafkaDispatcher publishes match notifications to a Kafka topic, keyed by
// recipient so per-user ordering is preserved. Used by deployments that
// route delivery through a separate worker instead of the in-process bot.
type KafkaDispatcher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

// NewKafkaDispatcher creates a dispatcher writing to the given topic.
func NewKafkaDispatcher(brokers []string, topic string, log *logger.Logger) *KafkaDispatcher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &KafkaDispatcher{writer: writer, logger: log}
}

// Dispatch publishes the notification event.
func (d *KafkaDispatcher) Dispatch(ctx context.Context, notification models.MatchNotification) error {
	value, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = d.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(notification.RecipientID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Close closes the underlying Kafka writer.
func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
