package notification

import (
	"context"
	"encoding/json"
	"fmt"

	kafkaGo "github.com/segmentio/kafka-go"
)

// KafkaSender publishes notification events for the delivery worker to
// consume. One writer is shared across sends.
type KafkaSender struct {
	writer *kafkaGo.Writer
}

func NewKafkaSender(brokers []string, topic string) *KafkaSender {
	return &KafkaSender{
		writer: &kafkaGo.Writer{
			Addr:     kafkaGo.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafkaGo.LeastBytes{},
		},
	}
}

func (s *KafkaSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("notification: failed to marshal message: %w", err)
	}

	err = s.writer.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(msg.To),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("notification: failed to publish message: %w", err)
	}
	return nil
}

func (s *KafkaSender) Close() error {
	return s.writer.Close()
}
