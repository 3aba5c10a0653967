package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"barapp/order-svc/internal/domain"

	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	Writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

// PublishRecord keys messages by restaurant so one tenant's records stay
// ordered within a partition.
func (p *KafkaPublisher) PublishRecord(ctx context.Context, msg domain.BusinessMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode business message: %w", err)
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.RestaurantID),
		Value: payload,
	})
}
