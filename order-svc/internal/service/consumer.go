package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"barapp/order-svc/internal/domain"

	"github.com/segmentio/kafka-go"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Consumer feeds the daily item leaderboard from the business record stream.
type Consumer struct {
	Reader      MessageReader
	Leaderboard Leaderboard
}

func NewConsumer(reader MessageReader, leaderboard Leaderboard) *Consumer {
	return &Consumer{
		Reader:      reader,
		Leaderboard: leaderboard,
	}
}

func (c *Consumer) Start(ctx context.Context) {
	log.Println("[consumer] starting business record consumer...")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				log.Println("[consumer] stopped")
				return
			}
			log.Printf("[consumer] error reading message: %v", err)
			continue
		}

		var msg domain.BusinessMessage
		if err := json.Unmarshal(message.Value, &msg); err != nil {
			log.Printf("[consumer] error unmarshaling message: %v", err)
			continue
		}

		c.ProcessRecord(ctx, msg)
	}
}

func (c *Consumer) ProcessRecord(ctx context.Context, msg domain.BusinessMessage) {
	if msg.Type != domain.BusinessMessageRecorded {
		return
	}
	if msg.Record.IsCanceled {
		return
	}

	if err := c.Leaderboard.RecordItems(ctx, msg.Record); err != nil {
		log.Printf("[consumer] error updating leaderboard for order %s: %v", msg.OrderID, err)
		return
	}
	log.Printf("[consumer] leaderboard updated for order %s (restaurant %s)", msg.OrderID, msg.RestaurantID)
}
