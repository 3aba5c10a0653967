package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"barapp/order-svc/internal/domain"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const Exchange = "notifications_fanout"

type Broadcaster interface {
	BroadcastAll(ctx context.Context, event domain.Event) error
	BroadcastToRole(ctx context.Context, role domain.Role, event domain.Event) error
}

type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type envelope struct {
	Origin string       `json:"origin"`
	Event  domain.Event `json:"event"`
}

// Relay delivers events to local terminals and mirrors them to every other
// instance through a fanout exchange.
type Relay struct {
	InstanceID string
	Local      Broadcaster
	Publisher  Publisher
}

func NewRelay(local Broadcaster, publisher Publisher) *Relay {
	return &Relay{
		InstanceID: uuid.NewString(),
		Local:      local,
		Publisher:  publisher,
	}
}

// BroadcastAll and BroadcastToRole report local delivery only. Peer relay
// failures are logged.
func (r *Relay) BroadcastAll(ctx context.Context, event domain.Event) error {
	event.Role = ""
	err := r.Local.BroadcastAll(ctx, event)
	r.mirror(ctx, event)
	return err
}

func (r *Relay) BroadcastToRole(ctx context.Context, role domain.Role, event domain.Event) error {
	event.Role = role
	err := r.Local.BroadcastToRole(ctx, role, event)
	r.mirror(ctx, event)
	return err
}

func (r *Relay) mirror(ctx context.Context, event domain.Event) {
	if err := r.publish(ctx, event); err != nil {
		log.Printf("[relay] mirroring %s to peers failed: %v", event.Name, err)
	}
}

func (r *Relay) publish(ctx context.Context, event domain.Event) error {
	if r.Publisher == nil {
		return nil
	}
	body, err := json.Marshal(envelope{Origin: r.InstanceID, Event: event})
	if err != nil {
		return fmt.Errorf("encode relay envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = r.Publisher.PublishWithContext(ctx, Exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   event.Timestamp,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", Exchange, err)
	}
	return nil
}

// Consume delivers events published by other instances to local terminals
// until ctx is done or deliveries is closed.
func (r *Relay) Consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Println("[relay] delivery channel closed")
				return
			}
			r.handle(ctx, d.Body)
		}
	}
}

func (r *Relay) handle(ctx context.Context, body []byte) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		log.Printf("[relay] error unmarshaling envelope: %v", err)
		return
	}
	if env.Origin == r.InstanceID {
		return
	}

	var err error
	if env.Event.Role == "" {
		err = r.Local.BroadcastAll(ctx, env.Event)
	} else {
		err = r.Local.BroadcastToRole(ctx, env.Event.Role, env.Event)
	}
	if err != nil {
		log.Printf("[relay] local delivery of %s failed: %v", env.Event.Name, err)
	}
}

// Subscribe binds an exclusive queue to the exchange and returns its
// deliveries.
func Subscribe(ctx context.Context, ch *amqp.Channel) (<-chan amqp.Delivery, error) {
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare relay queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind relay queue: %w", err)
	}
	return ch.ConsumeWithContext(ctx, q.Name, "", true, true, false, false, nil)
}

// Connect dials RabbitMQ and declares the notification exchange.
func Connect(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	err = ch.ExchangeDeclare(
		Exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}
