package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/finance-dashboard/dashboard/internal/event_bus"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher forwards expense events to a durable topic exchange. The routing
// key of every message is the event type.
type Publisher struct {
	conn     io.Closer
	ch       channel
	exchange string
}

type ExpenseMessage struct {
	Paid        bool   `json:"paid"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	DueDay      int    `json:"dueDay"`
	Remaining   string `json:"remaining"`
}

type Message struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Expense    *ExpenseMessage `json:"expense,omitempty"`
	Count      *int            `json:"count,omitempty"`
}

// Dial connects to the broker at url and declares exchange.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := newPublisher(conn, ch, exchange)
	if err != nil {
		conn.Close()
		return nil, err
	}
	log.Infof("Publishing expense events to exchange %s", exchange)
	return p, nil
}

func newPublisher(conn io.Closer, ch channel, exchange string) (*Publisher, error) {
	err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Attach subscribes the publisher to the expense events of bus. The returned
// function detaches it again.
func (p *Publisher) Attach(bus *event_bus.EventBus) (detach func()) {
	unsubRecorded := event_bus.SubscribeTyped(bus, event_bus.ExpenseRecordedType,
		func(e event_bus.EventT[event_bus.ExpenseRecorded]) error {
			return p.Publish(e.Context(), Message{
				Type:       string(e.Type),
				OccurredAt: e.Timestamp,
				Expense: &ExpenseMessage{
					Paid:        e.Data.Paid,
					Description: e.Data.Description,
					Amount:      e.Data.Amount.StringFixed(2),
					DueDay:      e.Data.DueDay,
					Remaining:   e.Data.Remaining.StringFixed(2),
				},
			})
		})
	unsubReplaced := event_bus.SubscribeTyped(bus, event_bus.ExpensesReplacedType,
		func(e event_bus.EventT[event_bus.ExpensesReplaced]) error {
			count := e.Data.Count
			return p.Publish(e.Context(), Message{
				Type:       string(e.Type),
				OccurredAt: e.Timestamp,
				Count:      &count,
			})
		})
	return func() {
		unsubRecorded()
		unsubReplaced()
	}
}

func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, p.exchange, msg.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    msg.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", msg.Type, err)
	}
	log.Debugf("Published %s to exchange %s", msg.Type, p.exchange)
	return nil
}

func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		log.Warnf("failed to close AMQP channel: %v", err)
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
