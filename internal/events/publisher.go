// Package events publica no RabbitMQ os resultados de transações comitadas.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
)

const (
	RoutingKeyNewOrder = "tpcc.neword.committed"
	RoutingKeyPayment  = "tpcc.payment.committed"

	confirmTimeout = 5 * time.Second
)

// Event é o envelope JSON publicado para cada transação comitada
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// confirmation is the broker confirm of a single published message.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type channel interface {
	publish(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error)
}

// amqpChannel adapta *amqp.Channel: cada mensagem recebe o seu próprio DeferredConfirmation
type amqpChannel struct {
	ch *amqp.Channel
}

func (c amqpChannel) publish(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error) {
	conf, err := c.ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	if err != nil || conf == nil {
		// nil without confirm mode
		return nil, err
	}
	return conf, nil
}

// Publisher implementa tpcc.Publisher sobre um exchange topic com publisher confirms
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	closer   func() error
	exchange string
	now      func() time.Time
}

// Dial conecta ao broker, declara o exchange e habilita publisher confirms
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}

	log.Printf("✅ Connected to RabbitMQ, publishing to exchange %s", exchange)
	return &Publisher{
		conn:     conn,
		ch:       amqpChannel{ch: ch},
		closer:   ch.Close,
		exchange: exchange,
		now:      time.Now,
	}, nil
}

// Ping reports whether the broker connection is still open.
func (p *Publisher) Ping() error {
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// Close fecha o canal e a conexão
func (p *Publisher) Close() {
	if p.closer != nil {
		_ = p.closer()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func (p *Publisher) PublishNewOrder(ctx context.Context, result *tpcc.NewOrderResult) error {
	return p.publish(ctx, RoutingKeyNewOrder, result)
}

func (p *Publisher) PublishPayment(ctx context.Context, result *tpcc.PaymentResult) error {
	return p.publish(ctx, RoutingKeyPayment, result)
}

func (p *Publisher) publish(ctx context.Context, key string, data any) error {
	msg, err := NewPublishing(uuid.NewString(), key, data, p.now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()

	conf, err := p.ch.publish(ctx, p.exchange, key, msg)
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	if conf == nil {
		return nil
	}

	// espera o confirm desta mensagem; um confirm atrasado de outra não conta
	ack, err := conf.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("publish %s: waiting for confirm: %w", key, err)
	}
	if !ack {
		return fmt.Errorf("publish %s: NACK from broker (id=%s)", key, msg.MessageId)
	}
	return nil
}

// NewPublishing monta a mensagem persistente com o envelope Event
func NewPublishing(id, key string, data any, at time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(Event{ID: id, Type: key, OccurredAt: at.UTC(), Data: data})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal %s event: %w", key, err)
	}

	return amqp.Publishing{
		MessageId:    id,
		Type:         key,
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    at.UTC(),
		Body:         body,
	}, nil
}

var _ tpcc.Publisher = (*Publisher)(nil)
