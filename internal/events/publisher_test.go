package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
)

// fakeConfirm é o confirm de uma única mensagem
type fakeConfirm struct {
	done chan struct{}
	ack  bool
}

func pendingConfirm() *fakeConfirm {
	return &fakeConfirm{done: make(chan struct{})}
}

func resolvedConfirm(ack bool) *fakeConfirm {
	c := pendingConfirm()
	c.resolve(ack)
	return c
}

func (c *fakeConfirm) resolve(ack bool) {
	c.ack = ack
	close(c.done)
}

func (c *fakeConfirm) WaitContext(ctx context.Context) (bool, error) {
	select {
	case <-c.done:
		return c.ack, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// fakeChannel hands out confirms in publish order; with none left it
// behaves like a channel without confirm mode.
type fakeChannel struct {
	exchange  string
	key       string
	published []amqp.Publishing
	err       error
	confirms  []*fakeConfirm
}

func (f *fakeChannel) publish(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.exchange, f.key = exchange, key
	f.published = append(f.published, msg)
	if len(f.confirms) == 0 {
		return nil, nil
	}
	conf := f.confirms[0]
	f.confirms = f.confirms[1:]
	return conf, nil
}

func newTestPublisher(ch *fakeChannel) *Publisher {
	return &Publisher{
		ch:       ch,
		exchange: "tpcc.events",
		now:      func() time.Time { return time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC) },
	}
}

func TestNewPublishing(t *testing.T) {
	at := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	result := &tpcc.PaymentResult{CustomerID: 7, Amount: decimal.RequireFromString("12.50")}

	msg, err := NewPublishing("id-1", RoutingKeyPayment, result, at)

	require.NoError(t, err)
	assert.Equal(t, "id-1", msg.MessageId)
	assert.Equal(t, RoutingKeyPayment, msg.Type)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)

	var event struct {
		ID         string          `json:"id"`
		Type       string          `json:"type"`
		OccurredAt time.Time       `json:"occurred_at"`
		Data       json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Body, &event))
	assert.Equal(t, "id-1", event.ID)
	assert.True(t, at.Equal(event.OccurredAt))

	var payment tpcc.PaymentResult
	require.NoError(t, json.Unmarshal(event.Data, &payment))
	assert.Equal(t, 7, payment.CustomerID)
	assert.True(t, payment.Amount.Equal(decimal.RequireFromString("12.50")))
}

func TestPublisher_PublishNewOrderWaitsForAck(t *testing.T) {
	ch := &fakeChannel{confirms: []*fakeConfirm{resolvedConfirm(true)}}
	publisher := newTestPublisher(ch)

	err := publisher.PublishNewOrder(context.Background(), &tpcc.NewOrderResult{OrderID: 3001})

	require.NoError(t, err)
	require.Len(t, ch.published, 1)
	assert.Equal(t, "tpcc.events", ch.exchange)
	assert.Equal(t, RoutingKeyNewOrder, ch.key)
	_, err = uuid.Parse(ch.published[0].MessageId)
	assert.NoError(t, err)
}

func TestPublisher_MessageIDsAreUnique(t *testing.T) {
	ch := &fakeChannel{}
	publisher := newTestPublisher(ch)

	require.NoError(t, publisher.PublishPayment(context.Background(), &tpcc.PaymentResult{}))
	require.NoError(t, publisher.PublishPayment(context.Background(), &tpcc.PaymentResult{}))

	require.Len(t, ch.published, 2)
	assert.NotEqual(t, ch.published[0].MessageId, ch.published[1].MessageId)
}

func TestPublisher_NackIsAnError(t *testing.T) {
	ch := &fakeChannel{confirms: []*fakeConfirm{resolvedConfirm(false)}}
	publisher := newTestPublisher(ch)

	err := publisher.PublishPayment(context.Background(), &tpcc.PaymentResult{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "NACK")
}

func TestPublisher_ChannelErrorIsWrapped(t *testing.T) {
	cause := errors.New("channel closed")
	publisher := newTestPublisher(&fakeChannel{err: cause})

	err := publisher.PublishNewOrder(context.Background(), &tpcc.NewOrderResult{})

	assert.ErrorIs(t, err, cause)
}

func TestPublisher_MissingConfirmTimesOut(t *testing.T) {
	ch := &fakeChannel{confirms: []*fakeConfirm{pendingConfirm()}} // never confirmed
	publisher := newTestPublisher(ch)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := publisher.PublishNewOrder(ctx, &tpcc.NewOrderResult{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPublisher_LateConfirmDoesNotAnswerNextMessage(t *testing.T) {
	// Arrange
	first := pendingConfirm()
	ch := &fakeChannel{confirms: []*fakeConfirm{first, resolvedConfirm(false)}}
	publisher := newTestPublisher(ch)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	err := publisher.PublishNewOrder(canceled, &tpcc.NewOrderResult{OrderID: 1})
	require.ErrorIs(t, err, context.Canceled)

	// o ack da primeira mensagem chega depois que ninguém mais espera por ele
	first.resolve(true)

	// Act
	err = publisher.PublishNewOrder(context.Background(), &tpcc.NewOrderResult{OrderID: 2})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NACK")
	assert.Contains(t, err.Error(), ch.published[1].MessageId)
}
