package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
)

type recordingChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	deadline bool
	err      error
	closed   bool
}

func (c *recordingChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	_, c.deadline = ctx.Deadline()
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

func (c *recordingChannel) Close() error {
	c.closed = true
	return nil
}

func sampleEvent() domain.LedgerEvent {
	return domain.LedgerEvent{
		EventID:       "ev-1",
		Kind:          domain.EventTransactionPosted,
		OwnerID:       "u-ani",
		EntryID:       "t-1",
		Amount:        decimal.RequireFromString("150000.50"),
		EffectiveDate: "2024-03-09",
		ActorID:       "u-ani",
		OccurredAt:    time.Date(2024, time.March, 9, 8, 0, 0, 0, time.UTC),
	}
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &recordingChannel{}
	p := &AMQPPublisher{ch: ch, exchange: "petty_cash.ledger"}

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))

	assert.Equal(t, "petty_cash.ledger", ch.exchange)
	assert.Equal(t, domain.EventTransactionPosted, ch.key)
	assert.True(t, ch.deadline, "publish is bounded by a timeout")
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "ev-1", ch.msg.MessageId)

	var got domain.LedgerEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, "t-1", got.EntryID)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("150000.50")))
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	brokerDown := errors.New("channel closed")
	p := &AMQPPublisher{ch: &recordingChannel{err: brokerDown}, exchange: "x"}

	err := p.Publish(context.Background(), sampleEvent())
	require.ErrorIs(t, err, brokerDown)
	assert.Contains(t, err.Error(), domain.EventTransactionPosted)
}

func TestAMQPPublisher_Close(t *testing.T) {
	ch := &recordingChannel{}
	p := &AMQPPublisher{ch: ch}
	assert.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
