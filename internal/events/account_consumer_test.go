package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kilat-cab/service-ride/internal/domain/events"
	"github.com/kilat-cab/service-ride/internal/platform/kafka"
)

type stubCanceller struct {
	calls    []uuid.UUID
	err      error
	failures int
}

func (s *stubCanceller) CancelOpenRidesForPassenger(_ context.Context, passengerID uuid.UUID, _ string) (int, error) {
	s.calls = append(s.calls, passengerID)
	if s.failures > 0 {
		s.failures--
		return 0, errors.New("db down")
	}
	return 2, s.err
}

// queueReader hands out queued messages and cancels the loop when empty.
type queueReader struct {
	msgs      []kafkago.Message
	committed []kafkago.Message
	cancel    context.CancelFunc
}

func (r *queueReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		return kafkago.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *queueReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *queueReader) Close() error { return nil }

func newTestConsumer(rides RideCanceller) *AccountEventConsumer {
	return &AccountEventConsumer{rides: rides, logger: zap.NewNop()}
}

func encode(t *testing.T, eventType string, data interface{}) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("service-identity", eventType, data)
	require.NoError(t, err)
	raw, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Topic: events.TopicUserEvents, Value: raw}
}

func TestAccountEventConsumer_AccountDeleted(t *testing.T) {
	stub := &stubCanceller{}
	c := newTestConsumer(stub)
	userID := uuid.New()

	msg := encode(t, events.UserAccountDeleted, events.UserAccountDeletedEvent{
		UserID:     userID,
		DeletedAt:  time.Now().UTC(),
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, c.handleMessage(context.Background(), msg))
	assert.Equal(t, []uuid.UUID{userID}, stub.calls)
}

func TestAccountEventConsumer_ReturnsServiceError(t *testing.T) {
	stub := &stubCanceller{err: errors.New("db down")}
	c := newTestConsumer(stub)

	msg := encode(t, events.UserAccountDeleted, events.UserAccountDeletedEvent{UserID: uuid.New()})
	assert.Error(t, c.handleMessage(context.Background(), msg))
}

func TestAccountEventConsumer_RedeliversUntilRidesAreCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	deleted, next := uuid.New(), uuid.New()
	reader := &queueReader{
		msgs: []kafkago.Message{
			encode(t, events.UserAccountDeleted, events.UserAccountDeletedEvent{UserID: deleted}),
			encode(t, events.UserAccountDeleted, events.UserAccountDeletedEvent{UserID: next}),
		},
		cancel: cancel,
	}
	stub := &stubCanceller{failures: 2}
	c := newTestConsumer(stub)
	c.consumer = kafka.NewConsumerWithReader(reader, zap.NewNop(), func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	})

	err := c.Start(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []uuid.UUID{deleted, deleted, deleted, next}, stub.calls)
	assert.Len(t, reader.committed, 2)
}

func TestAccountEventConsumer_SkipsOtherMessages(t *testing.T) {
	stub := &stubCanceller{}
	c := newTestConsumer(stub)

	assert.NoError(t, c.handleMessage(context.Background(), kafkago.Message{Value: []byte("not json")}))
	assert.NoError(t, c.handleMessage(context.Background(), encode(t, events.UserRegistered, map[string]string{"email": "a@b.c"})))
	assert.NoError(t, c.handleMessage(context.Background(), encode(t, events.UserAccountDeleted, map[string]string{})))
	assert.Empty(t, stub.calls)
}
