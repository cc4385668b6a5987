package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"casino/domain/entities"
	"casino/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBroker is a fakeBroker safe for the dispatch goroutine
type lockedBroker struct {
	mu sync.Mutex
	fakeBroker
}

func (b *lockedBroker) Publish(ctx context.Context, subject string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fakeBroker.Publish(ctx, subject, data)
}

func balanceChange(before, after int64) events.BalanceChangeEvent {
	return events.BalanceChangeEvent{
		UserID:          1,
		OldBalance:      before,
		NewBalance:      after,
		TransactionType: entities.TransactionTypeRouletteBet,
	}
}

func TestOrderedPublisher_BrokerSeesFlushOrder(t *testing.T) {
	broker := &lockedBroker{fakeBroker: *newFakeBroker()}
	ordered := NewOrderedPublisher(NewNATSEventPublisher(broker, NewEventSubjectMapper()), 16)
	bus := events.NewBus()
	sink := NewFanoutPublisher(bus, ordered)

	const mutations = 500
	for i := range mutations {
		tx := NewTransactionalPublisher(sink)
		stake := balanceChange(int64(1000+i), int64(990+i))
		payout := balanceChange(int64(990+i), int64(1010+i))
		require.NoError(t, tx.Publish(stake))
		require.NoError(t, tx.Publish(payout))
		require.NoError(t, tx.Flush(context.Background()))
	}
	ordered.Close()
	bus.Wait()

	broker.mu.Lock()
	defer broker.mu.Unlock()
	require.Len(t, broker.sent, mutations*2)
	for i, msg := range broker.sent {
		var env EventEnvelope
		require.NoError(t, json.Unmarshal(msg.data, &env))
		decoded, err := env.DecodeEvent()
		require.NoError(t, err)
		change := decoded.(*events.BalanceChangeEvent)

		round := int64(i / 2)
		if i%2 == 0 {
			assert.Equal(t, 1000+round, change.OldBalance, "message %d", i)
		} else {
			assert.Equal(t, 990+round, change.OldBalance, "message %d", i)
		}
	}
}

func TestOrderedPublisher_RejectsAfterClose(t *testing.T) {
	sink := &recordingPublisher{}
	ordered := NewOrderedPublisher(sink, 1)

	require.NoError(t, ordered.Publish(balanceChange(10, 5)))
	ordered.Close()
	ordered.Close()

	assert.Len(t, sink.published, 1)
	assert.ErrorIs(t, ordered.Publish(balanceChange(5, 0)), ErrPublisherClosed)
}

func TestFanoutPublisher_CallsEveryPublisher(t *testing.T) {
	first := &recordingPublisher{publishError: errors.New("down")}
	second := &recordingPublisher{}

	err := NewFanoutPublisher(first, second).Publish(balanceChange(10, 5))
	assert.ErrorContains(t, err, "down")
	assert.Len(t, second.published, 1)
}
