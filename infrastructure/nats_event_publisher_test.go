package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"casino/domain/entities"
	"casino/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSubjectMapper(t *testing.T) {
	m := NewEventSubjectMapper()

	tests := []struct {
		eventType events.EventType
		subject   string
	}{
		{events.EventTypeWagerResolved, "wagers.resolved"},
		{events.EventTypeBalanceChange, "users.balance_changed"},
		{events.EventTypeSessionStarted, "blackjack.session_started"},
		{events.EventTypeAccountOpened, "users.created"},
	}
	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			assert.Equal(t, tt.subject, m.MapEventTypeToSubject(tt.eventType))
			assert.Equal(t, tt.eventType, m.MapSubjectToEventType(tt.subject))
		})
	}

	assert.Equal(t, "unknown.mystery", m.MapEventTypeToSubject("mystery"))
	assert.Len(t, m.GetAllSubjects(), len(events.AllEventTypes))
}

func TestNATSEventPublisher_PublishesEnvelope(t *testing.T) {
	broker := newFakeBroker()
	publisher := NewNATSEventPublisher(broker, NewEventSubjectMapper())

	rec := entities.NewWagerRecord(7, entities.GameBlackjack, 50, entities.ResolutionDealerBust, 100, nil, time.Now())
	require.NoError(t, publisher.Publish(events.NewWagerResolvedEvent(rec)))

	require.Len(t, broker.sent, 1)
	assert.Equal(t, "wagers.resolved", broker.sent[0].subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(broker.sent[0].data, &envelope))
	assert.Equal(t, SourceService, envelope.SourceService)
	assert.Equal(t, string(events.EventTypeWagerResolved), envelope.EventType)
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)

	decoded, err := envelope.DecodeEvent()
	require.NoError(t, err)
	resolved, ok := decoded.(*events.WagerResolvedEvent)
	require.True(t, ok)
	assert.Equal(t, rec.ID, resolved.WagerID)
	assert.Equal(t, entities.OutcomeWin, resolved.Outcome)
	assert.Equal(t, int64(100), resolved.Payout)
}

func TestNATSEventPublisher_Errors(t *testing.T) {
	broker := newFakeBroker()
	publisher := NewNATSEventPublisher(broker, NewEventSubjectMapper())

	broker.err = errors.New("nats: no response from stream")
	assert.NoError(t, publisher.Publish(events.AccountOpenedEvent{UserID: 1}))

	broker.err = errors.New("connection closed")
	assert.Error(t, publisher.Publish(events.AccountOpenedEvent{UserID: 1}))
}

func TestNATSEventSubscriber_RoundTrip(t *testing.T) {
	broker := newFakeBroker()
	mapper := NewEventSubjectMapper()
	publisher := NewNATSEventPublisher(broker, mapper)
	subscriber := NewNATSEventSubscriber(broker, mapper)

	var received []events.Event
	require.NoError(t, subscriber.SubscribeAll(func(ctx context.Context, envelope *EventEnvelope, event events.Event) error {
		received = append(received, event)
		return nil
	}))

	require.NoError(t, publisher.Publish(events.AccountOpenedEvent{UserID: 3, Username: "carol", InitialBalance: 1000}))
	require.NoError(t, publisher.Publish(events.BalanceChangeEvent{UserID: 3, NewBalance: 1000, ChangeAmount: 1000, TransactionType: entities.TransactionTypeInitial}))
	require.NoError(t, broker.deliver())

	require.Len(t, received, 2)
	opened := received[0].(*events.AccountOpenedEvent)
	assert.Equal(t, "carol", opened.Username)
	change := received[1].(*events.BalanceChangeEvent)
	assert.Equal(t, entities.TransactionTypeInitial, change.TransactionType)
}

func TestNATSEventSubscriber_RejectsGarbage(t *testing.T) {
	broker := newFakeBroker()
	subscriber := NewNATSEventSubscriber(broker, NewEventSubjectMapper())
	require.NoError(t, subscriber.Subscribe(events.EventTypeWagerResolved, func(context.Context, *EventEnvelope, events.Event) error {
		return nil
	}))

	handler := broker.handlers["wagers.resolved"]
	require.NotNil(t, handler)
	assert.Error(t, handler([]byte("not json")))
	assert.Error(t, handler([]byte(`{"event_type":"mystery","payload":{}}`)))
}
