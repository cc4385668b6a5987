package infrastructure

import (
	"encoding/json"
	"fmt"
	"time"

	"casino/events"

	"github.com/google/uuid"
)

// SourceService tags envelopes published by this process
const SourceService = "casino"

// EventEnvelope is the wire form of a published event
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEventEnvelope wraps event with a fresh id
func NewEventEnvelope(event events.Event, now time.Time) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     now.UTC(),
		SourceService: SourceService,
		Payload:       payload,
	}, nil
}

// DecodeEvent turns the envelope payload back into its typed event
func (e *EventEnvelope) DecodeEvent() (events.Event, error) {
	var event events.Event
	switch events.EventType(e.EventType) {
	case events.EventTypeAccountOpened:
		event = &events.AccountOpenedEvent{}
	case events.EventTypeBalanceChange:
		event = &events.BalanceChangeEvent{}
	case events.EventTypeSessionStarted:
		event = &events.SessionStartedEvent{}
	case events.EventTypeWagerResolved:
		event = &events.WagerResolvedEvent{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", e.EventType)
	}

	if err := json.Unmarshal(e.Payload, event); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", e.EventType, err)
	}
	return event, nil
}
