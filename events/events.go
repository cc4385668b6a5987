package events

import (
	"casino/domain/entities"

	"github.com/google/uuid"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAccountOpened  EventType = "account_opened"
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeSessionStarted EventType = "blackjack_session_started"
	EventTypeWagerResolved  EventType = "wager_resolved"
)

// AllEventTypes lists every event type the engine emits
var AllEventTypes = []EventType{
	EventTypeAccountOpened,
	EventTypeBalanceChange,
	EventTypeSessionStarted,
	EventTypeWagerResolved,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AccountOpenedEvent is emitted once when a user is funded for the first time
type AccountOpenedEvent struct {
	UserID         int64  `json:"user_id"`
	Username       string `json:"username"`
	InitialBalance int64  `json:"initial_balance"`
}

func (e AccountOpenedEvent) Type() EventType {
	return EventTypeAccountOpened
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64                    `json:"user_id"`
	OldBalance      int64                    `json:"old_balance"`
	NewBalance      int64                    `json:"new_balance"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	ChangeAmount    int64                    `json:"change_amount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// SessionStartedEvent is emitted when a blackjack hand is dealt
type SessionStartedEvent struct {
	UserID    int64     `json:"user_id"`
	SessionID uuid.UUID `json:"session_id"`
	Bet       int64     `json:"bet"`
}

func (e SessionStartedEvent) Type() EventType {
	return EventTypeSessionStarted
}

// WagerResolvedEvent represents a blackjack hand or roulette spin that settled
type WagerResolvedEvent struct {
	WagerID    uuid.UUID           `json:"wager_id"`
	UserID     int64               `json:"user_id"`
	Game       entities.GameKind   `json:"game"`
	Bet        int64               `json:"bet"`
	Payout     int64               `json:"payout"`
	Outcome    entities.Outcome    `json:"outcome"`
	Resolution entities.Resolution `json:"resolution"`
}

func (e WagerResolvedEvent) Type() EventType {
	return EventTypeWagerResolved
}

// NewWagerResolvedEvent builds the event for a persisted wager record
func NewWagerResolvedEvent(rec *entities.WagerRecord) WagerResolvedEvent {
	return WagerResolvedEvent{
		WagerID:    rec.ID,
		UserID:     rec.UserID,
		Game:       rec.Game,
		Bet:        rec.Bet,
		Payout:     rec.Payout,
		Outcome:    rec.Outcome,
		Resolution: rec.Resolution,
	}
}
