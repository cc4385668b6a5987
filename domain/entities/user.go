package entities

import (
	"fmt"
	"time"
)

// User is the aggregate every wager mutates: balance, the optional open
// blackjack session and the wager history are always saved together under one
// version tag.
type User struct {
	ID            int64             `db:"id"`
	Username      string            `db:"username"`
	Balance       int64             `db:"balance"`
	Version       int64             `db:"version"`
	ActiveSession *BlackjackSession `db:"active_session"`
	History       []*WagerRecord    `db:"-"`
	CreatedAt     time.Time         `db:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at"`

	pendingRecords []*WagerRecord
	pendingChanges []*BalanceChange
}

// CanAfford reports whether the user can stake amount
func (u *User) CanAfford(amount int64) bool {
	return u.Balance >= amount
}

// HasActiveSession reports whether a blackjack hand is in progress
func (u *User) HasActiveSession() bool {
	return u.ActiveSession != nil
}

// ValidateAmount checks that a stake is positive and covered by the balance
func (u *User) ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidBet
	}
	if !u.CanAfford(amount) {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientBalance, amount, u.Balance)
	}
	return nil
}

// AppendRecord adds a resolved wager to the history and queues it for the next save
func (u *User) AppendRecord(rec *WagerRecord) {
	u.History = append(u.History, rec)
	u.pendingRecords = append(u.pendingRecords, rec)
}

// AddBalanceChange queues a balance movement for the next save
func (u *User) AddBalanceChange(bc *BalanceChange) {
	u.pendingChanges = append(u.pendingChanges, bc)
}

// PendingRecords returns the wager records not yet persisted
func (u *User) PendingRecords() []*WagerRecord {
	return u.pendingRecords
}

// PendingBalanceChanges returns the balance movements not yet persisted
func (u *User) PendingBalanceChanges() []*BalanceChange {
	return u.pendingChanges
}

// ClearPending drops the queued records once a save has committed them
func (u *User) ClearPending() {
	u.pendingRecords = nil
	u.pendingChanges = nil
}

// Clone returns a deep copy of the aggregate, pending entries included
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.ActiveSession = u.ActiveSession.Clone()
	c.History = append([]*WagerRecord(nil), u.History...)
	c.pendingRecords = append([]*WagerRecord(nil), u.pendingRecords...)
	c.pendingChanges = append([]*BalanceChange(nil), u.pendingChanges...)
	return &c
}

// Validate checks the invariants that must hold at every committed state
func (u *User) Validate() error {
	if u.Balance < 0 {
		return fmt.Errorf("user %d balance %d is negative", u.ID, u.Balance)
	}
	if u.ActiveSession != nil {
		if u.ActiveSession.IsResolved() {
			return fmt.Errorf("user %d holds a resolved session", u.ID)
		}
		if err := u.ActiveSession.Validate(); err != nil {
			return err
		}
	}
	for _, bc := range u.pendingChanges {
		if err := bc.ValidateTransaction(); err != nil {
			return fmt.Errorf("user %d: %w", u.ID, err)
		}
	}
	return nil
}
