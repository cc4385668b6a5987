package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// BalanceChange is one ledger movement on a user's balance
type BalanceChange struct {
	ID                  int64           `db:"id"`
	UserID              int64           `db:"user_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedID           *uuid.UUID      `db:"related_id"`
	CreatedAt           time.Time       `db:"created_at"`
}

// IsPositiveChange returns true if the change amount is positive
func (bc *BalanceChange) IsPositiveChange() bool {
	return bc.ChangeAmount > 0
}

// IsNegativeChange returns true if the change amount is negative
func (bc *BalanceChange) IsNegativeChange() bool {
	return bc.ChangeAmount < 0
}

// GetTransactionDescription returns a human-readable description of the transaction
func (bc *BalanceChange) GetTransactionDescription() string {
	switch bc.TransactionType {
	case TransactionTypeBlackjackBet:
		return "Blackjack stake"
	case TransactionTypeBlackjackPayout:
		return "Blackjack payout"
	case TransactionTypeRouletteBet:
		return "Roulette stake"
	case TransactionTypeRoulettePayout:
		return "Roulette payout"
	case TransactionTypeInitial:
		return "Initial balance"
	default:
		return string(bc.TransactionType)
	}
}

// ValidateTransaction performs basic validation on the transaction
func (bc *BalanceChange) ValidateTransaction() error {
	if bc.ChangeAmount == 0 && bc.TransactionType != TransactionTypeInitial {
		return errors.New("change amount cannot be zero")
	}

	if bc.BalanceAfter != bc.BalanceBefore+bc.ChangeAmount {
		return errors.New("balance calculation is inconsistent")
	}

	if bc.BalanceAfter < 0 {
		return errors.New("balance cannot go below zero")
	}

	return nil
}
