package testutil

import (
	"time"

	"casino/domain/entities"
)

// StartingBalance is the balance CreateTestUser funds accounts with
const StartingBalance = int64(1000)

// OpenSession returns a freshly dealt session drawn from a stacked deck
func OpenSession(bet int64, top ...entities.Card) *entities.BlackjackSession {
	s, err := entities.NewBlackjackSession(bet, entities.NewStackedDeck(top...), time.Now())
	if err != nil {
		panic(err)
	}
	return s
}

// RouletteLoss builds a resolved roulette record that paid nothing
func RouletteLoss(userID, bet int64) *entities.WagerRecord {
	return entities.NewWagerRecord(userID, entities.GameRoulette, bet, entities.ResolutionRouletteMiss, 0,
		map[string]any{"choice": "red", "number": 2, "color": "black"}, time.Now())
}

// StakeChange builds the balance movement for a stake taken from before
func StakeChange(userID, before, bet int64, tt entities.TransactionType) *entities.BalanceChange {
	return &entities.BalanceChange{
		UserID:          userID,
		BalanceBefore:   before,
		BalanceAfter:    before - bet,
		ChangeAmount:    -bet,
		TransactionType: tt,
		TransactionMetadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}
