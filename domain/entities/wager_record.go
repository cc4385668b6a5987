package entities

import (
	"time"

	"github.com/google/uuid"
)

// GameKind identifies the game a wager was placed on
type GameKind string

const (
	GameBlackjack GameKind = "blackjack"
	GameRoulette  GameKind = "roulette"
)

// Outcome is the net result of a wager from the player's side
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// Resolution is the closed set of ways a wager can end. The outcome and the
// display text both derive from it.
type Resolution string

const (
	ResolutionPlayerBust   Resolution = "player_bust"
	ResolutionDealerBust   Resolution = "dealer_bust"
	ResolutionPlayerHigher Resolution = "player_higher"
	ResolutionDealerHigher Resolution = "dealer_higher"
	ResolutionTie          Resolution = "tie"
	ResolutionRouletteHit  Resolution = "roulette_hit"
	ResolutionRouletteMiss Resolution = "roulette_miss"
)

// Outcome maps the resolution to win, loss or push
func (r Resolution) Outcome() Outcome {
	switch r {
	case ResolutionDealerBust, ResolutionPlayerHigher, ResolutionRouletteHit:
		return OutcomeWin
	case ResolutionTie:
		return OutcomePush
	default:
		return OutcomeLoss
	}
}

// Description returns the text shown to the player
func (r Resolution) Description() string {
	switch r {
	case ResolutionPlayerBust:
		return "You busted! Game over."
	case ResolutionDealerBust:
		return "Dealer busts, you win!"
	case ResolutionPlayerHigher:
		return "You win!"
	case ResolutionDealerHigher:
		return "Dealer wins!"
	case ResolutionTie:
		return "Push!"
	case ResolutionRouletteHit:
		return "Win!"
	case ResolutionRouletteMiss:
		return "Loss"
	default:
		return string(r)
	}
}

// IsValid reports whether r is a known resolution
func (r Resolution) IsValid() bool {
	switch r {
	case ResolutionPlayerBust, ResolutionDealerBust, ResolutionPlayerHigher,
		ResolutionDealerHigher, ResolutionTie, ResolutionRouletteHit, ResolutionRouletteMiss:
		return true
	}
	return false
}

// WagerRecord is the immutable history entry written when a wager resolves
type WagerRecord struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	UserID     int64          `db:"user_id" json:"user_id"`
	Game       GameKind       `db:"game" json:"game"`
	Bet        int64          `db:"bet" json:"bet"`
	Outcome    Outcome        `db:"outcome" json:"outcome"`
	Resolution Resolution     `db:"resolution" json:"resolution"`
	Payout     int64          `db:"payout" json:"payout"`
	Details    map[string]any `db:"details" json:"details,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// NewWagerRecord builds a history entry for a resolved wager
func NewWagerRecord(userID int64, game GameKind, bet int64, resolution Resolution, payout int64, details map[string]any, now time.Time) *WagerRecord {
	return &WagerRecord{
		ID:         uuid.New(),
		UserID:     userID,
		Game:       game,
		Bet:        bet,
		Outcome:    resolution.Outcome(),
		Resolution: resolution,
		Payout:     payout,
		Details:    details,
		CreatedAt:  now.UTC(),
	}
}

// NetChange is the wager's total effect on the balance
func (w *WagerRecord) NetChange() int64 {
	return w.Payout - w.Bet
}

// Description returns the display text for the record's resolution
func (w *WagerRecord) Description() string {
	return w.Resolution.Description()
}
