package entities

import "github.com/google/uuid"

// BlackjackResult is what a player sees after deal, hit, stand or a session
// lookup. While the hand is open the dealer's hole card is left out.
type BlackjackResult struct {
	SessionID   uuid.UUID
	Bet         int64
	PlayerHand  Hand
	DealerHand  Hand
	PlayerValue int
	DealerValue int
	HoleHidden  bool
	State       SessionState
	Resolution  Resolution
	Outcome     Outcome
	Payout      int64
	Balance     int64
	LastCard    *Card
}

// NewBlackjackResult snapshots a session for the caller
func NewBlackjackResult(s *BlackjackSession, balance int64) *BlackjackResult {
	dealer := s.VisibleDealerHand()
	return &BlackjackResult{
		SessionID:   s.ID,
		Bet:         s.Bet,
		PlayerHand:  s.PlayerHand.Clone(),
		DealerHand:  dealer,
		PlayerValue: s.PlayerHand.Value(),
		DealerValue: dealer.Value(),
		HoleHidden:  !s.IsResolved(),
		State:       s.State,
		Resolution:  s.Resolution,
		Outcome:     s.Outcome(),
		Payout:      s.Payout(),
		Balance:     balance,
	}
}

// Message returns the result text for a resolved hand
func (r *BlackjackResult) Message() string {
	if r.Resolution == "" {
		return ""
	}
	return r.Resolution.Description()
}

// RouletteResult is the outcome of a settled spin
type RouletteResult struct {
	WagerID    uuid.UUID
	Bet        int64
	Choice     RouletteChoice
	Number     int
	Color      Color
	Resolution Resolution
	Outcome    Outcome
	Payout     int64
	Balance    int64
}

// LeaderboardEntry is one row of the balance ranking
type LeaderboardEntry struct {
	Rank     int    `db:"-"`
	UserID   int64  `db:"id"`
	Username string `db:"username"`
	Balance  int64  `db:"balance"`
}
