package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DealerStandValue is the total at which the dealer stops drawing
const DealerStandValue = 17

// SessionState is the position of a blackjack session in its lifecycle
type SessionState string

const (
	SessionPlayerTurn SessionState = "player_turn"
	SessionDealerTurn SessionState = "dealer_turn"
	SessionResolved   SessionState = "resolved"
)

// BlackjackSession is one in-progress hand for one user. It owns its deck
// exclusively and only changes through Hit and Stand.
type BlackjackSession struct {
	ID         uuid.UUID    `json:"id"`
	Bet        int64        `json:"bet"`
	PlayerHand Hand         `json:"player_hand"`
	DealerHand Hand         `json:"dealer_hand"`
	Deck       *Deck        `json:"deck"`
	State      SessionState `json:"state"`
	Resolution Resolution   `json:"resolution,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// NewBlackjackSession deals two cards each, alternating player then dealer,
// and hands the turn to the player. A full deck cannot run out within one hand,
// so an exhausted deck panics in Deal.
func NewBlackjackSession(bet int64, deck *Deck, now time.Time) (*BlackjackSession, error) {
	if bet <= 0 {
		return nil, ErrInvalidBet
	}
	s := &BlackjackSession{
		ID:         uuid.New(),
		Bet:        bet,
		PlayerHand: make(Hand, 0, 4),
		DealerHand: make(Hand, 0, 4),
		Deck:       deck,
		State:      SessionPlayerTurn,
		CreatedAt:  now.UTC(),
	}
	for range 2 {
		s.PlayerHand.Add(deck.Deal())
		s.DealerHand.Add(deck.Deal())
	}
	return s, nil
}

// Hit draws one card for the player. A bust resolves the session immediately.
func (s *BlackjackSession) Hit() (Card, error) {
	if s.State != SessionPlayerTurn {
		return Card{}, fmt.Errorf("hit in state %s: %w", s.State, ErrInvalidSessionState)
	}
	card := s.Deck.Deal()
	s.PlayerHand.Add(card)
	if s.PlayerHand.IsBust() {
		s.resolve(ResolutionPlayerBust)
	}
	return card, nil
}

// Stand ends the player's turn, plays out the dealer and resolves the session.
// The dealer hits on 16 or less, soft totals included, and stands on 17 or more.
func (s *BlackjackSession) Stand() error {
	if s.State != SessionPlayerTurn {
		return fmt.Errorf("stand in state %s: %w", s.State, ErrInvalidSessionState)
	}
	s.State = SessionDealerTurn

	for s.DealerHand.Value() < DealerStandValue {
		s.DealerHand.Add(s.Deck.Deal())
	}

	player, dealer := s.PlayerHand.Value(), s.DealerHand.Value()
	switch {
	case dealer > BlackjackValue:
		s.resolve(ResolutionDealerBust)
	case player > dealer:
		s.resolve(ResolutionPlayerHigher)
	case player < dealer:
		s.resolve(ResolutionDealerHigher)
	default:
		s.resolve(ResolutionTie)
	}
	return nil
}

func (s *BlackjackSession) resolve(r Resolution) {
	s.State = SessionResolved
	s.Resolution = r
}

// IsResolved reports whether the session reached its terminal state
func (s *BlackjackSession) IsResolved() bool {
	return s.State == SessionResolved
}

// Outcome returns the resolved outcome, empty while the hand is still open
func (s *BlackjackSession) Outcome() Outcome {
	if !s.IsResolved() {
		return ""
	}
	return s.Resolution.Outcome()
}

// Payout is the amount credited back on resolution: 2x bet on a win, the
// stake on a push and nothing on a loss
func (s *BlackjackSession) Payout() int64 {
	switch s.Outcome() {
	case OutcomeWin:
		return 2 * s.Bet
	case OutcomePush:
		return s.Bet
	default:
		return 0
	}
}

// VisibleDealerHand hides the dealer's hole card until the session resolves
func (s *BlackjackSession) VisibleDealerHand() Hand {
	if s.IsResolved() || len(s.DealerHand) == 0 {
		return s.DealerHand.Clone()
	}
	return s.DealerHand[:1].Clone()
}

// Details summarizes the hand for the wager history
func (s *BlackjackSession) Details() map[string]any {
	return map[string]any{
		"session_id":   s.ID.String(),
		"player_hand":  s.PlayerHand.Strings(),
		"dealer_hand":  s.DealerHand.Strings(),
		"player_value": s.PlayerHand.Value(),
		"dealer_value": s.DealerHand.Value(),
	}
}

// Clone returns a deep copy so stored sessions never alias a caller's copy
func (s *BlackjackSession) Clone() *BlackjackSession {
	if s == nil {
		return nil
	}
	c := *s
	c.PlayerHand = s.PlayerHand.Clone()
	c.DealerHand = s.DealerHand.Clone()
	if s.Deck != nil {
		c.Deck = s.Deck.Clone()
	}
	return &c
}

// Validate checks the session invariants: positive bet, a known state, no card
// appearing twice and, when the deck is present, all 52 cards accounted for
func (s *BlackjackSession) Validate() error {
	if s.Bet <= 0 {
		return fmt.Errorf("session %s: %w", s.ID, ErrInvalidBet)
	}
	switch s.State {
	case SessionPlayerTurn, SessionDealerTurn:
		if s.Resolution != "" {
			return fmt.Errorf("session %s is open but has resolution %s", s.ID, s.Resolution)
		}
	case SessionResolved:
		if !s.Resolution.IsValid() {
			return fmt.Errorf("session %s resolved with unknown resolution %q", s.ID, s.Resolution)
		}
	default:
		return fmt.Errorf("session %s has unknown state %q", s.ID, s.State)
	}
	if len(s.PlayerHand) < 2 || len(s.DealerHand) < 2 {
		return fmt.Errorf("session %s has an incomplete deal", s.ID)
	}

	seen := make(map[Card]struct{}, StandardDeckSize)
	check := func(cards []Card) error {
		for _, c := range cards {
			if !c.IsValid() {
				return fmt.Errorf("session %s holds invalid card %+v", s.ID, c)
			}
			if _, dup := seen[c]; dup {
				return fmt.Errorf("session %s holds duplicate card %s", s.ID, c)
			}
			seen[c] = struct{}{}
		}
		return nil
	}
	if err := check(s.PlayerHand); err != nil {
		return err
	}
	if err := check(s.DealerHand); err != nil {
		return err
	}
	if s.Deck != nil {
		if err := check(s.Deck.Cards()); err != nil {
			return err
		}
		if len(seen) != StandardDeckSize {
			return fmt.Errorf("session %s accounts for %d cards, want %d", s.ID, len(seen), StandardDeckSize)
		}
	}
	return nil
}
