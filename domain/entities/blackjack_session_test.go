package entities

import (
	"testing"
	"time"

	"casino/domain/rng"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dealt builds a session whose opening deal gives the player p1,p2 and the
// dealer d1,d2, with next as the following draws
func dealt(t *testing.T, bet int64, p1, d1, p2, d2 Card, next ...Card) *BlackjackSession {
	t.Helper()
	top := append([]Card{p1, d1, p2, d2}, next...)
	s, err := NewBlackjackSession(bet, NewStackedDeck(top...), time.Now())
	require.NoError(t, err)
	return s
}

func TestNewBlackjackSession_DealsAlternately(t *testing.T) {
	t.Parallel()

	s := dealt(t, 10, card(Two, Clubs), card(Three, Clubs), card(Four, Clubs), card(Five, Clubs))

	assert.Equal(t, hand(card(Two, Clubs), card(Four, Clubs)), s.PlayerHand)
	assert.Equal(t, hand(card(Three, Clubs), card(Five, Clubs)), s.DealerHand)
	assert.Equal(t, StandardDeckSize-4, s.Deck.Remaining())
	assert.Equal(t, SessionPlayerTurn, s.State)
	assert.Empty(t, s.Resolution)
	assert.NoError(t, s.Validate())
}

func TestNewBlackjackSession_RejectsBadBet(t *testing.T) {
	t.Parallel()

	for _, bet := range []int64{0, -5} {
		_, err := NewBlackjackSession(bet, NewStandardDeck(), time.Now())
		assert.ErrorIs(t, err, ErrInvalidBet)
	}
}

func TestBlackjackSession_ShortDeckPanics(t *testing.T) {
	t.Parallel()

	assert.PanicsWithValue(t, ErrDeckExhausted, func() {
		_, _ = NewBlackjackSession(10, NewDeck(card(Two, Clubs), card(Three, Clubs)), time.Now())
	})

	s, err := NewBlackjackSession(10, NewDeck(card(Two, Clubs), card(Three, Clubs), card(Four, Clubs), card(Five, Clubs)), time.Now())
	require.NoError(t, err)
	assert.PanicsWithValue(t, ErrDeckExhausted, func() { _, _ = s.Hit() })
}

func TestBlackjackSession_Hit(t *testing.T) {
	t.Parallel()

	t.Run("stays in player turn below 22", func(t *testing.T) {
		t.Parallel()
		s := dealt(t, 10, card(Two, Spades), card(Nine, Clubs), card(Three, Spades), card(Seven, Clubs), card(Four, Spades))

		c, err := s.Hit()
		require.NoError(t, err)
		assert.Equal(t, card(Four, Spades), c)
		assert.Equal(t, 9, s.PlayerHand.Value())
		assert.Equal(t, SessionPlayerTurn, s.State)
	})

	t.Run("bust resolves as loss", func(t *testing.T) {
		t.Parallel()
		s := dealt(t, 10, card(Ten, Spades), card(Nine, Clubs), card(King, Spades), card(Seven, Clubs), card(Queen, Hearts))

		_, err := s.Hit()
		require.NoError(t, err)
		assert.True(t, s.IsResolved())
		assert.Equal(t, ResolutionPlayerBust, s.Resolution)
		assert.Equal(t, OutcomeLoss, s.Outcome())
		assert.Equal(t, int64(0), s.Payout())

		_, err = s.Hit()
		assert.ErrorIs(t, err, ErrInvalidSessionState)
		assert.ErrorIs(t, s.Stand(), ErrInvalidSessionState)
	})
}

func TestBlackjackSession_Stand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		player         [2]Card
		dealer         [2]Card
		next           []Card
		wantResolution Resolution
		wantPayout     int64
		wantDealerLen  int
	}{
		{
			name:           "dealer draws to eighteen and player nineteen wins",
			player:         [2]Card{card(Ten, Spades), card(Nine, Spades)},
			dealer:         [2]Card{card(Ten, Clubs), card(Six, Clubs)},
			next:           []Card{card(Two, Hearts)},
			wantResolution: ResolutionPlayerHigher,
			wantPayout:     200,
			wantDealerLen:  3,
		},
		{
			name:           "dealer busts",
			player:         [2]Card{card(Ten, Spades), card(Two, Spades)},
			dealer:         [2]Card{card(Ten, Clubs), card(Six, Clubs)},
			next:           []Card{card(King, Hearts)},
			wantResolution: ResolutionDealerBust,
			wantPayout:     200,
			wantDealerLen:  3,
		},
		{
			name:           "dealer stands on soft seventeen and ties",
			player:         [2]Card{card(Ten, Spades), card(Seven, Spades)},
			dealer:         [2]Card{card(Ace, Clubs), card(Six, Clubs)},
			wantResolution: ResolutionTie,
			wantPayout:     100,
			wantDealerLen:  2,
		},
		{
			name:           "dealer hits soft sixteen",
			player:         [2]Card{card(Ten, Spades), card(Nine, Spades)},
			dealer:         [2]Card{card(Ace, Clubs), card(Five, Clubs)},
			next:           []Card{card(Five, Hearts)},
			wantResolution: ResolutionDealerHigher,
			wantPayout:     0,
			wantDealerLen:  3,
		},
		{
			name:           "dealer higher without drawing",
			player:         [2]Card{card(Ten, Spades), card(Seven, Spades)},
			dealer:         [2]Card{card(Ten, Clubs), card(Nine, Clubs)},
			wantResolution: ResolutionDealerHigher,
			wantPayout:     0,
			wantDealerLen:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := dealt(t, 100, tt.player[0], tt.dealer[0], tt.player[1], tt.dealer[1], tt.next...)
			require.NoError(t, s.Stand())

			assert.True(t, s.IsResolved())
			assert.Equal(t, tt.wantResolution, s.Resolution)
			assert.Equal(t, tt.wantPayout, s.Payout())
			assert.Len(t, s.DealerHand, tt.wantDealerLen)
			assert.NoError(t, s.Validate())
		})
	}
}

func TestBlackjackSession_DealerStopsAtFirstSeventeen(t *testing.T) {
	t.Parallel()

	for seed := uint64(1); seed <= 300; seed++ {
		deck := NewShuffledDeck(rng.NewSeeded(seed))
		s, err := NewBlackjackSession(50, deck, time.Now())
		require.NoError(t, err)
		if err := s.Stand(); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		dealer := s.DealerHand.Value()
		assert.True(t, dealer >= DealerStandValue, "seed %d: dealer stopped at %d", seed, dealer)
		if len(s.DealerHand) > 2 {
			before := s.DealerHand[:len(s.DealerHand)-1].Value()
			assert.Less(t, before, DealerStandValue, "seed %d: dealer drew past seventeen", seed)
		}
		assert.Contains(t, []int64{0, 50, 100}, s.Payout())
		assert.Equal(t, StandardDeckSize, len(s.PlayerHand)+len(s.DealerHand)+s.Deck.Remaining())
	}
}

func TestBlackjackSession_VisibleDealerHand(t *testing.T) {
	t.Parallel()

	s := dealt(t, 10, card(Ten, Spades), card(Ten, Clubs), card(Nine, Spades), card(Nine, Clubs))
	visible := s.VisibleDealerHand()
	require.Len(t, visible, 1)
	assert.Equal(t, card(Ten, Clubs), visible[0])

	require.NoError(t, s.Stand())
	assert.Len(t, s.VisibleDealerHand(), 2)
}

func TestBlackjackSession_Validate(t *testing.T) {
	t.Parallel()

	t.Run("duplicate card", func(t *testing.T) {
		t.Parallel()
		s := &BlackjackSession{
			Bet:        10,
			PlayerHand: hand(card(Ace, Spades), card(Ace, Spades)),
			DealerHand: hand(card(Two, Clubs), card(Three, Clubs)),
			State:      SessionPlayerTurn,
		}
		assert.Error(t, s.Validate())
	})

	t.Run("missing cards", func(t *testing.T) {
		t.Parallel()
		s := dealt(t, 10, card(Two, Clubs), card(Three, Clubs), card(Four, Clubs), card(Five, Clubs))
		s.Deck.Deal()
		assert.Error(t, s.Validate())
	})

	t.Run("open session with resolution", func(t *testing.T) {
		t.Parallel()
		s := dealt(t, 10, card(Two, Clubs), card(Three, Clubs), card(Four, Clubs), card(Five, Clubs))
		s.Resolution = ResolutionTie
		assert.Error(t, s.Validate())
	})
}

func TestBlackjackSession_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	s := dealt(t, 10, card(Two, Clubs), card(Three, Clubs), card(Four, Clubs), card(Five, Clubs))
	c := s.Clone()
	_, err := c.Hit()
	require.NoError(t, err)

	assert.Len(t, s.PlayerHand, 2)
	assert.Equal(t, StandardDeckSize-4, s.Deck.Remaining())
	assert.Len(t, c.PlayerHand, 3)
}
