package services

import (
	"context"

	"casino/config"
	"casino/domain/entities"
	"casino/domain/interfaces"
	"casino/domain/rng"
	"casino/events"
)

// DeckFactory builds the deck for a new hand
type DeckFactory func() *entities.Deck

type blackjackService struct {
	ledger  *WagerLedger
	newDeck DeckFactory
}

// NewBlackjackService creates a new blackjack service dealing shuffled decks from src
func NewBlackjackService(ledger *WagerLedger, src rng.Source) interfaces.BlackjackService {
	return NewBlackjackServiceWithDecks(ledger, func() *entities.Deck {
		return entities.NewShuffledDeck(src)
	})
}

// NewBlackjackServiceWithDecks creates a blackjack service with a custom deck source
func NewBlackjackServiceWithDecks(ledger *WagerLedger, newDeck DeckFactory) interfaces.BlackjackService {
	return &blackjackService{
		ledger:  ledger,
		newDeck: newDeck,
	}
}

func (s *blackjackService) Deal(ctx context.Context, userID int64, bet int64) (*entities.BlackjackResult, error) {
	if err := config.Get().TableLimitsFor(entities.GameBlackjack).Check(bet); err != nil {
		return nil, err
	}

	var session *entities.BlackjackSession
	user, err := s.ledger.Execute(ctx, "blackjack_deal", userID, func(m *Mutation) error {
		u := m.User()
		if u.HasActiveSession() {
			return entities.ErrSessionAlreadyActive
		}
		if err := u.ValidateAmount(bet); err != nil {
			return err
		}

		sess, err := entities.NewBlackjackSession(bet, s.newDeck(), m.Now())
		if err != nil {
			return err
		}
		metadata := map[string]any{"session_id": sess.ID.String()}
		if err := m.Debit(bet, entities.TransactionTypeBlackjackBet, metadata, &sess.ID); err != nil {
			return err
		}
		if err := m.OpenSession(sess); err != nil {
			return err
		}
		m.Publish(events.SessionStartedEvent{UserID: u.ID, SessionID: sess.ID, Bet: bet})

		session = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entities.NewBlackjackResult(session, user.Balance), nil
}

func (s *blackjackService) Hit(ctx context.Context, userID int64) (*entities.BlackjackResult, error) {
	var result *entities.BlackjackResult
	user, err := s.ledger.Execute(ctx, "blackjack_hit", userID, func(m *Mutation) error {
		sess := m.User().ActiveSession
		if sess == nil {
			return entities.ErrNoActiveSession
		}

		card, err := sess.Hit()
		if err != nil {
			return err
		}
		result = entities.NewBlackjackResult(sess, 0)
		result.LastCard = &card

		if sess.IsResolved() {
			return settleBlackjack(m, sess)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Balance = user.Balance
	return result, nil
}

func (s *blackjackService) Stand(ctx context.Context, userID int64) (*entities.BlackjackResult, error) {
	var result *entities.BlackjackResult
	user, err := s.ledger.Execute(ctx, "blackjack_stand", userID, func(m *Mutation) error {
		sess := m.User().ActiveSession
		if sess == nil {
			return entities.ErrNoActiveSession
		}

		if err := sess.Stand(); err != nil {
			return err
		}
		result = entities.NewBlackjackResult(sess, 0)
		return settleBlackjack(m, sess)
	})
	if err != nil {
		return nil, err
	}
	result.Balance = user.Balance
	return result, nil
}

func (s *blackjackService) GetActiveSession(ctx context.Context, userID int64) (*entities.BlackjackResult, error) {
	user, err := s.ledger.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasActiveSession() {
		return nil, nil
	}
	return entities.NewBlackjackResult(user.ActiveSession, user.Balance), nil
}

// settleBlackjack pays out a resolved hand, writes its history entry and
// closes the session, all inside the same mutation as the final action
func settleBlackjack(m *Mutation, sess *entities.BlackjackSession) error {
	payout := sess.Payout()
	rec := entities.NewWagerRecord(m.User().ID, entities.GameBlackjack, sess.Bet, sess.Resolution, payout, sess.Details(), m.Now())

	metadata := map[string]any{
		"session_id": sess.ID.String(),
		"resolution": string(sess.Resolution),
	}
	if err := m.Credit(payout, entities.TransactionTypeBlackjackPayout, metadata, &rec.ID); err != nil {
		return err
	}
	m.Record(rec)
	m.ClearSession()
	return nil
}
