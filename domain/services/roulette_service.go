package services

import (
	"context"

	"casino/config"
	"casino/domain/entities"
	"casino/domain/interfaces"
	"casino/domain/rng"
)

type rouletteService struct {
	ledger *WagerLedger
	src    rng.Source
}

// NewRouletteService creates a new roulette service spinning with src
func NewRouletteService(ledger *WagerLedger, src rng.Source) interfaces.RouletteService {
	return &rouletteService{
		ledger: ledger,
		src:    src,
	}
}

func (s *rouletteService) Spin(ctx context.Context, userID int64, bet int64, choiceStr string) (*entities.RouletteResult, error) {
	choice, err := entities.ParseRouletteChoice(choiceStr)
	if err != nil {
		return nil, err
	}
	if err := config.Get().TableLimitsFor(entities.GameRoulette).Check(bet); err != nil {
		return nil, err
	}

	var spin *entities.RouletteSpin
	var rec *entities.WagerRecord
	user, err := s.ledger.Execute(ctx, "roulette_spin", userID, func(m *Mutation) error {
		if err := m.User().ValidateAmount(bet); err != nil {
			return err
		}

		sp, err := entities.SpinRoulette(bet, choice, s.src)
		if err != nil {
			return err
		}
		r := entities.NewWagerRecord(m.User().ID, entities.GameRoulette, bet, sp.Resolution, sp.Payout, sp.Details(), m.Now())

		if err := m.Debit(bet, entities.TransactionTypeRouletteBet, sp.Details(), &r.ID); err != nil {
			return err
		}
		if err := m.Credit(sp.Payout, entities.TransactionTypeRoulettePayout, sp.Details(), &r.ID); err != nil {
			return err
		}
		m.Record(r)

		spin, rec = sp, r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &entities.RouletteResult{
		WagerID:    rec.ID,
		Bet:        spin.Bet,
		Choice:     spin.Choice,
		Number:     spin.Number,
		Color:      spin.Color,
		Resolution: spin.Resolution,
		Outcome:    spin.Resolution.Outcome(),
		Payout:     spin.Payout,
		Balance:    user.Balance,
	}, nil
}
