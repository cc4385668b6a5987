package services

import (
	"context"
	"testing"

	"casino/domain/entities"
	"casino/domain/testhelpers"
	"casino/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouletteService_Spin(t *testing.T) {
	tests := []struct {
		name       string
		choice     string
		number     int
		resolution entities.Resolution
		payout     int64
		balance    int64
	}{
		{name: "red wins on red", choice: "red", number: 1, resolution: entities.ResolutionRouletteHit, payout: 20, balance: 1010},
		{name: "red loses on black", choice: "Red", number: 2, resolution: entities.ResolutionRouletteMiss, payout: 0, balance: 990},
		{name: "black loses on zero", choice: "black", number: 0, resolution: entities.ResolutionRouletteMiss, payout: 0, balance: 990},
		{name: "straight number hit", choice: "17", number: 17, resolution: entities.ResolutionRouletteHit, payout: 360, balance: 1350},
		{name: "zero hit", choice: " 0 ", number: 0, resolution: entities.ResolutionRouletteHit, payout: 360, balance: 1350},
		{name: "straight number miss", choice: "17", number: 18, resolution: entities.ResolutionRouletteMiss, payout: 0, balance: 990},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, testLedgerOptions())
			f.fund(t, testUserID, 1000)
			svc := NewRouletteService(f.ledger, testhelpers.NewScriptedSource(tt.number))

			result, err := svc.Spin(context.Background(), testUserID, 10, tt.choice)
			require.NoError(t, err)
			assert.Equal(t, tt.number, result.Number)
			assert.Equal(t, tt.resolution, result.Resolution)
			assert.Equal(t, tt.payout, result.Payout)
			assert.Equal(t, tt.balance, result.Balance)

			stored := f.user(t, testUserID)
			assert.Equal(t, tt.balance, stored.Balance)
			require.Len(t, stored.History, 1)
			assert.Equal(t, result.WagerID, stored.History[0].ID)
			assert.Equal(t, entities.GameRoulette, stored.History[0].Game)

			resolved := f.sink.OfType(events.EventTypeWagerResolved)
			require.Len(t, resolved, 1)
			assert.Equal(t, result.Outcome, resolved[0].(events.WagerResolvedEvent).Outcome)
		})
	}
}

func TestRouletteService_SpinRecordsStakeAndPayout(t *testing.T) {
	f := newFixture(t, nil, testLedgerOptions())
	f.fund(t, testUserID, 1000)
	svc := NewRouletteService(f.ledger, testhelpers.NewScriptedSource(3))

	_, err := svc.Spin(context.Background(), testUserID, 10, "red")
	require.NoError(t, err)

	changes, err := f.repo.GetByUser(context.Background(), testUserID, 10)
	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, entities.TransactionTypeRoulettePayout, changes[0].TransactionType)
	assert.Equal(t, int64(20), changes[0].ChangeAmount)
	assert.Equal(t, entities.TransactionTypeRouletteBet, changes[1].TransactionType)
	assert.Equal(t, int64(-10), changes[1].ChangeAmount)
	assert.Equal(t, entities.TransactionTypeInitial, changes[2].TransactionType)
}

func TestRouletteService_Rejections(t *testing.T) {
	f := newFixture(t, nil, testLedgerOptions())
	f.fund(t, testUserID, 100)
	svc := NewRouletteService(f.ledger, testhelpers.NewScriptedSource(1))

	_, err := svc.Spin(context.Background(), testUserID, 10, "green")
	assert.ErrorIs(t, err, entities.ErrInvalidChoice)

	_, err = svc.Spin(context.Background(), testUserID, 10, "37")
	assert.ErrorIs(t, err, entities.ErrInvalidChoice)

	_, err = svc.Spin(context.Background(), testUserID, -5, "red")
	assert.ErrorIs(t, err, entities.ErrInvalidBet)

	_, err = svc.Spin(context.Background(), testUserID, 101, "red")
	assert.ErrorIs(t, err, entities.ErrInsufficientBalance)

	stored := f.user(t, testUserID)
	assert.Equal(t, int64(100), stored.Balance)
	assert.Equal(t, int64(0), stored.Version)
	assert.Empty(t, f.sink.Events())
}

func TestRouletteService_AllowedDuringBlackjackHand(t *testing.T) {
	f := newFixture(t, nil, testLedgerOptions())
	f.fund(t, testUserID, 1000)
	bj := NewBlackjackServiceWithDecks(f.ledger, stacked())
	roulette := NewRouletteService(f.ledger, testhelpers.NewScriptedSource(2))

	dealt, err := bj.Deal(context.Background(), testUserID, 100)
	require.NoError(t, err)

	result, err := roulette.Spin(context.Background(), testUserID, 10, "red")
	require.NoError(t, err)
	assert.Equal(t, int64(890), result.Balance)

	stored := f.user(t, testUserID)
	require.NotNil(t, stored.ActiveSession)
	assert.Equal(t, dealt.SessionID, stored.ActiveSession.ID)
}
