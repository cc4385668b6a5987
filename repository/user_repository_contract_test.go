package repository

import (
	"context"
	"testing"

	"casino/domain/entities"
	"casino/domain/interfaces"
	"casino/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runUserRepositoryTests exercises the behaviour every user store must share
func runUserRepositoryTests(t *testing.T, repo interfaces.UserRepository, history interfaces.BalanceHistoryRepository) {
	ctx := context.Background()

	t.Run("user not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999999)
		assert.ErrorIs(t, err, entities.ErrUserNotFound)
	})

	t.Run("create and duplicate", func(t *testing.T) {
		user, err := repo.Create(ctx, 100, "alice", testutil.StartingBalance)
		require.NoError(t, err)
		assert.Equal(t, int64(100), user.ID)
		assert.Equal(t, testutil.StartingBalance, user.Balance)
		assert.Equal(t, int64(0), user.Version)

		_, err = repo.Create(ctx, 100, "alice again", 5)
		assert.ErrorIs(t, err, entities.ErrUserAlreadyExists)

		loaded, err := repo.GetByID(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, "alice", loaded.Username)
		assert.Equal(t, testutil.StartingBalance, loaded.Balance)
		assert.False(t, loaded.HasActiveSession())
		assert.Empty(t, loaded.History)

		changes, err := history.GetByUser(ctx, 100, 10)
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, entities.TransactionTypeInitial, changes[0].TransactionType)
		assert.Equal(t, testutil.StartingBalance, changes[0].BalanceAfter)
	})

	t.Run("save persists balance session and records together", func(t *testing.T) {
		_, err := repo.Create(ctx, 200, "bob", testutil.StartingBalance)
		require.NoError(t, err)

		user, err := repo.GetByID(ctx, 200)
		require.NoError(t, err)

		session := testutil.OpenSession(50,
			entities.Card{Rank: entities.Ten, Suit: entities.Spades},
			entities.Card{Rank: entities.Nine, Suit: entities.Clubs},
			entities.Card{Rank: entities.Six, Suit: entities.Hearts},
			entities.Card{Rank: entities.Seven, Suit: entities.Clubs},
		)
		rec := testutil.RouletteLoss(200, 10)

		user.Balance = testutil.StartingBalance - 10 - 50
		user.ActiveSession = session
		user.AppendRecord(rec)
		user.AddBalanceChange(testutil.StakeChange(200, testutil.StartingBalance, 10, entities.TransactionTypeRouletteBet))
		user.AddBalanceChange(testutil.StakeChange(200, testutil.StartingBalance-10, 50, entities.TransactionTypeBlackjackBet))

		require.NoError(t, repo.Save(ctx, user, 0))
		assert.Equal(t, int64(1), user.Version)

		loaded, err := repo.GetByID(ctx, 200)
		require.NoError(t, err)
		assert.Equal(t, int64(1), loaded.Version)
		assert.Equal(t, testutil.StartingBalance-60, loaded.Balance)

		require.NotNil(t, loaded.ActiveSession)
		assert.Equal(t, session.ID, loaded.ActiveSession.ID)
		assert.Equal(t, session.PlayerHand, loaded.ActiveSession.PlayerHand)
		assert.Equal(t, session.DealerHand, loaded.ActiveSession.DealerHand)
		assert.Equal(t, session.Deck.Cards(), loaded.ActiveSession.Deck.Cards())
		assert.Equal(t, entities.SessionPlayerTurn, loaded.ActiveSession.State)
		assert.NoError(t, loaded.ActiveSession.Validate())

		require.Len(t, loaded.History, 1)
		assert.Equal(t, rec.ID, loaded.History[0].ID)
		assert.Equal(t, entities.OutcomeLoss, loaded.History[0].Outcome)
		assert.Equal(t, entities.ResolutionRouletteMiss, loaded.History[0].Resolution)
		assert.Empty(t, loaded.PendingRecords())

		changes, err := history.GetByUser(ctx, 200, 10)
		require.NoError(t, err)
		require.Len(t, changes, 3)
		assert.Equal(t, entities.TransactionTypeBlackjackBet, changes[0].TransactionType)
		assert.Equal(t, entities.TransactionTypeRouletteBet, changes[1].TransactionType)
		assert.Equal(t, entities.TransactionTypeInitial, changes[2].TransactionType)
	})

	t.Run("stale version is rejected without effect", func(t *testing.T) {
		_, err := repo.Create(ctx, 300, "carol", testutil.StartingBalance)
		require.NoError(t, err)

		first, err := repo.GetByID(ctx, 300)
		require.NoError(t, err)
		second, err := repo.GetByID(ctx, 300)
		require.NoError(t, err)

		first.Balance -= 100
		require.NoError(t, repo.Save(ctx, first, 0))

		second.Balance -= 999
		second.AppendRecord(testutil.RouletteLoss(300, 999))
		err = repo.Save(ctx, second, 0)
		assert.ErrorIs(t, err, entities.ErrVersionConflict)

		loaded, err := repo.GetByID(ctx, 300)
		require.NoError(t, err)
		assert.Equal(t, testutil.StartingBalance-100, loaded.Balance)
		assert.Equal(t, int64(1), loaded.Version)
		assert.Empty(t, loaded.History)
	})

	t.Run("clearing the session", func(t *testing.T) {
		_, err := repo.Create(ctx, 400, "dave", testutil.StartingBalance)
		require.NoError(t, err)

		user, err := repo.GetByID(ctx, 400)
		require.NoError(t, err)
		user.ActiveSession = testutil.OpenSession(10)
		user.Balance -= 10
		require.NoError(t, repo.Save(ctx, user, user.Version))

		user.ActiveSession = nil
		require.NoError(t, repo.Save(ctx, user, user.Version))

		loaded, err := repo.GetByID(ctx, 400)
		require.NoError(t, err)
		assert.Nil(t, loaded.ActiveSession)
		assert.Equal(t, int64(2), loaded.Version)
	})

	t.Run("save of unknown user", func(t *testing.T) {
		err := repo.Save(ctx, &entities.User{ID: 123456789, Balance: 1}, 0)
		assert.ErrorIs(t, err, entities.ErrUserNotFound)
	})

	t.Run("leaderboard orders by balance", func(t *testing.T) {
		_, err := repo.Create(ctx, 500, "erin", 5000)
		require.NoError(t, err)
		_, err = repo.Create(ctx, 501, "frank", 5000)
		require.NoError(t, err)

		entries, err := repo.Leaderboard(ctx, 3)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, int64(500), entries[0].UserID)
		assert.Equal(t, int64(501), entries[1].UserID)
		assert.Equal(t, int64(5000), entries[1].Balance)
		assert.Equal(t, int64(100), entries[2].UserID)
	})
}
