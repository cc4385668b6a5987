package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"casino/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserRepository(t *testing.T) {
	t.Parallel()

	repo := NewMemoryUserRepository(50)
	runUserRepositoryTests(t, repo, repo)
}

func TestMemoryUserRepository_ReturnsPrivateCopies(t *testing.T) {
	t.Parallel()

	repo := NewMemoryUserRepository(50)
	ctx := context.Background()
	_, err := repo.Create(ctx, 1, "alice", 100)
	require.NoError(t, err)

	user, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	user.Balance = 0

	again, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), again.Balance)
}

func TestMemoryUserRepository_HistoryWindow(t *testing.T) {
	t.Parallel()

	repo := NewMemoryUserRepository(2)
	ctx := context.Background()
	_, err := repo.Create(ctx, 1, "alice", 100)
	require.NoError(t, err)

	var ids []string
	for i := range 3 {
		user, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		rec := entities.NewWagerRecord(1, entities.GameRoulette, int64(i+1), entities.ResolutionRouletteMiss, 0, nil, user.CreatedAt)
		ids = append(ids, rec.ID.String())
		user.Balance -= int64(i + 1)
		user.AppendRecord(rec)
		require.NoError(t, repo.Save(ctx, user, user.Version))
	}

	user, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, user.History, 2)
	assert.Equal(t, ids[1], user.History[0].ID.String())
	assert.Equal(t, ids[2], user.History[1].ID.String())
}

func TestMemoryUserRepository_ConcurrentSavesSerialize(t *testing.T) {
	t.Parallel()

	repo := NewMemoryUserRepository(50)
	ctx := context.Background()
	_, err := repo.Create(ctx, 1, "alice", 1000)
	require.NoError(t, err)

	var wins atomic.Int64
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, err := repo.GetByID(ctx, 1)
			if err != nil {
				return
			}
			user.Balance -= 10
			if repo.Save(ctx, user, 0) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins.Load())
	user, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(990), user.Balance)
	assert.Equal(t, int64(1), user.Version)
}

func TestMemoryUserRepository_RejectsNegativeBalance(t *testing.T) {
	t.Parallel()

	repo := NewMemoryUserRepository(50)
	ctx := context.Background()
	_, err := repo.Create(ctx, 1, "alice", 10)
	require.NoError(t, err)

	user, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	user.Balance = -1
	assert.Error(t, repo.Save(ctx, user, 0))
}

func TestMemoryUserRepository_CanceledContext(t *testing.T) {
	t.Parallel()

	repo := NewMemoryUserRepository(50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetByID(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
