package interfaces

import (
	"context"

	"casino/domain/entities"
)

// UserRepository persists the user aggregate. Mutations go through Save, which
// is a conditional write against the version the caller loaded.
type UserRepository interface {
	// GetByID loads the aggregate with its recent wager history.
	// Returns entities.ErrUserNotFound when the user does not exist.
	GetByID(ctx context.Context, userID int64) (*entities.User, error)

	// Create inserts a new user funded with initialBalance and records the
	// initial balance movement. Returns entities.ErrUserAlreadyExists on a duplicate id.
	Create(ctx context.Context, userID int64, username string, initialBalance int64) (*entities.User, error)

	// Save writes balance, session and the user's pending records in one atomic
	// step if the stored version still equals expectedVersion, then advances
	// user.Version. Returns entities.ErrVersionConflict when another writer won.
	Save(ctx context.Context, user *entities.User, expectedVersion int64) error

	// Leaderboard returns the top users ordered by balance
	Leaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error)
}

// BalanceHistoryRepository reads the ledger movements written by Save
type BalanceHistoryRepository interface {
	// GetByUser returns the most recent balance changes for a user, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.BalanceChange, error)
}
