package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"casino/domain/entities"
)

// MemoryUserRepository keeps users in process memory with the same conditional
// save semantics as the Postgres store. Each user has its own lock so writers
// for different users never wait on each other.
type MemoryUserRepository struct {
	mu            sync.RWMutex
	users         map[int64]*memoryUser
	historyWindow int
	nextChangeID  atomic.Int64
}

type memoryUser struct {
	mu      sync.Mutex
	user    *entities.User
	wagers  []*entities.WagerRecord
	changes []*entities.BalanceChange
}

// NewMemoryUserRepository creates an empty in-memory store
func NewMemoryUserRepository(historyWindow int) *MemoryUserRepository {
	if historyWindow <= 0 {
		historyWindow = 50
	}
	return &MemoryUserRepository{
		users:         make(map[int64]*memoryUser),
		historyWindow: historyWindow,
	}
}

func (r *MemoryUserRepository) entry(userID int64) (*memoryUser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.users[userID]
	return e, ok
}

// GetByID returns a private copy of the stored user
func (r *MemoryUserRepository) GetByID(ctx context.Context, userID int64) (*entities.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := r.entry(userID)
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, entities.ErrUserNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	user := e.user.Clone()
	start := max(0, len(e.wagers)-r.historyWindow)
	user.History = slices.Clone(e.wagers[start:])
	return user, nil
}

// Create inserts a funded user
func (r *MemoryUserRepository) Create(ctx context.Context, userID int64, username string, initialBalance int64) (*entities.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[userID]; exists {
		return nil, fmt.Errorf("user %d: %w", userID, entities.ErrUserAlreadyExists)
	}

	now := time.Now().UTC()
	user := &entities.User{
		ID:        userID,
		Username:  username,
		Balance:   initialBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.users[userID] = &memoryUser{
		user: user,
		changes: []*entities.BalanceChange{{
			ID:              r.nextChangeID.Add(1),
			UserID:          userID,
			BalanceAfter:    initialBalance,
			ChangeAmount:    initialBalance,
			TransactionType: entities.TransactionTypeInitial,
			CreatedAt:       now,
		}},
	}
	return user.Clone(), nil
}

// Save replaces the stored user if its version still matches
func (r *MemoryUserRepository) Save(ctx context.Context, user *entities.User, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e, ok := r.entry(user.ID)
	if !ok {
		return fmt.Errorf("user %d: %w", user.ID, entities.ErrUserNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.user.Version != expectedVersion {
		return fmt.Errorf("user %d at version %d, stored %d: %w", user.ID, expectedVersion, e.user.Version, entities.ErrVersionConflict)
	}
	if user.Balance < 0 {
		return fmt.Errorf("user %d: balance %d violates non-negative constraint", user.ID, user.Balance)
	}

	now := time.Now().UTC()
	stored := user.Clone()
	stored.ClearPending()
	stored.History = nil
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = now

	e.wagers = append(e.wagers, user.PendingRecords()...)
	for _, bc := range user.PendingBalanceChanges() {
		bc.ID = r.nextChangeID.Add(1)
		if bc.CreatedAt.IsZero() {
			bc.CreatedAt = now
		}
		e.changes = append(e.changes, bc)
	}
	e.user = stored

	user.Version = stored.Version
	user.UpdatedAt = now
	return nil
}

// Leaderboard returns the richest users, ties broken by id
func (r *MemoryUserRepository) Leaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	entries := make([]*entities.LeaderboardEntry, 0, len(r.users))
	for _, e := range r.users {
		e.mu.Lock()
		entries = append(entries, &entities.LeaderboardEntry{
			UserID:   e.user.ID,
			Username: e.user.Username,
			Balance:  e.user.Balance,
		})
		e.mu.Unlock()
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Balance != entries[j].Balance {
			return entries[i].Balance > entries[j].Balance
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// GetByUser returns balance history for a user, newest first
func (r *MemoryUserRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.BalanceChange, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := r.entry(userID)
	if !ok {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*entities.BalanceChange, 0, min(limit, len(e.changes)))
	for i := len(e.changes) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, e.changes[i])
	}
	return out, nil
}
