package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"casino/database"
	"casino/domain/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/jackc/pgx/v5"
)

// UserRepository implements the UserRepository interface on Postgres
type UserRepository struct {
	connResolver
	txManager     trm.Manager
	historyWindow int
}

// NewUserRepository creates a new user repository. historyWindow bounds how
// many recent wager records are loaded with the user.
func NewUserRepository(db *database.DB, txManager trm.Manager, historyWindow int) *UserRepository {
	return &UserRepository{
		connResolver:  newConnResolver(db.Pool),
		txManager:     txManager,
		historyWindow: historyWindow,
	}
}

// GetByID loads the user, its open session and its recent wager history
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*entities.User, error) {
	query := `
		SELECT id, username, balance, version, active_session, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user entities.User
	var sessionJSON []byte
	err := r.conn(ctx).QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Username,
		&user.Balance,
		&user.Version,
		&sessionJSON,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", userID, entities.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	if len(sessionJSON) > 0 {
		var session entities.BlackjackSession
		if err := json.Unmarshal(sessionJSON, &session); err != nil {
			return nil, fmt.Errorf("failed to decode session for user %d: %w", userID, err)
		}
		user.ActiveSession = &session
	}

	history, err := r.recentWagers(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.History = history

	return &user, nil
}

func (r *UserRepository) recentWagers(ctx context.Context, userID int64) ([]*entities.WagerRecord, error) {
	query := `
		SELECT id, user_id, game, bet, outcome, resolution, payout, details, created_at
		FROM wager_records
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.conn(ctx).Query(ctx, query, userID, r.historyWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to query wager history for user %d: %w", userID, err)
	}
	defer rows.Close()

	var records []*entities.WagerRecord
	for rows.Next() {
		var rec entities.WagerRecord
		var details []byte
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Game,
			&rec.Bet,
			&rec.Outcome,
			&rec.Resolution,
			&rec.Payout,
			&details,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wager record: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &rec.Details); err != nil {
				return nil, fmt.Errorf("failed to decode wager details %s: %w", rec.ID, err)
			}
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wager records: %w", err)
	}

	// Oldest first, matching the append order of the history
	slices.Reverse(records)
	return records, nil
}

// Create inserts a new funded user and its initial balance movement
func (r *UserRepository) Create(ctx context.Context, userID int64, username string, initialBalance int64) (*entities.User, error) {
	user := &entities.User{
		ID:       userID,
		Username: username,
		Balance:  initialBalance,
	}

	err := r.txManager.Do(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO users (id, username, balance)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING
			RETURNING version, created_at, updated_at
		`
		err := r.conn(ctx).QueryRow(ctx, query, userID, username, initialBalance).Scan(
			&user.Version,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user %d: %w", userID, entities.ErrUserAlreadyExists)
		}
		if err != nil {
			return fmt.Errorf("failed to create user %d: %w", userID, err)
		}

		return r.insertBalanceChange(ctx, &entities.BalanceChange{
			UserID:          userID,
			BalanceBefore:   0,
			BalanceAfter:    initialBalance,
			ChangeAmount:    initialBalance,
			TransactionType: entities.TransactionTypeInitial,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Save commits balance, session and pending records in one transaction,
// guarded by the version the caller loaded
func (r *UserRepository) Save(ctx context.Context, user *entities.User, expectedVersion int64) error {
	var sessionJSON []byte
	if user.ActiveSession != nil {
		var err error
		sessionJSON, err = json.Marshal(user.ActiveSession)
		if err != nil {
			return fmt.Errorf("failed to encode session for user %d: %w", user.ID, err)
		}
	}

	var newVersion int64
	err := r.txManager.Do(ctx, func(ctx context.Context) error {
		query := `
			UPDATE users
			SET balance = $1, active_session = $2, version = version + 1, updated_at = NOW()
			WHERE id = $3 AND version = $4
			RETURNING version, updated_at
		`
		err := r.conn(ctx).QueryRow(ctx, query, user.Balance, sessionJSON, user.ID, expectedVersion).Scan(
			&newVersion,
			&user.UpdatedAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missOrConflict(ctx, user.ID, expectedVersion)
		}
		if err != nil {
			return fmt.Errorf("failed to update user %d: %w", user.ID, err)
		}

		for _, rec := range user.PendingRecords() {
			if err := r.insertWagerRecord(ctx, rec); err != nil {
				return err
			}
		}
		for _, bc := range user.PendingBalanceChanges() {
			if err := r.insertBalanceChange(ctx, bc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	user.Version = newVersion
	return nil
}

func (r *UserRepository) missOrConflict(ctx context.Context, userID, expectedVersion int64) error {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check user %d: %w", userID, err)
	}
	if !exists {
		return fmt.Errorf("user %d: %w", userID, entities.ErrUserNotFound)
	}
	return fmt.Errorf("user %d at version %d: %w", userID, expectedVersion, entities.ErrVersionConflict)
}

func (r *UserRepository) insertWagerRecord(ctx context.Context, rec *entities.WagerRecord) error {
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return fmt.Errorf("failed to encode wager details: %w", err)
	}

	query := `
		INSERT INTO wager_records (id, user_id, game, bet, outcome, resolution, payout, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.conn(ctx).Exec(ctx, query,
		rec.ID,
		rec.UserID,
		string(rec.Game),
		rec.Bet,
		string(rec.Outcome),
		string(rec.Resolution),
		rec.Payout,
		details,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert wager record %s: %w", rec.ID, err)
	}
	return nil
}

func (r *UserRepository) insertBalanceChange(ctx context.Context, bc *entities.BalanceChange) error {
	var metadata []byte
	if bc.TransactionMetadata != nil {
		var err error
		metadata, err = json.Marshal(bc.TransactionMetadata)
		if err != nil {
			return fmt.Errorf("failed to encode transaction metadata: %w", err)
		}
	}

	query := `
		INSERT INTO balance_history (
			user_id, balance_before, balance_after, change_amount,
			transaction_type, transaction_metadata, related_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.conn(ctx).QueryRow(ctx, query,
		bc.UserID,
		bc.BalanceBefore,
		bc.BalanceAfter,
		bc.ChangeAmount,
		string(bc.TransactionType),
		metadata,
		bc.RelatedID,
	).Scan(&bc.ID, &bc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record balance change for user %d: %w", bc.UserID, err)
	}
	return nil
}

// Leaderboard returns the richest users, ties broken by id
func (r *UserRepository) Leaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	query, args, err := sq.Select("id", "username", "balance").
		From("users").
		OrderBy("balance DESC", "id ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*entities.LeaderboardEntry
	for rows.Next() {
		var e entities.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}
	return entries, nil
}
