package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"casino/config"
	"casino/domain/entities"
	"casino/domain/interfaces"
	"casino/events"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 50
	MaxBalanceHistorySize  = 100
)

type accountService struct {
	ledger             *WagerLedger
	userRepo           interfaces.UserRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
}

// NewAccountService creates a new account service
func NewAccountService(ledger *WagerLedger, userRepo interfaces.UserRepository, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher) interfaces.AccountService {
	return &accountService{
		ledger:             ledger,
		userRepo:           userRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
	}
}

func (s *accountService) OpenAccount(ctx context.Context, userID int64, username string) (*entities.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		username = fmt.Sprintf("player-%d", userID)
	}

	existing, err := s.ledger.Load(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, entities.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user %d: %w", userID, err)
	}

	initialBalance := config.Get().StartingBalance
	user, err := s.userRepo.Create(ctx, userID, username, initialBalance)
	if errors.Is(err, entities.ErrUserAlreadyExists) {
		// Lost a race with a concurrent open; the other request funded the account
		return s.ledger.Load(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user %d: %w", userID, err)
	}

	s.publish(events.AccountOpenedEvent{
		UserID:         user.ID,
		Username:       user.Username,
		InitialBalance: initialBalance,
	})
	s.publish(events.BalanceChangeEvent{
		UserID:          user.ID,
		OldBalance:      0,
		NewBalance:      initialBalance,
		TransactionType: entities.TransactionTypeInitial,
		ChangeAmount:    initialBalance,
	})

	log.WithFields(log.Fields{
		"userID":         user.ID,
		"username":       user.Username,
		"initialBalance": initialBalance,
	}).Info("Opened account")
	return user, nil
}

func (s *accountService) GetProfile(ctx context.Context, userID int64) (*entities.User, error) {
	return s.ledger.Load(ctx, userID)
}

func (s *accountService) GetBalanceHistory(ctx context.Context, userID int64, limit int) ([]*entities.BalanceChange, error) {
	if limit <= 0 || limit > MaxBalanceHistorySize {
		limit = MaxBalanceHistorySize
	}
	if _, err := s.ledger.Load(ctx, userID); err != nil {
		return nil, err
	}

	history, err := s.balanceHistoryRepo.GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history for user %d: %w", userID, err)
	}
	return history, nil
}

func (s *accountService) Leaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	switch {
	case limit <= 0:
		limit = DefaultLeaderboardSize
	case limit > MaxLeaderboardSize:
		limit = MaxLeaderboardSize
	}

	entries, err := s.userRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	for i, e := range entries {
		e.Rank = i + 1
	}
	return entries, nil
}

func (s *accountService) publish(event events.Event) {
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Warn("Failed to publish event")
	}
}
