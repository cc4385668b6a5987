package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casino/domain/entities"
	"casino/domain/interfaces"
	"casino/events"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// LedgerOptions tunes the ledger's retry and timeout behaviour
type LedgerOptions struct {
	// MaxRetries bounds how often a lost version race is re-executed
	MaxRetries uint64
	// PersistenceTimeout caps each load and each save round trip
	PersistenceTimeout time.Duration
	// InitialRetryInterval and MaxRetryInterval shape the exponential backoff
	InitialRetryInterval time.Duration
	MaxRetryInterval     time.Duration
}

// DefaultLedgerOptions returns the options used when none are configured
func DefaultLedgerOptions() LedgerOptions {
	return LedgerOptions{
		MaxRetries:           5,
		PersistenceTimeout:   5 * time.Second,
		InitialRetryInterval: 5 * time.Millisecond,
		MaxRetryInterval:     200 * time.Millisecond,
	}
}

// PublisherFactory returns a fresh transactional publisher for one attempt
type PublisherFactory func() interfaces.TransactionalEventPublisher

// WagerLedger is the only writer of user balances. Every operation is a
// read-modify-write of the whole user aggregate, committed with a conditional
// save against the loaded version and re-executed on fresh state when another
// request for the same user won the race.
type WagerLedger struct {
	userRepo     interfaces.UserRepository
	newPublisher PublisherFactory
	observer     interfaces.LedgerObserver
	opts         LedgerOptions
	now          func() time.Time
}

// NewWagerLedger creates a new wager ledger. observer may be nil.
func NewWagerLedger(userRepo interfaces.UserRepository, newPublisher PublisherFactory, observer interfaces.LedgerObserver, opts LedgerOptions) *WagerLedger {
	defaults := DefaultLedgerOptions()
	if opts.PersistenceTimeout <= 0 {
		opts.PersistenceTimeout = defaults.PersistenceTimeout
	}
	if opts.InitialRetryInterval <= 0 {
		opts.InitialRetryInterval = defaults.InitialRetryInterval
	}
	if opts.MaxRetryInterval <= 0 {
		opts.MaxRetryInterval = defaults.MaxRetryInterval
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &WagerLedger{
		userRepo:     userRepo,
		newPublisher: newPublisher,
		observer:     observer,
		opts:         opts,
		now:          time.Now,
	}
}

// Load reads the user aggregate within the persistence timeout
func (l *WagerLedger) Load(ctx context.Context, userID int64) (*entities.User, error) {
	loadCtx, cancel := context.WithTimeout(ctx, l.opts.PersistenceTimeout)
	defer cancel()

	user, err := l.userRepo.GetByID(loadCtx, userID)
	if err != nil {
		return nil, l.persistenceError(loadCtx, "load", err)
	}
	return user, nil
}

// Execute applies fn to a freshly loaded user and commits the result
// atomically. fn must compute everything from the mutation it is handed since
// it may run more than once; only the run whose save succeeds has any effect.
// A domain error from fn aborts without retry and without any write.
func (l *WagerLedger) Execute(ctx context.Context, operation string, userID int64, fn func(m *Mutation) error) (*entities.User, error) {
	start := time.Now()
	logger := log.WithFields(log.Fields{
		"operation": operation,
		"userID":    userID,
	})

	var committed *entities.User
	attempt := 0
	op := func() error {
		attempt++

		user, err := l.Load(ctx, userID)
		if err != nil {
			return backoff.Permanent(err)
		}
		expectedVersion := user.Version

		publisher := l.newPublisher()
		m := &Mutation{user: user, publisher: publisher, now: l.now().UTC()}

		if err := fn(m); err != nil {
			publisher.Discard()
			return backoff.Permanent(err)
		}
		if err := user.Validate(); err != nil {
			publisher.Discard()
			return backoff.Permanent(fmt.Errorf("refusing to save user %d: %w", userID, err))
		}

		if err := l.save(ctx, user, expectedVersion); err != nil {
			publisher.Discard()
			if errors.Is(err, entities.ErrVersionConflict) {
				l.observer.VersionConflict(operation)
				logger.WithFields(log.Fields{
					"attempt":         attempt,
					"expectedVersion": expectedVersion,
				}).Debug("Version conflict, retrying on fresh state")
				return err
			}
			return backoff.Permanent(err)
		}

		user.ClearPending()
		if err := publisher.Flush(ctx); err != nil {
			logger.WithError(err).Warn("Failed to flush events after commit")
		}
		committed = user
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(l.newBackOff(), l.opts.MaxRetries), ctx))
	err = l.classify(operation, err)
	l.observer.OperationFinished(operation, time.Since(start), err)

	if err != nil {
		if entities.KindOf(err) == entities.ErrorKindInternal {
			logger.WithError(err).Error("Ledger operation failed")
		} else {
			logger.WithError(err).Debug("Ledger operation rejected")
		}
		return nil, err
	}

	logger.WithFields(log.Fields{
		"attempts": attempt,
		"balance":  committed.Balance,
		"version":  committed.Version,
	}).Debug("Ledger operation committed")
	return committed, nil
}

func (l *WagerLedger) save(ctx context.Context, user *entities.User, expectedVersion int64) error {
	saveCtx, cancel := context.WithTimeout(ctx, l.opts.PersistenceTimeout)
	defer cancel()

	if err := l.userRepo.Save(saveCtx, user, expectedVersion); err != nil {
		if errors.Is(err, entities.ErrVersionConflict) {
			return err
		}
		return l.persistenceError(saveCtx, "save", err)
	}
	return nil
}

// persistenceError turns a deadline on the round trip into ErrPersistenceTimeout.
// A timed out save is never retried here: it may have committed, and running
// the operation again would apply the wager twice.
func (l *WagerLedger) persistenceError(ctx context.Context, step string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", step, entities.ErrPersistenceTimeout)
	}
	return err
}

func (l *WagerLedger) classify(operation string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, entities.ErrVersionConflict):
		l.observer.RetriesExhausted(operation)
		return fmt.Errorf("%s gave up after %d retries: %w", operation, l.opts.MaxRetries, entities.ErrConcurrentModification)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", operation, entities.ErrPersistenceTimeout)
	default:
		return err
	}
}

func (l *WagerLedger) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.opts.InitialRetryInterval
	b.MaxInterval = l.opts.MaxRetryInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Mutation is the view of the user aggregate handed to a ledger operation.
// Balance changes only go through Debit and Credit.
type Mutation struct {
	user      *entities.User
	publisher interfaces.EventPublisher
	now       time.Time
}

// User returns the aggregate being mutated
func (m *Mutation) User() *entities.User {
	return m.user
}

// Now is the timestamp shared by everything written in this attempt
func (m *Mutation) Now() time.Time {
	return m.now
}

// Debit takes amount from the balance. It refuses to go below zero.
func (m *Mutation) Debit(amount int64, tt entities.TransactionType, metadata map[string]any, relatedID *uuid.UUID) error {
	if amount <= 0 {
		return entities.ErrInvalidBet
	}
	if !m.user.CanAfford(amount) {
		return fmt.Errorf("%w: need %d, have %d", entities.ErrInsufficientBalance, amount, m.user.Balance)
	}
	m.apply(-amount, tt, metadata, relatedID)
	return nil
}

// Credit adds amount to the balance. A zero credit records nothing.
func (m *Mutation) Credit(amount int64, tt entities.TransactionType, metadata map[string]any, relatedID *uuid.UUID) error {
	if amount < 0 {
		return fmt.Errorf("credit of negative amount %d", amount)
	}
	if amount == 0 {
		return nil
	}
	m.apply(amount, tt, metadata, relatedID)
	return nil
}

func (m *Mutation) apply(delta int64, tt entities.TransactionType, metadata map[string]any, relatedID *uuid.UUID) {
	before := m.user.Balance
	m.user.Balance += delta

	m.user.AddBalanceChange(&entities.BalanceChange{
		UserID:              m.user.ID,
		BalanceBefore:       before,
		BalanceAfter:        m.user.Balance,
		ChangeAmount:        delta,
		TransactionType:     tt,
		TransactionMetadata: metadata,
		RelatedID:           relatedID,
		CreatedAt:           m.now,
	})
	m.Publish(events.BalanceChangeEvent{
		UserID:          m.user.ID,
		OldBalance:      before,
		NewBalance:      m.user.Balance,
		TransactionType: tt,
		ChangeAmount:    delta,
	})
}

// OpenSession attaches a freshly dealt session. Only one may be open.
func (m *Mutation) OpenSession(s *entities.BlackjackSession) error {
	if m.user.HasActiveSession() {
		return entities.ErrSessionAlreadyActive
	}
	m.user.ActiveSession = s
	return nil
}

// ClearSession drops the open session after it resolved
func (m *Mutation) ClearSession() {
	m.user.ActiveSession = nil
}

// Record appends a resolved wager to the history
func (m *Mutation) Record(rec *entities.WagerRecord) {
	m.user.AppendRecord(rec)
	m.Publish(events.NewWagerResolvedEvent(rec))
}

// Publish queues an event that is only delivered if this attempt commits
func (m *Mutation) Publish(event events.Event) {
	if err := m.publisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Warn("Failed to queue event")
	}
}

type noopObserver struct{}

func (noopObserver) VersionConflict(string)                          {}
func (noopObserver) RetriesExhausted(string)                         {}
func (noopObserver) OperationFinished(string, time.Duration, error) {}
