package services

import (
	"context"
	"testing"
	"time"

	"casino/config"
	"casino/domain/entities"
	"casino/domain/interfaces"
	"casino/domain/testhelpers"
	"casino/repository"

	"github.com/stretchr/testify/require"
)

const testUserID = int64(42)

type fixture struct {
	repo     *repository.MemoryUserRepository
	sink     *testhelpers.RecordingPublisher
	observer *testhelpers.RecordingObserver
	ledger   *WagerLedger
}

func testLedgerOptions() LedgerOptions {
	return LedgerOptions{
		MaxRetries:           5,
		PersistenceTimeout:   time.Second,
		InitialRetryInterval: time.Millisecond,
		MaxRetryInterval:     5 * time.Millisecond,
	}
}

func useTestConfig(t *testing.T) {
	t.Helper()
	config.SetTestConfig(config.NewTestConfig())
	t.Cleanup(config.ResetConfig)
}

// newFixture wires a ledger over the in-memory store. repo may wrap the store.
func newFixture(t *testing.T, wrap func(interfaces.UserRepository) interfaces.UserRepository, opts LedgerOptions) *fixture {
	t.Helper()
	useTestConfig(t)

	f := &fixture{
		repo:     repository.NewMemoryUserRepository(50),
		sink:     &testhelpers.RecordingPublisher{},
		observer: testhelpers.NewRecordingObserver(),
	}
	var repo interfaces.UserRepository = f.repo
	if wrap != nil {
		repo = wrap(repo)
	}
	f.ledger = NewWagerLedger(repo, testhelpers.NewBufferedPublisherFactory(f.sink), f.observer, opts)
	return f
}

func (f *fixture) fund(t *testing.T, userID, balance int64) {
	t.Helper()
	_, err := f.repo.Create(context.Background(), userID, "player", balance)
	require.NoError(t, err)
}

func (f *fixture) user(t *testing.T, userID int64) *entities.User {
	t.Helper()
	u, err := f.repo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	return u
}

// conflictingRepo fails the first n saves with a version conflict
type conflictingRepo struct {
	interfaces.UserRepository
	remaining int
	saves     int
}

func (r *conflictingRepo) Save(ctx context.Context, user *entities.User, expectedVersion int64) error {
	r.saves++
	if r.remaining != 0 {
		if r.remaining > 0 {
			r.remaining--
		}
		return entities.ErrVersionConflict
	}
	return r.UserRepository.Save(ctx, user, expectedVersion)
}

func stacked(cards ...entities.Card) DeckFactory {
	return func() *entities.Deck {
		return entities.NewStackedDeck(cards...)
	}
}

func c(r entities.Rank, s entities.Suit) entities.Card {
	return entities.Card{Rank: r, Suit: s}
}
