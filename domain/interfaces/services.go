package interfaces

import (
	"context"

	"casino/domain/entities"
)

// BlackjackService drives a user's blackjack hand
type BlackjackService interface {
	// Deal debits bet and opens a new hand
	Deal(ctx context.Context, userID int64, bet int64) (*entities.BlackjackResult, error)

	// Hit draws a card for the player
	Hit(ctx context.Context, userID int64) (*entities.BlackjackResult, error)

	// Stand plays out the dealer and settles the hand
	Stand(ctx context.Context, userID int64) (*entities.BlackjackResult, error)

	// GetActiveSession returns the open hand, or nil when there is none
	GetActiveSession(ctx context.Context, userID int64) (*entities.BlackjackResult, error)
}

// RouletteService settles single roulette spins
type RouletteService interface {
	// Spin debits bet, spins the wheel and credits any winnings in one step
	Spin(ctx context.Context, userID int64, bet int64, choice string) (*entities.RouletteResult, error)
}

// AccountService covers the non-wagering user operations
type AccountService interface {
	// OpenAccount funds a new user, returning the existing one unchanged on repeat calls
	OpenAccount(ctx context.Context, userID int64, username string) (*entities.User, error)

	// GetProfile returns balance and recent wager history
	GetProfile(ctx context.Context, userID int64) (*entities.User, error)

	// GetBalanceHistory returns recent balance movements
	GetBalanceHistory(ctx context.Context, userID int64, limit int) ([]*entities.BalanceChange, error)

	// Leaderboard returns users ranked by balance
	Leaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error)
}
