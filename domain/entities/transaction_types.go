package entities

// TransactionType represents the type of balance change
type TransactionType string

const (
	// Wager transactions
	TransactionTypeBlackjackBet    TransactionType = "blackjack_bet"
	TransactionTypeBlackjackPayout TransactionType = "blackjack_payout"
	TransactionTypeRouletteBet     TransactionType = "roulette_bet"
	TransactionTypeRoulettePayout  TransactionType = "roulette_payout"

	// System transactions
	TransactionTypeInitial TransactionType = "initial"
)

// IsStake returns true if the transaction takes a stake from the balance
func (tt TransactionType) IsStake() bool {
	return tt == TransactionTypeBlackjackBet ||
		tt == TransactionTypeRouletteBet
}

// IsPayout returns true if the transaction credits winnings or a returned stake
func (tt TransactionType) IsPayout() bool {
	return tt == TransactionTypeBlackjackPayout ||
		tt == TransactionTypeRoulettePayout
}

// IsGamblingRelated returns true if the transaction belongs to a wager
func (tt TransactionType) IsGamblingRelated() bool {
	return tt.IsStake() || tt.IsPayout()
}

// IsSystemGenerated returns true if the transaction type is system-generated
func (tt TransactionType) IsSystemGenerated() bool {
	return tt == TransactionTypeInitial
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
