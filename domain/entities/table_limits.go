package entities

import "fmt"

// TableLimits bounds the stake accepted at a table. A zero MaxBet means no upper limit.
type TableLimits struct {
	MinBet int64
	MaxBet int64
}

// Check validates a stake against the limits
func (l TableLimits) Check(bet int64) error {
	if bet <= 0 {
		return ErrInvalidBet
	}
	if l.MinBet > 0 && bet < l.MinBet {
		return fmt.Errorf("%w: minimum bet is %d", ErrInvalidBet, l.MinBet)
	}
	if l.MaxBet > 0 && bet > l.MaxBet {
		return fmt.Errorf("%w: maximum bet is %d", ErrInvalidBet, l.MaxBet)
	}
	return nil
}
