package server

import (
	"fmt"
	"strings"

	"casino/domain/entities"
)

// HiddenCard stands in for the dealer's face down card
const HiddenCard = "hidden"

// FormatBalance formats an amount with thousand separators
func FormatBalance(balance int64) string {
	sign := ""
	if balance < 0 {
		sign = "-"
		balance = -balance
	}
	str := fmt.Sprintf("%d", balance)

	n := len(str)
	if n <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}
	return result.String()
}

// FormatBlackjackMessage describes a blackjack result for display
func FormatBlackjackMessage(r *entities.BlackjackResult) string {
	if r.Resolution == "" {
		return fmt.Sprintf("You have %d. Hit or stand?", r.PlayerValue)
	}
	return fmt.Sprintf("%s You have %d, dealer has %d. Balance: %s",
		r.Message(), r.PlayerValue, r.DealerValue, FormatBalance(r.Balance))
}

// FormatRouletteMessage describes a spin for display
func FormatRouletteMessage(r *entities.RouletteResult) string {
	landed := fmt.Sprintf("The ball lands on %d %s.", r.Number, r.Color)
	if r.Outcome == entities.OutcomeWin {
		return fmt.Sprintf("%s You win %s! Balance: %s", landed, FormatBalance(r.Payout), FormatBalance(r.Balance))
	}
	return fmt.Sprintf("%s You lose %s. Balance: %s", landed, FormatBalance(r.Bet), FormatBalance(r.Balance))
}
