package entities

// BlackjackValue is the best possible hand value
const BlackjackValue = 21

// Hand is the ordered set of cards held by the player or the dealer
type Hand []Card

// Add appends a card to the hand
func (h *Hand) Add(c Card) {
	*h = append(*h, c)
}

// Value returns the best total of the hand. Every ace starts at 11 and aces are
// softened to 1, one at a time, while the total is over 21.
func (h Hand) Value() int {
	total, _ := h.evaluate()
	return total
}

// IsSoft reports whether an ace is still counted as 11
func (h Hand) IsSoft() bool {
	_, soft := h.evaluate()
	return soft > 0
}

// IsBust reports whether the hand is over 21 after softening every ace
func (h Hand) IsBust() bool {
	return h.Value() > BlackjackValue
}

func (h Hand) evaluate() (total int, softAces int) {
	for _, c := range h {
		total += c.Points()
		if c.IsAce() {
			softAces++
		}
	}
	for total > BlackjackValue && softAces > 0 {
		total -= 10
		softAces--
	}
	return total, softAces
}

// Clone returns an independent copy of the hand
func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}
	out := make(Hand, len(h))
	copy(out, h)
	return out
}

// Strings renders each card in short form
func (h Hand) Strings() []string {
	out := make([]string, len(h))
	for i, c := range h {
		out[i] = c.String()
	}
	return out
}
