package entities

import (
	"fmt"
	"strconv"
	"strings"

	"casino/domain/rng"
)

const (
	// RouletteSlots is the count of pockets on a single-zero wheel
	RouletteSlots = 37

	ColorPayoutMultiplier  = 2
	NumberPayoutMultiplier = 36
)

// Color of a roulette pocket. Zero is green and belongs to neither side.
type Color string

const (
	ColorRed   Color = "red"
	ColorBlack Color = "black"
	ColorGreen Color = "green"
)

var redNumbers = map[int]struct{}{
	1: {}, 3: {}, 5: {}, 7: {}, 9: {}, 12: {}, 14: {}, 16: {}, 18: {},
	19: {}, 21: {}, 23: {}, 25: {}, 27: {}, 30: {}, 32: {}, 34: {}, 36: {},
}

// ColorOf returns the fixed wheel color of pocket n
func ColorOf(n int) Color {
	if n == 0 {
		return ColorGreen
	}
	if _, ok := redNumbers[n]; ok {
		return ColorRed
	}
	return ColorBlack
}

// ChoiceKind is the family a roulette bet belongs to
type ChoiceKind string

const (
	ChoiceColor  ChoiceKind = "color"
	ChoiceNumber ChoiceKind = "number"
)

// RouletteChoice is what the player is betting on
type RouletteChoice struct {
	Kind   ChoiceKind `json:"kind"`
	Color  Color      `json:"color,omitempty"`
	Number int        `json:"number"`
}

// ParseRouletteChoice accepts "red", "black" or a pocket number between 0 and 36
// written in plain decimal. Signs and leading zeros are rejected.
func ParseRouletteChoice(s string) (RouletteChoice, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch Color(v) {
	case ColorRed, ColorBlack:
		return RouletteChoice{Kind: ChoiceColor, Color: Color(v)}, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n >= RouletteSlots || strconv.Itoa(n) != v {
		return RouletteChoice{}, fmt.Errorf("%w: %q", ErrInvalidChoice, s)
	}
	return RouletteChoice{Kind: ChoiceNumber, Number: n}, nil
}

// PayoutMultiplier is the credit per unit staked when the choice wins
func (c RouletteChoice) PayoutMultiplier() int64 {
	if c.Kind == ChoiceColor {
		return ColorPayoutMultiplier
	}
	return NumberPayoutMultiplier
}

// Matches reports whether pocket n wins for this choice
func (c RouletteChoice) Matches(n int) bool {
	switch c.Kind {
	case ChoiceColor:
		return n != 0 && ColorOf(n) == c.Color
	case ChoiceNumber:
		return n == c.Number
	}
	return false
}

func (c RouletteChoice) String() string {
	if c.Kind == ChoiceColor {
		return string(c.Color)
	}
	return strconv.Itoa(c.Number)
}

// RouletteSpin is the result of one spin. It is never persisted as a session;
// only the wager record derived from it is.
type RouletteSpin struct {
	Bet        int64
	Choice     RouletteChoice
	Number     int
	Color      Color
	Resolution Resolution
	Payout     int64
}

// SpinRoulette draws a pocket uniformly from [0, 36] and resolves the bet
func SpinRoulette(bet int64, choice RouletteChoice, src rng.Source) (*RouletteSpin, error) {
	if bet <= 0 {
		return nil, ErrInvalidBet
	}
	if choice.Kind != ChoiceColor && choice.Kind != ChoiceNumber {
		return nil, ErrInvalidChoice
	}

	n := src.IntN(RouletteSlots)
	spin := &RouletteSpin{
		Bet:        bet,
		Choice:     choice,
		Number:     n,
		Color:      ColorOf(n),
		Resolution: ResolutionRouletteMiss,
	}
	if choice.Matches(n) {
		spin.Resolution = ResolutionRouletteHit
		spin.Payout = bet * choice.PayoutMultiplier()
	}
	return spin, nil
}

// Details summarizes the spin for the wager history
func (s *RouletteSpin) Details() map[string]any {
	return map[string]any{
		"choice": s.Choice.String(),
		"number": s.Number,
		"color":  string(s.Color),
	}
}
