package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorOf(t *testing.T) {
	t.Parallel()

	tests := map[int]Color{
		0: ColorGreen, 1: ColorRed, 2: ColorBlack, 10: ColorBlack, 11: ColorBlack,
		12: ColorRed, 19: ColorRed, 28: ColorBlack, 29: ColorBlack, 36: ColorRed,
	}
	for n, want := range tests {
		assert.Equal(t, want, ColorOf(n), "pocket %d", n)
	}

	counts := map[Color]int{}
	for n := range RouletteSlots {
		counts[ColorOf(n)]++
	}
	assert.Equal(t, map[Color]int{ColorRed: 18, ColorBlack: 18, ColorGreen: 1}, counts)
}

func TestParseRouletteChoice(t *testing.T) {
	t.Parallel()

	valid := map[string]RouletteChoice{
		"red":   {Kind: ChoiceColor, Color: ColorRed},
		"Black": {Kind: ChoiceColor, Color: ColorBlack},
		" 17 ":  {Kind: ChoiceNumber, Number: 17},
		"0":     {Kind: ChoiceNumber, Number: 0},
		"36":    {Kind: ChoiceNumber, Number: 36},
	}
	for in, want := range valid {
		got, err := ParseRouletteChoice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "green", "even", "37", "-1", "1.5", "+7", "007", "-0", "00", "1 7"} {
		_, err := ParseRouletteChoice(in)
		assert.ErrorIs(t, err, ErrInvalidChoice, in)
	}
}

func TestSpinRoulette(t *testing.T) {
	t.Parallel()

	red := RouletteChoice{Kind: ChoiceColor, Color: ColorRed}
	black := RouletteChoice{Kind: ChoiceColor, Color: ColorBlack}
	seventeen := RouletteChoice{Kind: ChoiceNumber, Number: 17}
	zero := RouletteChoice{Kind: ChoiceNumber, Number: 0}

	tests := []struct {
		name       string
		choice     RouletteChoice
		pocket     int
		wantResult Resolution
		wantPayout int64
	}{
		{"red hits", red, 1, ResolutionRouletteHit, 20},
		{"red misses on black", red, 2, ResolutionRouletteMiss, 0},
		{"black misses on zero", black, 0, ResolutionRouletteMiss, 0},
		{"number hits", seventeen, 17, ResolutionRouletteHit, 360},
		{"number misses", seventeen, 18, ResolutionRouletteMiss, 0},
		{"zero pays as number", zero, 0, ResolutionRouletteHit, 360},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			spin, err := SpinRoulette(10, tt.choice, fixedSource{n: tt.pocket})
			require.NoError(t, err)
			assert.Equal(t, tt.pocket, spin.Number)
			assert.Equal(t, ColorOf(tt.pocket), spin.Color)
			assert.Equal(t, tt.wantResult, spin.Resolution)
			assert.Equal(t, tt.wantPayout, spin.Payout)
		})
	}
}

func TestSpinRoulette_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	_, err := SpinRoulette(0, RouletteChoice{Kind: ChoiceColor, Color: ColorRed}, fixedSource{})
	assert.ErrorIs(t, err, ErrInvalidBet)

	_, err = SpinRoulette(10, RouletteChoice{}, fixedSource{})
	assert.ErrorIs(t, err, ErrInvalidChoice)
}

func TestRouletteChoice_ColorNeverMatchesZero(t *testing.T) {
	t.Parallel()

	for _, c := range []Color{ColorRed, ColorBlack} {
		choice := RouletteChoice{Kind: ChoiceColor, Color: c}
		assert.False(t, choice.Matches(0))
		for n := 1; n < RouletteSlots; n++ {
			assert.Equal(t, ColorOf(n) == c, choice.Matches(n), "pocket %d", n)
		}
	}
}
