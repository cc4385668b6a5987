package cmd

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"casino/domain/entities"
	"casino/domain/rng"
)

// PlayerStandValue is the total the simulated blackjack player stands on
const PlayerStandValue = 17

// GameStats tallies simulated rounds of one bet type
type GameStats struct {
	Name    string
	Rounds  int
	Wins    int
	Losses  int
	Pushes  int
	Wagered int64
	Paid    int64
}

// ReturnToPlayer is the share of wagered credits paid back
func (g GameStats) ReturnToPlayer() float64 {
	if g.Wagered == 0 {
		return 0
	}
	return float64(g.Paid) / float64(g.Wagered)
}

func (g *GameStats) add(outcome entities.Outcome, bet, payout int64) {
	g.Rounds++
	g.Wagered += bet
	g.Paid += payout
	switch outcome {
	case entities.OutcomeWin:
		g.Wins++
	case entities.OutcomePush:
		g.Pushes++
	default:
		g.Losses++
	}
}

// SimulationReport holds the results of a Monte Carlo run over the game engines
type SimulationReport struct {
	Games []GameStats
	// Pockets counts how often each roulette pocket came up across all spins
	Pockets [entities.RouletteSlots]int
}

// PocketChiSquared measures how far the wheel strays from uniform
func (r *SimulationReport) PocketChiSquared() float64 {
	total := 0
	for _, n := range r.Pockets {
		total += n
	}
	if total == 0 {
		return 0
	}

	expected := float64(total) / float64(len(r.Pockets))
	chi := 0.0
	for _, n := range r.Pockets {
		chi += math.Pow(float64(n)-expected, 2) / expected
	}
	return chi
}

// Simulate plays rounds of each bet type through the same engines the API uses
func Simulate(rounds int, src rng.Source) (*SimulationReport, error) {
	const bet = 100
	report := &SimulationReport{}

	for _, raw := range []string{"red", "17"} {
		choice, err := entities.ParseRouletteChoice(raw)
		if err != nil {
			return nil, err
		}
		stats := GameStats{Name: "roulette " + raw}
		for range rounds {
			spin, err := entities.SpinRoulette(bet, choice, src)
			if err != nil {
				return nil, err
			}
			report.Pockets[spin.Number]++
			stats.add(spin.Resolution.Outcome(), bet, spin.Payout)
		}
		report.Games = append(report.Games, stats)
	}

	stats := GameStats{Name: fmt.Sprintf("blackjack stand on %d", PlayerStandValue)}
	now := time.Now()
	for range rounds {
		sess, err := entities.NewBlackjackSession(bet, entities.NewShuffledDeck(src), now)
		if err != nil {
			return nil, err
		}
		for sess.PlayerHand.Value() < PlayerStandValue {
			if _, err := sess.Hit(); err != nil {
				return nil, err
			}
		}
		if !sess.IsResolved() {
			if err := sess.Stand(); err != nil {
				return nil, err
			}
		}
		stats.add(sess.Outcome(), bet, sess.Payout())
	}
	report.Games = append(report.Games, stats)

	return report, nil
}

// PrintReport writes a human readable summary of the simulation
func PrintReport(w io.Writer, r *SimulationReport) {
	fmt.Fprintln(w, "=== Casino Odds Simulation ===")
	for _, g := range r.Games {
		fmt.Fprintf(w, "%-24s rounds: %d | wins: %.2f%% | pushes: %.2f%% | RTP: %.4f | house edge: %+.2f%%\n",
			g.Name, g.Rounds,
			percent(g.Wins, g.Rounds), percent(g.Pushes, g.Rounds),
			g.ReturnToPlayer(), (1-g.ReturnToPlayer())*100)
	}

	fmt.Fprintf(w, "\nWheel uniformity (χ² over %d pockets, 36 degrees of freedom): %.2f\n",
		len(r.Pockets), r.PocketChiSquared())

	peak := 0
	for _, n := range r.Pockets {
		if n > peak {
			peak = n
		}
	}
	for pocket, n := range r.Pockets {
		barLength := 0
		if peak > 0 {
			barLength = n * 30 / peak
		}
		fmt.Fprintf(w, "  %2d %-5s %7d %s\n", pocket, entities.ColorOf(pocket), n, strings.Repeat("█", barLength))
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
