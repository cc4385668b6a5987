package config

import (
	"fmt"
	"os"

	"casino/domain/entities"

	"gopkg.in/yaml.v3"
)

// GameTables holds the bet limits for every game, read from a YAML file such as
//
//	blackjack:
//	  min_bet: 1
//	  max_bet: 10000
//	roulette:
//	  min_bet: 1
//	  max_bet: 5000
type GameTables struct {
	Blackjack TableConfig `yaml:"blackjack"`
	Roulette  TableConfig `yaml:"roulette"`
}

// TableConfig is the YAML shape of one table's limits
type TableConfig struct {
	MinBet int64 `yaml:"min_bet"`
	MaxBet int64 `yaml:"max_bet"`
}

// DefaultGameTables returns the limits used when no table file is present
func DefaultGameTables() GameTables {
	return GameTables{
		Blackjack: TableConfig{MinBet: 1},
		Roulette:  TableConfig{MinBet: 1},
	}
}

// LoadGameTables reads table limits from path. A missing file yields the defaults.
func LoadGameTables(path string) (GameTables, error) {
	tables := DefaultGameTables()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return tables, nil
	}
	if err != nil {
		return tables, fmt.Errorf("failed to read game tables %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &tables); err != nil {
		return tables, fmt.Errorf("failed to parse game tables %s: %w", path, err)
	}
	if err := tables.validate(); err != nil {
		return tables, fmt.Errorf("invalid game tables %s: %w", path, err)
	}
	return tables, nil
}

// For returns the limits for a game
func (g GameTables) For(game entities.GameKind) entities.TableLimits {
	var tc TableConfig
	switch game {
	case entities.GameBlackjack:
		tc = g.Blackjack
	case entities.GameRoulette:
		tc = g.Roulette
	}
	return entities.TableLimits{MinBet: tc.MinBet, MaxBet: tc.MaxBet}
}

func (g GameTables) validate() error {
	for name, tc := range map[string]TableConfig{"blackjack": g.Blackjack, "roulette": g.Roulette} {
		if tc.MinBet < 1 {
			return fmt.Errorf("%s: min_bet must be at least 1", name)
		}
		if tc.MaxBet != 0 && tc.MaxBet < tc.MinBet {
			return fmt.Errorf("%s: max_bet %d is below min_bet %d", name, tc.MaxBet, tc.MinBet)
		}
	}
	return nil
}
