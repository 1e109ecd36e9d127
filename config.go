package fedt4t

import (
	"fmt"
	"os"
	"time"

	"github.com/cairo-thws/fedt4t/game"
	"github.com/pelletier/go-toml"
)

// Config is the experiment file: everything that defines a run, as opposed to
// process wiring which comes from the environment.
type Config struct {
	Experiment ExperimentConfig `toml:"experiment"`
	Payoff     PayoffConfig     `toml:"payoff"`
	Agents     []AgentConfig    `toml:"agents"`
}

type ExperimentConfig struct {
	Rounds            int     `toml:"rounds"`
	Seed              int64   `toml:"seed"`
	MatchLength       int     `toml:"match_length"`
	Pairing           string  `toml:"pairing"`
	FractionFit       float64 `toml:"fraction_fit"`
	FractionEvaluate  float64 `toml:"fraction_evaluate"`
	Transform         string  `toml:"transform"`
	ScoreWeightAlpha  float64 `toml:"score_weight_alpha"`
	Quorum            string  `toml:"quorum"`
	MinQuorumFraction float64 `toml:"min_quorum_fraction"`
	MaxRoundFailures  int     `toml:"max_round_failures"`
	RoundTimeout      string  `toml:"round_timeout"`
}

type PayoffConfig struct {
	Temptation float64 `toml:"temptation"`
	Reward     float64 `toml:"reward"`
	Punishment float64 `toml:"punishment"`
	Sucker     float64 `toml:"sucker"`
}

type AgentConfig struct {
	ID       int    `toml:"id"`
	Name     string `toml:"name"`
	Strategy string `toml:"strategy"`
}

// DefaultConfig mirrors the canonical experiment: twenty rounds, seed 42,
// half the roster trains each round, a tenth evaluates.
func DefaultConfig() Config {
	return Config{
		Experiment: ExperimentConfig{
			Rounds:            20,
			Seed:              42,
			MatchLength:       5,
			Pairing:           "round-robin",
			FractionFit:       0.5,
			FractionEvaluate:  0.1,
			Transform:         "score",
			ScoreWeightAlpha:  0,
			Quorum:            "warn",
			MinQuorumFraction: 0.5,
			MaxRoundFailures:  3,
			RoundTimeout:      "60s",
		},
		Payoff: PayoffConfig{
			Temptation: 5,
			Reward:     3,
			Punishment: 1,
			Sucker:     0,
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := tree.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SaveConfig writes the experiment file, used by the interactive config
// initializer.
func SaveConfig(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

func (c *Config) Validate() error {
	e := c.Experiment
	if e.Rounds < 1 {
		return fmt.Errorf("rounds must be positive, got %d", e.Rounds)
	}
	if e.MatchLength < 1 {
		return fmt.Errorf("match_length must be positive, got %d", e.MatchLength)
	}
	if e.FractionFit <= 0 || e.FractionFit > 1 {
		return fmt.Errorf("fraction_fit must be in (0, 1], got %f", e.FractionFit)
	}
	if e.FractionEvaluate <= 0 || e.FractionEvaluate > 1 {
		return fmt.Errorf("fraction_evaluate must be in (0, 1], got %f", e.FractionEvaluate)
	}
	if e.ScoreWeightAlpha < 0 || e.ScoreWeightAlpha > 1 {
		return fmt.Errorf("score_weight_alpha must be in [0, 1], got %f", e.ScoreWeightAlpha)
	}
	if e.MinQuorumFraction < 0 || e.MinQuorumFraction > 1 {
		return fmt.Errorf("min_quorum_fraction must be in [0, 1], got %f", e.MinQuorumFraction)
	}
	if _, err := time.ParseDuration(e.RoundTimeout); err != nil {
		return fmt.Errorf("invalid round_timeout: %w", err)
	}

	matrix := c.Matrix()
	if err := matrix.Validate(); err != nil {
		return err
	}

	seen := make(map[int]bool, len(c.Agents))
	for _, a := range c.Agents {
		if seen[a.ID] {
			return fmt.Errorf("duplicate agent id %d", a.ID)
		}
		seen[a.ID] = true
		if _, err := game.StrategyByName(a.Strategy); err != nil {
			return fmt.Errorf("agent %d: %w", a.ID, err)
		}
	}

	return nil
}

// Matrix converts the payoff section into the engine's matrix type.
func (c *Config) Matrix() game.PayoffMatrix {
	return game.PayoffMatrix{
		T: c.Payoff.Temptation,
		R: c.Payoff.Reward,
		P: c.Payoff.Punishment,
		S: c.Payoff.Sucker,
	}
}

// Timeout parses the configured round timeout; Validate has already checked
// its syntax.
func (c *Config) Timeout() time.Duration {
	d, _ := time.ParseDuration(c.Experiment.RoundTimeout)

	return d
}
