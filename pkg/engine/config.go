package engine

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/wildfunctions/symgp/pkg/expr"
	"github.com/wildfunctions/symgp/pkg/genetic"
	"github.com/wildfunctions/symgp/pkg/pool"
)

// DefaultSeed is used when no seed is configured.
const DefaultSeed = 12345

// Config holds all parameters of a Model.
type Config struct {
	MaxDepth       int      `toml:"max_depth" json:"max_depth"`
	PopulationSize int      `toml:"population" json:"population"`
	Functions      []string `toml:"functions" json:"functions"`
	Variables      []string `toml:"variables" json:"variables"`
	Seed           int64    `toml:"seed" json:"seed"`

	// UnaryProb is the chance that grow draws a unary operator.
	UnaryProb       float64             `toml:"unary_prob" json:"unary_prob"`
	Terminals       pool.TerminalPolicy `toml:"terminals" json:"terminals"`
	MutationWeights map[string]float64  `toml:"mutation_weights" json:"mutation_weights"`

	Workers   int `toml:"workers" json:"workers"`
	CacheSize int `toml:"cache_size" json:"cache_size"` // 0 disables the MSE cache

	// Operators overrides Functions with operators outside the registry.
	Operators    []*expr.Operator       `toml:"-" json:"-"`
	Logger       *slog.Logger           `toml:"-" json:"-"`
	OnGeneration func(GenerationReport) `toml:"-" json:"-"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxDepth:        4,
		PopulationSize:  200,
		Functions:       []string{"add", "sub", "mul", "div"},
		Variables:       []string{"x"},
		Seed:            DefaultSeed,
		UnaryProb:       0.3,
		Terminals:       pool.DefaultTerminalPolicy(),
		MutationWeights: genetic.DefaultWeights(),
		Workers:         runtime.NumCPU(),
		CacheSize:       4096,
	}
}

// Validate reports the first malformed parameter.
func (c Config) Validate() error {
	switch {
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d is negative", expr.ErrConfig, c.MaxDepth)
	case c.PopulationSize < 1:
		return fmt.Errorf("%w: population size %d, need at least 1", expr.ErrConfig, c.PopulationSize)
	case len(c.Variables) == 0:
		return fmt.Errorf("%w: no input variables", expr.ErrConfig)
	case len(c.Functions) == 0 && len(c.Operators) == 0:
		return fmt.Errorf("%w: empty function set", expr.ErrConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: negative worker count %d", expr.ErrConfig, c.Workers)
	case c.CacheSize < 0:
		return fmt.Errorf("%w: negative cache size %d", expr.ErrConfig, c.CacheSize)
	}
	seen := make(map[string]bool, len(c.Variables))
	for _, v := range c.Variables {
		if err := pool.CheckVariable(v); err != nil {
			return err
		}
		if seen[v] {
			return fmt.Errorf("%w: variable name %q is repeated", expr.ErrConfig, v)
		}
		seen[v] = true
	}
	return nil
}
