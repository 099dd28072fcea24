package pool

import (
	"fmt"
	"sort"

	"github.com/wildfunctions/symgp/pkg/expr"
	"github.com/wildfunctions/symgp/pkg/funcs"
)

// Preset is a named function set with matching growth settings.
type Preset struct {
	Name      string
	Functions []string
	UnaryProb float64
	Terminals TerminalPolicy
}

// Build resolves the preset's functions and returns a pool over variables.
func (p Preset) Build(variables []string) (*Pool, error) {
	ops, err := p.Operators()
	if err != nil {
		return nil, err
	}
	return New(ops, variables, p.UnaryProb, p.Terminals)
}

// Operators resolves the preset's function names in the registry.
func (p Preset) Operators() ([]*expr.Operator, error) {
	ops, err := funcs.Lookup(p.Functions...)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", p.Name, err)
	}
	return ops, nil
}

var registry = map[string]func() Preset{}

// Register adds a preset constructor to the registry.
func Register(name string, constructor func() Preset) {
	registry[name] = constructor
}

// Get returns a preset by name.
func Get(name string) (Preset, error) {
	ctor, ok := registry[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: unknown pool: %s", expr.ErrConfig, name)
	}
	return ctor(), nil
}

// Names returns all registered preset names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
