package pool

import "github.com/wildfunctions/symgp/pkg/funcs"

// kitchensink draws from every registered function, including any custom
// operator registered before the preset is fetched.
func init() {
	Register("kitchensink", func() Preset {
		terms := DefaultTerminalPolicy()
		terms.Specials = []string{"pi", "e", "phi"}
		terms.Distribution = Normal
		terms.Mean, terms.Std = 0, 2
		return Preset{
			Name:      "kitchensink",
			Functions: funcs.Names(),
			UnaryProb: 0.4,
			Terminals: terms,
		}
	})
}
