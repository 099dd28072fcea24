package pool

// moderate adds powers, roots and the basic transcendental functions.
func init() {
	Register("moderate", func() Preset {
		return Preset{
			Name: "moderate",
			Functions: []string{
				"add", "sub", "mul", "div", "pow",
				"neg", "abs", "sqrt", "exp", "sin", "cos",
			},
			UnaryProb: 0.3,
			Terminals: DefaultTerminalPolicy(),
		}
	})
}
