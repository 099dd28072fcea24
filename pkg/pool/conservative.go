package pool

func init() {
	Register("conservative", func() Preset {
		terms := DefaultTerminalPolicy()
		terms.SpecialWeight = 0
		terms.Integer = true
		terms.Min, terms.Max = 1, 10
		return Preset{
			Name:      "conservative",
			Functions: []string{"add", "sub", "mul", "div", "neg"},
			UnaryProb: 0.1,
			Terminals: terms,
		}
	})
}
