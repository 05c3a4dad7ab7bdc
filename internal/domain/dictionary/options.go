package dictionary

// Option applies a configuration option to Load.
type Option func(*loadConfig)

type loadConfig struct {
	seedAliases     bool
	extraShorthands map[string]string
}

func newLoadConfig(opts ...Option) *loadConfig {
	cfg := &loadConfig{seedAliases: true}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithSeedAliases controls derivation of city/nickname aliases from the
// canonical "City Nickname" form. Enabled by default.
func WithSeedAliases(enabled bool) Option {
	return func(c *loadConfig) {
		c.seedAliases = enabled
	}
}

// WithShorthands merges additional alias -> canonical overrides after
// file load. Like the built-in table, they apply only when the
// canonical team exists and are never overwritten afterwards.
func WithShorthands(shorthands map[string]string) Option {
	return func(c *loadConfig) {
		if c.extraShorthands == nil {
			c.extraShorthands = make(map[string]string, len(shorthands))
		}
		for a, t := range shorthands {
			c.extraShorthands[a] = t
		}
	}
}
