package merge

import "time"

const defaultPregameCutoff = 15 * time.Minute

// Option applies a configuration option to Snapshots.
type Option func(*snapshotConfig)

type snapshotConfig struct {
	pregameCutoff time.Duration
}

func newSnapshotConfig(opts ...Option) *snapshotConfig {
	cfg := &snapshotConfig{pregameCutoff: defaultPregameCutoff}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithPregameCutoff sets how long before a known start time a game
// stops accepting snapshot updates.
func WithPregameCutoff(cutoff time.Duration) Option {
	return func(c *snapshotConfig) {
		if cutoff > 0 {
			c.pregameCutoff = cutoff
		}
	}
}
