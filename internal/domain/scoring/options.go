package scoring

import (
	"strings"
	"time"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLookback sets the aggregation window.
func WithLookback(window time.Duration) Option {
	return func(e *Engine) {
		if window > 0 {
			e.lookback = window
		}
	}
}

// WithHalfLife sets the exponential decay half-life.
func WithHalfLife(halfLife time.Duration) Option {
	return func(e *Engine) {
		if halfLife > 0 {
			e.halfLife = halfLife
		}
	}
}

// WithMinSignals sets the minimum signal count gate for promotion.
func WithMinSignals(minSignals int) Option {
	return func(e *Engine) {
		if minSignals > 0 {
			e.minSignals = minSignals
		}
	}
}

// WithStarThresholds sets the 4-star and 5-star score gates.
func WithStarThresholds(star4, star5 float64) Option {
	return func(e *Engine) {
		if star4 > 0 && star5 > star4 {
			e.star4Min = star4
			e.star5Min = star5
		}
	}
}

// WithSampleLimit bounds the per-entity sample text: rows kept and
// total character cap.
func WithSampleLimit(rows, chars int) Option {
	return func(e *Engine) {
		if rows > 0 {
			e.sampleRows = rows
		}
		if chars > 0 {
			e.sampleLimit = chars
		}
	}
}

// WithStopEntities sets tokens that never accumulate score.
func WithStopEntities(stop map[string]struct{}) Option {
	return func(e *Engine) {
		e.stop = make(map[string]struct{}, len(stop))
		for w := range stop {
			e.stop[strings.ToUpper(w)] = struct{}{}
		}
	}
}
