package normalize

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithMaxAbsLine caps the absolute line value; wilder values are OCR
// noise and reject the row.
func WithMaxAbsLine(maxAbs float64) Option {
	return func(n *Normalizer) {
		if maxAbs > 0 {
			n.maxAbsLine = maxAbs
		}
	}
}

// WithTeamLengthBounds sets the accepted team label length range.
func WithTeamLengthBounds(minLen, maxLen int) Option {
	return func(n *Normalizer) {
		if minLen > 0 && maxLen > minLen {
			n.minTeamLen = minLen
			n.maxTeamLen = maxLen
		}
	}
}

// WithStrictResolve rejects rows whose team labels the dictionary
// cannot resolve, instead of keeping the cleaned raw label as a
// fallback entity.
func WithStrictResolve(strict bool) Option {
	return func(n *Normalizer) {
		n.strictResolve = strict
	}
}
