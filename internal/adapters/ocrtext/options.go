package ocrtext

import "time"

// Option applies a configuration option to the Parser.
type Option func(*Parser)

// WithAccountRules sets per-account layout/league locks, keyed by the
// handle prefix of the screenshot filename.
func WithAccountRules(rules map[string]AccountRule) Option {
	return func(p *Parser) {
		for handle, rule := range rules {
			p.rules[handle] = rule
		}
	}
}

// WithClock overrides the timestamp source. Tests use this to pin row
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// DefaultAccountRules mirrors the accounts the scraper follows.
func DefaultAccountRules() map[string]AccountRule {
	return map[string]AccountRule{
		"covers":          {Layout: LayoutGrid},
		"betmgm":          {Layout: LayoutMGM},
		"betmgmnews":      {Layout: LayoutMGM},
		"vsinlive":        {Layout: LayoutGrid},
		"actionnetworkhq": {Layout: LayoutGrid},
	}
}
