package scoring

import (
	"regexp"
	"strings"

	"github.com/boardroomlabs/boardroom/internal/domain/types"
)

// Grading is keyword-regex based and evaluated top-down: HIGH patterns
// are checked before MED, first match wins. A text graded HIGH can
// never also be MED.
var (
	// HIGH: explicit betting-relevant cues.
	highPattern = regexp.MustCompile(`(?i)` + strings.Join([]string{
		`\bmost\s+bet\b`,
		`\bmost\s+wagered\b`,
		`\btop\s*(?:\d+|five|ten)\b`,
		`\bhandle\b`,
		`\btickets?\b`,
		`\bconsensus\b`,
		`\bpublic\b`,
		`\bsteam(?:ed)?\b`,
		`\bmovement\b`,
		`\bline\s*move(?:d)?\b`,
		`\d{1,3}\s*%`,
	}, "|"))

	// MED: softer narrative, still betting-ish.
	medPattern = regexp.MustCompile(`(?i)` + strings.Join([]string{
		`\bsharp\b`,
		`\bpros\b`,
		`\bpublic\s+side\b`,
		`\bsquare\b`,
		`\bfade\b`,
		`\bheavy\b`,
		`\bpopular\b`,
	}, "|"))
)

// Grade assigns a keyword-strength tier to a text. Absence of any cue
// is LOW, not an error: LOW still carries a small weight.
func Grade(text string) types.Strength {
	if highPattern.MatchString(text) {
		return types.StrengthHigh
	}
	if medPattern.MatchString(text) {
		return types.StrengthMed
	}
	return types.StrengthLow
}
