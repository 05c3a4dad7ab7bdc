package resolve

import (
	"regexp"
	"strings"
)

// OCR lines interleave team names with lines, odds, and over/under
// markers. These strip the numeric and O/U debris around a label.
var (
	labelJunk     = regexp.MustCompile(`\s*(?:[-+]?\d+(?:\.\d+)?\b|\bO\b|\bU\b)\s*`)
	multiSpace    = regexp.MustCompile(`\s{2,}`)
	trailingAt    = regexp.MustCompile(`(?i)\bat\s*$`)
	heuristicTok  = regexp.MustCompile(`\b([A-Z]{2,5})\b`)
	spreadedToken = regexp.MustCompile(`\b([A-Z]{2,5})\s*[+-]\d+(?:\.\d+)?\b`)
)

// CleanTeamLabel strips OCR debris (lines, odds, O/U markers, a
// trailing "at") from a raw team label. Pure function; safe on empty
// input.
func CleanTeamLabel(s string) string {
	out := labelJunk.ReplaceAllString(s, " ")
	out = multiSpace.ReplaceAllString(out, " ")
	out = strings.TrimSpace(out)
	out = strings.TrimSpace(trailingAt.ReplaceAllString(out, ""))
	return out
}

// FallbackEntity extracts a heuristic entity token from text when the
// dictionary resolves nothing: a 2-5 letter all-caps token, preferring
// one attached to a spread number ("PHI -3.5"). The text is scanned
// as-is so only genuinely capitalized tokens qualify. Tokens in the
// stop set never qualify. Returns "" when no candidate exists.
func FallbackEntity(text string, stop map[string]struct{}) string {
	if m := spreadedToken.FindStringSubmatch(text); m != nil {
		if _, bad := stop[m[1]]; !bad {
			return m[1]
		}
	}
	for _, m := range heuristicTok.FindAllStringSubmatch(text, -1) {
		if _, bad := stop[m[1]]; !bad {
			return m[1]
		}
	}
	return ""
}

// StopEntities is the default set of tokens that must never become
// entities: stopwords, league names, and market words.
func StopEntities() map[string]struct{} {
	words := []string{
		"UNKNOWN", "AND", "FROM", "OPEN", "AT", "IS", "THE", "OF", "TO",
		"FOR", "WITH", "IN", "BY", "ON", "MLB", "NFL", "NBA", "NHL",
		"CFB", "NCAAF", "NCAAB", "TEAM", "TOTAL", "SPREAD", "OVER", "UNDER",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
