// Package dictionary loads per-league team alias tables and builds the
// immutable AliasIndex used for entity resolution.
//
// Dictionary files are JSON documents in one of three shapes, detected
// automatically:
//
//	(a) flat map:   {"Kansas City Chiefs": ["KC", "CHIEFS", ...], ...}
//	(b) record list: [{"abr": "KC", "city": "Kansas City", "name": "Chiefs"}, ...]
//	(c) nested map: {"AFC West": {"Kansas City Chiefs": {"abbrev": "KC"}, ...}, ...}
package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/boardroomlabs/boardroom/internal/domain/types"
)

// Source names one dictionary file and the league its teams play in.
type Source struct {
	League types.League
	Path   string
}

// Entry is one compiled alias matcher. Entries are ordered longest
// alias first so multi-word aliases win over their substrings.
type Entry struct {
	Alias   string // normalized (upper, single-spaced)
	Pattern *regexp.Regexp
	Team    string
}

// Index is the immutable alias index built once per run. The zero-value
// index resolves nothing; callers fall back to heuristics or drop.
type Index struct {
	entries []Entry
	alias   map[string]string       // normalized alias -> canonical team
	league  map[string]types.League // canonical team -> league
	pinned  map[string]struct{}     // aliases set by shorthand overrides
}

// commonShorthands are betting-usage abbreviations merged in after the
// dictionary files load. They win over file-provided aliases and are
// never overwritten by later loads.
var commonShorthands = map[string]string{
	"DAL":       "Dallas Cowboys",
	"BUF":       "Buffalo Bills",
	"KC":        "Kansas City Chiefs",
	"TB":        "Tampa Bay Buccaneers",
	"RAYS":      "Tampa Bay Rays",
	"LIGHTNING": "Tampa Bay Lightning",
	"RANGERS":   "Texas Rangers",
	"KINGS":     "Los Angeles Kings",
	"LAKERS":    "Los Angeles Lakers",
	"CLIPPERS":  "LA Clippers",
	"RAMS":      "Los Angeles Rams",
	"CHARGERS":  "Los Angeles Chargers",
	"SEAHAWKS":  "Seattle Seahawks",
	"MARINERS":  "Seattle Mariners",
	"WARRIORS":  "Golden State Warriors",
	"ORIOLES":   "Baltimore Orioles",
	"ASTROS":    "Houston Astros",
	"PIRATES":   "Pittsburgh Pirates",
}

// Load reads all sources and builds the index. A missing or unreadable
// file is skipped; it is normal for a deployment to carry only a subset
// of league dictionaries. Returns an error only on malformed JSON in a
// file that does exist.
func Load(ctx context.Context, sources []Source, opts ...Option) (*Index, error) {
	cfg := newLoadConfig(opts...)

	idx := &Index{
		alias:  make(map[string]string),
		league: make(map[string]types.League),
		pinned: make(map[string]struct{}),
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(src.Path)
		if err != nil {
			continue // non-fatal: skip this league
		}
		teams, err := decodeShapes(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedDictionary, src.Path, err)
		}
		for team, aliases := range teams {
			idx.league[team] = src.League
			if cfg.seedAliases {
				aliases = append(aliases, seedAliases(team)...)
			}
			aliases = append(aliases, team)
			for _, a := range aliases {
				idx.addAlias(a, team, false)
			}
		}
	}

	for a, team := range commonShorthands {
		if _, known := idx.league[team]; known {
			idx.addAlias(a, team, true)
		}
	}
	for a, team := range cfg.extraShorthands {
		if _, known := idx.league[team]; known {
			idx.addAlias(a, team, true)
		}
	}

	idx.compile()
	return idx, nil
}

// addAlias records alias -> team. Plain aliases are first-write-wins;
// pinned (shorthand) aliases replace plain ones but never each other.
func (x *Index) addAlias(alias, team string, pin bool) {
	norm := NormalizeAlias(alias)
	if norm == "" {
		return
	}
	if _, isPinned := x.pinned[norm]; isPinned {
		return
	}
	if _, exists := x.alias[norm]; exists && !pin {
		return
	}
	x.alias[norm] = team
	if pin {
		x.pinned[norm] = struct{}{}
	}
}

// compile builds the ordered matcher list, longest alias first. Word
// boundaries keep "CAR" from matching inside "CARDINALS".
func (x *Index) compile() {
	aliases := make([]string, 0, len(x.alias))
	for a := range x.alias {
		aliases = append(aliases, a)
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})

	x.entries = make([]Entry, 0, len(aliases))
	for _, a := range aliases {
		rx, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(a) + `\b`)
		if err != nil {
			continue
		}
		x.entries = append(x.entries, Entry{Alias: a, Pattern: rx, Team: x.alias[a]})
	}
}

// Entries returns the compiled matchers, longest alias first.
func (x *Index) Entries() []Entry { return x.entries }

// Empty reports whether the index holds no aliases at all.
func (x *Index) Empty() bool { return len(x.entries) == 0 }

// Resolve maps an alias to its canonical team. Matching is
// case-insensitive and whitespace-normalized.
func (x *Index) Resolve(alias string) (string, bool) {
	team, ok := x.alias[NormalizeAlias(alias)]
	return team, ok
}

// League returns the league of a canonical team.
func (x *Index) League(team string) (types.League, bool) {
	lg, ok := x.league[team]
	return lg, ok
}

// Teams returns the number of canonical teams in the index.
func (x *Index) Teams() int { return len(x.league) }

// NormalizeAlias uppercases and single-spaces an alias string.
func NormalizeAlias(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// seedAliases derives the usual free aliases from a "City Nickname"
// canonical name: the full name, the city, and the nickname.
func seedAliases(team string) []string {
	parts := strings.Fields(team)
	if len(parts) < 2 {
		return nil
	}
	return []string{strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]}
}

// decodeShapes detects the file shape and returns canonical -> aliases.
func decodeShapes(raw []byte) (map[string][]string, error) {
	// Shape (a): flat map of canonical -> alias list.
	var flat map[string][]string
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}

	// Shape (b): list of records with abbrev/city/name style fields.
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err == nil {
		out := make(map[string][]string, len(records))
		for _, rec := range records {
			abr := firstString(rec, "abr", "abbrev", "abbreviation")
			city := firstString(rec, "city", "team", "school")
			name := firstString(rec, "name", "mascot")
			canon := strings.TrimSpace(city + " " + name)
			if canon == "" {
				canon = abr
			}
			if canon == "" {
				continue
			}
			var aliases []string
			for _, a := range []string{abr, city, name} {
				if a != "" {
					aliases = append(aliases, a)
				}
			}
			out[canon] = append(out[canon], aliases...)
		}
		return out, nil
	}

	// Shape (c): nested map of group -> team -> metadata.
	var nested map[string]map[string]map[string]any
	if err := json.Unmarshal(raw, &nested); err == nil {
		out := make(map[string][]string)
		for _, teams := range nested {
			for team, meta := range teams {
				abr := firstString(meta, "abbrev", "abr", "abbreviation")
				if abr != "" {
					out[team] = append(out[team], abr)
				} else {
					out[team] = append(out[team], team)
				}
			}
		}
		return out, nil
	}

	return nil, fmt.Errorf("unrecognized dictionary shape")
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
