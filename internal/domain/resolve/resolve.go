// Package resolve finds canonical team mentions in free text and picks
// the same-league pair a record is about.
//
// The pipeline is precision-over-recall: a cross-league false pair
// ("Lakers ... Yankees") is worse than dropping ambiguous input, so
// ChoosePair returns nothing rather than guess.
package resolve

import (
	"sort"

	"github.com/boardroomlabs/boardroom/internal/domain/dictionary"
	"github.com/boardroomlabs/boardroom/internal/domain/types"
)

// Hit is one detected team mention.
type Hit struct {
	Team   string
	League types.League
	Pos    int // byte offset of the leftmost mention
}

// Method records how a pair was chosen, for audit output.
type Method string

// Pairing methods.
const (
	MethodHintDominant   Method = "HINT_DOMINANT"
	MethodDominantLeague Method = "DOMINANT_LEAGUE"
)

// Pair is a resolved same-league team pair, in text order.
type Pair struct {
	First  string
	Second string
	League types.League
	Method Method
}

// Resolver detects teams against one immutable alias index.
type Resolver struct {
	idx *dictionary.Index
}

// New creates a Resolver over the given index.
func New(idx *dictionary.Index) *Resolver {
	return &Resolver{idx: idx}
}

// DetectTeams returns every distinct canonical team mentioned in text,
// ordered by leftmost mention. Matching is case-insensitive and
// whole-token; longer aliases claim their span first so "Tampa Bay"
// wins over a bare "Bay". Only the first occurrence per team counts.
//
// The ordering is load-bearing: callers assume the first two distinct
// teams approximate the matchup announced in the text.
func (r *Resolver) DetectTeams(text string) []Hit {
	if text == "" || r.idx.Empty() {
		return nil
	}

	type span struct{ start, end int }
	var claimed []span
	overlaps := func(start, end int) bool {
		for _, s := range claimed {
			if start < s.end && end > s.start {
				return true
			}
		}
		return false
	}

	best := make(map[string]int) // team -> leftmost position
	for _, e := range r.idx.Entries() {
		for _, loc := range e.Pattern.FindAllStringIndex(text, -1) {
			if overlaps(loc[0], loc[1]) {
				continue
			}
			claimed = append(claimed, span{loc[0], loc[1]})
			if pos, seen := best[e.Team]; !seen || loc[0] < pos {
				best[e.Team] = loc[0]
			}
		}
	}

	hits := make([]Hit, 0, len(best))
	for team, pos := range best {
		lg, _ := r.idx.League(team)
		hits = append(hits, Hit{Team: team, League: lg, Pos: pos})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Pos != hits[j].Pos {
			return hits[i].Pos < hits[j].Pos
		}
		return hits[i].Team < hits[j].Team
	})
	return hits
}

// ChoosePair picks the same-league pair the text is about.
//
// Tie-break policy, in order:
//  1. a league hint with at least two distinct hits takes its earliest
//     two (HINT_DOMINANT);
//  2. the league with the most distinct teams wins (DOMINANT_LEAGUE);
//     count ties go to the league whose second team appears earliest;
//  3. fewer than two teams in the winning league means no pair.
func ChoosePair(hits []Hit, hint types.League) (Pair, bool) {
	if len(hits) < 2 {
		return Pair{}, false
	}

	byLeague := make(map[types.League][]Hit)
	for _, h := range hits {
		if !h.League.Known() {
			continue
		}
		byLeague[h.League] = append(byLeague[h.League], h)
	}

	if hint.Known() {
		if lh := byLeague[hint]; len(lh) >= 2 {
			return Pair{
				First:  lh[0].Team,
				Second: lh[1].Team,
				League: hint,
				Method: MethodHintDominant,
			}, true
		}
	}

	type candidate struct {
		league    types.League
		count     int
		secondPos int // position of the second-ranked team, or maxInt
	}
	cands := make([]candidate, 0, len(byLeague))
	for lg, lh := range byLeague {
		c := candidate{league: lg, count: len(lh), secondPos: int(^uint(0) >> 1)}
		if len(lh) >= 2 {
			c.secondPos = lh[1].Pos
		}
		cands = append(cands, c)
	}
	if len(cands) == 0 {
		return Pair{}, false
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].count != cands[j].count {
			return cands[i].count > cands[j].count
		}
		if cands[i].secondPos != cands[j].secondPos {
			return cands[i].secondPos < cands[j].secondPos
		}
		return cands[i].league < cands[j].league
	})

	lh := byLeague[cands[0].league]
	if len(lh) < 2 {
		return Pair{}, false
	}
	return Pair{
		First:  lh[0].Team,
		Second: lh[1].Team,
		League: cands[0].league,
		Method: MethodDominantLeague,
	}, true
}
