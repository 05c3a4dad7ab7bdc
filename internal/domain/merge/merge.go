// Package merge combines observations across sources into one ordered
// time series per game key, collapsing duplicates and computing
// intraday movement snapshots.
//
// All operations are pure over their inputs and idempotent:
// Dedupe(Dedupe(x)) == Dedupe(x).
package merge

import (
	"fmt"
	"sort"
	"time"

	"github.com/boardroomlabs/boardroom/internal/domain/model"
	"github.com/boardroomlabs/boardroom/internal/domain/types"
)

// identityKey is the duplicate-detection tuple. Two observations with
// the same tuple are one reading seen twice, not two signals.
func identityKey(o model.Observation) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s",
		o.League, o.AwayTeam, o.HomeTeam, o.Market, o.Source,
		optStr(o.Line), optStr(o.TicketsPct), optStr(o.HandlePct))
}

func optStr(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%g", *v)
}

// Dedupe drops observations whose identity tuple was already seen,
// preserving input order. Stable and idempotent.
func Dedupe(obs []model.Observation) []model.Observation {
	seen := make(map[string]struct{}, len(obs))
	out := make([]model.Observation, 0, len(obs))
	for _, o := range obs {
		k := identityKey(o)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, o)
	}
	return out
}

// seriesKey groups one market's time series within a game.
type seriesKey struct {
	game   model.GameKey
	market types.Market
}

// KeepLatest keeps the most recent observation per (game, market),
// dropping rows without a parseable timestamp: without ordering there
// is no "latest" to promote. Output is sorted by game key then market
// for deterministic persistence.
func KeepLatest(obs []model.Observation) []model.Observation {
	latest := make(map[seriesKey]model.Observation)
	for _, o := range obs {
		if o.Timestamp.IsZero() {
			continue
		}
		k := seriesKey{game: o.Key(), market: o.Market}
		if cur, ok := latest[k]; !ok || o.Timestamp.After(cur.Timestamp) {
			latest[k] = o
		}
	}
	out := make([]model.Observation, 0, len(latest))
	for _, o := range latest {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.League != b.League {
			return a.League < b.League
		}
		if a.AwayTeam != b.AwayTeam {
			return a.AwayTeam < b.AwayTeam
		}
		if a.HomeTeam != b.HomeTeam {
			return a.HomeTeam < b.HomeTeam
		}
		return a.Market < b.Market
	})
	return out
}

// Snapshots computes the per-game first-vs-last movement within the
// current window. tweetWeights, keyed by canonical team, roll the
// signal feed's per-team weight onto each game. Games whose scheduled
// start is inside the pregame cutoff are excluded when the start time
// is known; unknown starts are allowed through.
func Snapshots(obs []model.Observation, tweetWeights map[string]float64, now time.Time, opts ...Option) []model.Snapshot {
	cfg := newSnapshotConfig(opts...)

	groups := make(map[seriesKey][]model.Observation)
	var order []seriesKey
	for _, o := range obs {
		if !o.EventTime.IsZero() && now.After(o.EventTime.Add(-cfg.pregameCutoff)) {
			continue
		}
		k := seriesKey{game: o.Key(), market: o.Market}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], o)
	}

	snaps := make([]model.Snapshot, 0, len(groups))
	for _, k := range order {
		series := groups[k]
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].Timestamp.Before(series[j].Timestamp)
		})
		first, last := series[0], series[len(series)-1]

		snap := model.Snapshot{
			Key:          k.game,
			Market:       k.market,
			Observations: len(series),
			FirstSeen:    first.Timestamp,
			LastSeen:     last.Timestamp,
		}
		snap.LastTickets, snap.DeltaTickets = lastAndDelta(first.TicketsPct, last.TicketsPct)
		snap.LastHandle, snap.DeltaHandle = lastAndDelta(first.HandlePct, last.HandlePct)
		snap.LastLine, snap.DeltaLine = lastAndDelta(first.Line, last.Line)

		srcSet := make(map[string]struct{})
		for _, o := range series {
			if o.Source != "" {
				srcSet[o.Source] = struct{}{}
			}
		}
		for s := range srcSet {
			snap.Sources = append(snap.Sources, s)
		}
		sort.Strings(snap.Sources)

		if tweetWeights != nil {
			snap.TweetWeight = tweetWeights[k.game.Away] + tweetWeights[k.game.Home]
		}
		snaps = append(snaps, snap)
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		a, b := snaps[i], snaps[j]
		if a.Key.League != b.Key.League {
			return a.Key.League < b.Key.League
		}
		if a.Key.Away != b.Key.Away {
			return a.Key.Away < b.Key.Away
		}
		if a.Key.Home != b.Key.Home {
			return a.Key.Home < b.Key.Home
		}
		return a.Market < b.Market
	})
	return snaps
}

// lastAndDelta returns the last value and the first-to-last movement.
// The delta exists only when both endpoints do.
func lastAndDelta(first, last *float64) (*float64, *float64) {
	if last == nil {
		return nil, nil
	}
	lastCopy := *last
	if first == nil {
		return &lastCopy, nil
	}
	delta := *last - *first
	return &lastCopy, &delta
}

// TweetWeights rolls the signal feed up to weight per mentioned team
// (HIGH=2.0, MED=1.0, LOW=0.25 per mention).
func TweetWeights(signals []model.TweetSignal) map[string]float64 {
	weights := make(map[string]float64)
	for _, sig := range signals {
		w := sig.Strength.Weight()
		for _, team := range sig.Teams {
			weights[team] += w
		}
	}
	return weights
}
