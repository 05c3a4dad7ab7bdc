// Package scoring turns merged observations into gated, ranked entity
// scores: keyword-strength weighting, exponential time decay, per-team
// aggregation, and star-rating gates.
package scoring

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/boardroomlabs/boardroom/internal/domain/model"
	"github.com/boardroomlabs/boardroom/internal/domain/types"
)

// Default scoring configuration constants.
const (
	defaultLookback        = 72 * time.Hour
	defaultHalfLife        = 24 * time.Hour
	defaultMinSignals      = 2
	defaultStar5Min        = 6.0
	defaultStar4Min        = 3.5
	defaultSampleRows      = 3
	defaultSampleLimit     = 400
	unknownTimestampWeight = 0.5
)

// Engine aggregates observation weight per entity and applies the
// promotion gates. Construct once per run.
type Engine struct {
	lookback    time.Duration
	halfLife    time.Duration
	minSignals  int
	star5Min    float64
	star4Min    float64
	sampleRows  int
	sampleLimit int
	stop        map[string]struct{}
}

// New creates an Engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{
		lookback:    defaultLookback,
		halfLife:    defaultHalfLife,
		minSignals:  defaultMinSignals,
		star5Min:    defaultStar5Min,
		star4Min:    defaultStar4Min,
		sampleRows:  defaultSampleRows,
		sampleLimit: defaultSampleLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DecayWeight is the exponential time-decay weight of an observation.
// Unknown timestamps get a fixed reduced weight: genuine uncertainty,
// not absence of signal. Strictly decreasing in age for known times.
func (e *Engine) DecayWeight(ts, now time.Time) float64 {
	if ts.IsZero() {
		return unknownTimestampWeight
	}
	ageHours := now.Sub(ts).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return math.Exp(-ageHours / e.halfLife.Hours())
}

// Input is one scorable signal: the entities it mentions, its source
// text, and when it was seen. Strength may be pre-graded; when empty
// the text is graded on the fly.
type Input struct {
	Entities  []string
	Text      string
	Strength  types.Strength
	Timestamp time.Time // zero means unknown
}

// FromObservation maps an observation to a scoring input; both teams
// receive the observation's weight.
func FromObservation(o model.Observation) Input {
	return Input{
		Entities:  []string{o.AwayTeam, o.HomeTeam},
		Text:      o.RawText,
		Timestamp: o.Timestamp,
	}
}

// FromTweetSignal maps a graded signal to a scoring input.
func FromTweetSignal(sig model.TweetSignal) Input {
	return Input{
		Entities:  sig.Teams,
		Text:      sig.Text,
		Strength:  sig.Strength,
		Timestamp: sig.Timestamp,
	}
}

// accumulator collects one entity's running aggregate.
type accumulator struct {
	score    float64
	signals  int
	w24      int
	w6       int
	decayed  float64
	lastSeen time.Time
	samples  []string
}

// Score aggregates keyword-weight x decay-weight per entity across all
// inputs inside the lookback window. Every mentioned entity receives
// the input's weight; stop-listed entities never accumulate. Output is
// ungated and unordered; apply Rank next.
func (e *Engine) Score(ctx context.Context, inputs []Input, now time.Time) ([]model.EntityScore, error) {
	acc := make(map[string]*accumulator)

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !in.Timestamp.IsZero() && now.Sub(in.Timestamp) > e.lookback {
			continue
		}

		strength := in.Strength
		if strength == "" {
			strength = Grade(in.Text)
		}
		decay := e.DecayWeight(in.Timestamp, now)
		w := strength.Weight() * decay

		for _, entity := range in.Entities {
			if entity == "" {
				continue
			}
			if _, stopped := e.stop[strings.ToUpper(entity)]; stopped {
				continue
			}
			a, ok := acc[entity]
			if !ok {
				a = &accumulator{}
				acc[entity] = a
			}
			a.score += w
			a.signals++
			a.decayed += decay
			if !in.Timestamp.IsZero() {
				age := now.Sub(in.Timestamp)
				if age <= 24*time.Hour {
					a.w24++
				}
				if age <= 6*time.Hour {
					a.w6++
				}
				if in.Timestamp.After(a.lastSeen) {
					a.lastSeen = in.Timestamp
				}
			}
			if in.Text != "" && len(a.samples) < e.sampleRows {
				a.samples = append(a.samples, in.Text)
			}
		}
	}

	scores := make([]model.EntityScore, 0, len(acc))
	for entity, a := range acc {
		scores = append(scores, model.EntityScore{
			Entity:     entity,
			Score:      round2(a.score),
			Signals:    a.signals,
			W24:        a.w24,
			W6:         a.w6,
			Decayed:    round2(a.decayed),
			LastSeen:   a.lastSeen,
			SampleText: truncate(strings.Join(a.samples, " | "), e.sampleLimit),
		})
	}
	return scores, nil
}

// Rank applies the promotion gates, assigns stars, and orders the
// surviving entities. Entities below both star thresholds, or with too
// few signals, are excluded entirely: absence from the report, not a
// zero score, communicates "no confident signal".
func (e *Engine) Rank(scores []model.EntityScore) []model.EntityScore {
	floor := math.Min(e.star4Min, e.star5Min)

	out := make([]model.EntityScore, 0, len(scores))
	for _, s := range scores {
		if s.Signals < e.minSignals {
			continue
		}
		total := s.Score + s.CLVBoost
		if total < floor {
			continue
		}
		switch {
		case total >= e.star5Min:
			s.Stars = 5
		case total >= e.star4Min:
			s.Stars = 4
		default:
			continue
		}
		s.Score = round2(total)
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.W6 != b.W6 {
			return a.W6 > b.W6
		}
		if a.W24 != b.W24 {
			return a.W24 > b.W24
		}
		if a.Signals != b.Signals {
			return a.Signals > b.Signals
		}
		return a.Entity < b.Entity
	})
	return out
}

// CLVBoost returns the conservative closing-line-value bonus for an
// entity. The bonus may apply only when the movement direction relative
// to the entity's side is unambiguous. The observation schema carries
// no side column, so direction cannot be attributed to either team and
// the boost stays 0 rather than guessing a sign.
func CLVBoost(entity string, snaps []model.Snapshot) float64 {
	for _, s := range snaps {
		if s.Key.Away != entity && s.Key.Home != entity {
			continue
		}
		if s.DeltaLine == nil || *s.DeltaLine == 0 {
			continue
		}
		// Line moved, but without a side there is no favorable
		// direction to credit.
	}
	return 0
}

// truncate cuts s to at most limit bytes, backing up to a rune
// boundary so the sample never carries a split rune.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
