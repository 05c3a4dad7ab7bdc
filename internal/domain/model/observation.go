// Package model contains domain models passed between pipeline stages.
package model

import (
	"fmt"
	"time"

	"github.com/boardroomlabs/boardroom/internal/domain/types"
)

// Observation is one normalized public-money reading for a matchup.
// Every field is always populated after normalization; optional numeric
// columns are nil pointers rather than zero values so that "absent" and
// "zero" stay distinguishable downstream.
type Observation struct {
	ID         string       // audit id, assigned at ingestion
	Timestamp  time.Time    // zero means unknown
	League     types.League // never LeagueUnknown after validation
	AwayTeam   string       // canonical team, or raw fallback label
	HomeTeam   string
	Market     types.Market
	TicketsPct *float64 // 0..100 when present
	HandlePct  *float64 // 0..100 when present
	Line       *float64
	Source     string
	RawText    string    // original source text, empty for grid rows
	EventTime  time.Time // scheduled start if known, zero otherwise
}

// Key derives the order-sensitive matchup identity used to group
// observations into one time series.
func (o Observation) Key() GameKey {
	return GameKey{League: o.League, Away: o.AwayTeam, Home: o.HomeTeam}
}

// GameKey identifies one matchup's time series. Away/home roles are
// meaningful; the key is not symmetric.
type GameKey struct {
	League types.League
	Away   string
	Home   string
}

// String renders the key in the log-friendly "NFL::Bills @ Chiefs" form.
func (k GameKey) String() string {
	return fmt.Sprintf("%s::%s @ %s", k.League, k.Away, k.Home)
}

// TweetSignal is one graded tweet row from the signal feed.
type TweetSignal struct {
	Timestamp time.Time // zero means unknown
	Handle    string
	Teams     []string // canonical teams mentioned, left-to-right
	Text      string
	Strength  types.Strength
}

// EntityScore aggregates all signal weight attributed to one canonical
// team (or unresolved fallback token) within the lookback window. It is
// built during scoring, finalized by gating, and discarded after one
// report run.
type EntityScore struct {
	Entity     string
	Score      float64
	Signals    int
	W24        int // signals inside the trailing 24h
	W6         int // signals inside the trailing 6h
	Decayed    float64
	CLVBoost   float64
	LastSeen   time.Time // zero means no parseable timestamps
	SampleText string
	Stars      int // 5, 4, or 0 (excluded)
}

// Snapshot is a per-game first-vs-last rollup over the current
// processing window, used by the report layer to show movement.
type Snapshot struct {
	Key          GameKey
	Market       types.Market
	LastTickets  *float64
	DeltaTickets *float64
	LastHandle   *float64
	DeltaHandle  *float64
	LastLine     *float64
	DeltaLine    *float64
	Observations int
	Sources      []string // sorted, unique
	TweetWeight  float64
	FirstSeen    time.Time
	LastSeen     time.Time
}

// Float returns a pointer to v. Convenience for optional columns.
func Float(v float64) *float64 { return &v }
