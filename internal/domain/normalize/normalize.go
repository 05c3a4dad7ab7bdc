// Package normalize converts heterogeneous source records into the one
// canonical Observation shape, validating at the ingestion boundary so
// downstream merge and scoring logic never branch on missing fields.
//
// Malformed records are dropped here, at the lowest possible layer, and
// reported on the reject side-channel for human audit. They are never
// propagated as errors.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/boardroomlabs/boardroom/internal/domain/dictionary"
	"github.com/boardroomlabs/boardroom/internal/domain/model"
	"github.com/boardroomlabs/boardroom/internal/domain/resolve"
	"github.com/boardroomlabs/boardroom/internal/domain/types"
)

// SourceKind selects the per-source field mapping.
type SourceKind string

// Source kinds accepted by FromRow.
const (
	SourceOCR    SourceKind = "ocr"
	SourceSplits SourceKind = "splits"
)

// RawRow mirrors the observation-log CSV schema. All fields are raw
// strings; FromRow owns coercion and bounds checks.
type RawRow struct {
	Timestamp  string
	League     string
	AwayTeam   string
	HomeTeam   string
	Market     string
	TicketsPct string
	HandlePct  string
	Line       string
	Source     string
	RawText    string
	EventDate  string
	EventTime  string
}

// Normalizer validates and converts raw records. Construct once per run
// with the run's alias index.
type Normalizer struct {
	resolver *resolve.Resolver
	idx      *dictionary.Index

	maxAbsLine    float64
	minTeamLen    int
	maxTeamLen    int
	strictResolve bool
}

// New creates a Normalizer over the given alias index.
func New(idx *dictionary.Index, opts ...Option) *Normalizer {
	n := &Normalizer{
		resolver:   resolve.New(idx),
		idx:        idx,
		maxAbsLine: 60, // anything wilder is OCR noise
		minTeamLen: 2,
		maxTeamLen: 40,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// junkFragments appear in OCR rows that captured chrome instead of a
// team name.
var junkFragments = []string{
	"estimating resolution", "sportsbook", "betting splits",
	"expanded splits", "money handle", "total handle", "bets rl",
}

var hasLetter = regexp.MustCompile(`[A-Za-z]`)

// FromRow normalizes one OCR or splits row. A nil Reject means the
// observation is valid.
func (n *Normalizer) FromRow(row RawRow, kind SourceKind) (model.Observation, *Reject) {
	obs := model.Observation{
		Source:  strings.TrimSpace(row.Source),
		RawText: row.RawText,
	}

	obs.League = types.ParseLeague(row.League)
	if !obs.League.Known() {
		return obs, rejectRow(row, ReasonLeague)
	}

	obs.Market = types.ParseMarket(row.Market)
	if !obs.Market.Known() {
		return obs, rejectRow(row, ReasonMarket)
	}

	away := resolve.CleanTeamLabel(row.AwayTeam)
	home := resolve.CleanTeamLabel(row.HomeTeam)
	if away == "" && home == "" {
		return obs, rejectRow(row, ReasonNoTeams)
	}
	if badTeam(away, n.minTeamLen, n.maxTeamLen) || badTeam(home, n.minTeamLen, n.maxTeamLen) {
		return obs, rejectRow(row, ReasonBadTeam)
	}
	if looksGibberish(away + " " + home) {
		return obs, rejectRow(row, ReasonGibberish)
	}

	obs.AwayTeam = n.canonical(away)
	obs.HomeTeam = n.canonical(home)
	if n.strictResolve {
		if _, ok := n.idx.Resolve(away); !ok {
			return obs, rejectRow(row, ReasonUnresolved)
		}
		if _, ok := n.idx.Resolve(home); !ok {
			return obs, rejectRow(row, ReasonUnresolved)
		}
	}
	if obs.AwayTeam == obs.HomeTeam {
		return obs, rejectRow(row, ReasonSameTeam)
	}

	var rej *Reject
	if obs.TicketsPct, rej = pctField(row, row.TicketsPct); rej != nil {
		return obs, rej
	}
	if obs.HandlePct, rej = pctField(row, row.HandlePct); rej != nil {
		return obs, rej
	}

	if line, ok := parseFloat(row.Line); ok {
		if line > n.maxAbsLine || line < -n.maxAbsLine {
			return obs, rejectRow(row, ReasonLineRange)
		}
		obs.Line = model.Float(line)
	}

	obs.Timestamp = ParseTimestamp(row.Timestamp)
	obs.EventTime = parseEventTime(row.EventDate, row.EventTime)

	if kind == SourceSplits && obs.TicketsPct == nil && obs.HandlePct == nil && obs.Line == nil {
		return obs, rejectRow(row, ReasonWeak)
	}

	return obs, nil
}

// FromTweetSignal normalizes a graded tweet into an Observation.
//
// CONVENTION: tweets carry no visual home/away ordering, so the
// first-detected team fills the away slot and the second the home
// slot. This is arbitrary but fixed, and asserted by tests; do not
// infer correctness from it.
func (n *Normalizer) FromTweetSignal(sig model.TweetSignal, hint types.League) (model.Observation, *Reject) {
	obs := model.Observation{
		Timestamp: sig.Timestamp,
		Market:    types.MarketUnknown,
		Source:    "TWITTER",
		RawText:   sig.Text,
	}

	hits := n.resolver.DetectTeams(sig.Text)
	pair, ok := resolve.ChoosePair(hits, hint)
	if !ok {
		return obs, rejectText(sig.Text, ReasonNoPair)
	}

	obs.League = pair.League
	obs.AwayTeam = pair.First
	obs.HomeTeam = pair.Second
	return obs, nil
}

// canonical maps a cleaned label to its canonical team when the index
// knows it; otherwise the cleaned raw label is kept as a fallback.
func (n *Normalizer) canonical(label string) string {
	if team, ok := n.idx.Resolve(label); ok {
		return team
	}
	return label
}

func pctField(row RawRow, raw string) (*float64, *Reject) {
	v, ok := parseFloat(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if !ok {
		return nil, nil // unparseable means absent, not invalid
	}
	if v < 0 || v > 100 {
		return nil, rejectRow(row, ReasonPctRange)
	}
	return model.Float(v), nil
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func badTeam(s string, minLen, maxLen int) bool {
	if len(s) < minLen || len(s) > maxLen {
		return true
	}
	if !hasLetter.MatchString(s) {
		return true
	}
	lower := strings.ToLower(s)
	for _, junk := range junkFragments {
		if strings.Contains(lower, junk) {
			return true
		}
	}
	return false
}

// looksGibberish flags only extreme junk: more than 80% of the
// characters outside the usual team-name alphabet.
func looksGibberish(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	good := 0
	for _, ch := range s {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
			good++
		case strings.ContainsRune(" .,-:/@%+()'&", ch):
			good++
		}
	}
	return float64(len(s)-good)/float64(len(s)) > 0.8
}

// timestampLayouts are tried in order. Zero time means unknown; scoring
// assigns unknown timestamps a reduced default weight rather than zero.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp spellings seen across sources.
// Returns the zero time when nothing matches.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

func parseEventTime(date, clock string) time.Time {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, date+" "+clock); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
