// Package ocrtext parses OCR'd sportsbook-screenshot text into raw
// observation rows. The OCR engine itself is an external concern; this
// package owns only the text-to-rows step.
//
// Screenshots come in two layouts, handled as strategies rather than
// separate parsers: GRID (one team per line with "Bets xx% ... Handle
// yy%" columns) and MGM (an "Away at Home" header followed by a short
// stats window). Accounts can be locked to a layout and league; the
// auto path infers both from the text.
package ocrtext

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/boardroomlabs/boardroom/internal/domain/normalize"
	"github.com/boardroomlabs/boardroom/internal/domain/resolve"
	"github.com/boardroomlabs/boardroom/internal/domain/types"
)

// Layout selects the screenshot parsing strategy.
type Layout string

// Parsing strategies.
const (
	LayoutAuto Layout = "AUTO"
	LayoutGrid Layout = "GRID"
	LayoutMGM  Layout = "MGM"
)

// Row sources stamped on parsed rows.
const (
	sourceGrid = "GRID_OCR"
	sourceMGM  = "MGM_OCR"
)

// AccountRule locks an account's screenshots to a layout and league.
// Zero values mean auto-detect.
type AccountRule struct {
	Layout Layout
	League types.League
}

// Report carries per-image audit counters for sanity checks.
type Report struct {
	Layout         Layout
	InferredLayout Layout
	League         types.League
	InferredLeague types.League
	Rows           int
	DroppedBlank   int
	DroppedNumeric int
	LayoutMismatch bool
	LeagueMismatch bool
}

// Parser turns OCR text into raw rows.
type Parser struct {
	rules map[string]AccountRule
	now   func() time.Time
}

// NewParser creates a Parser with configuration options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		rules: make(map[string]AccountRule),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var (
	mlSig    = regexp.MustCompile(`[+-]\d{2,3}`)
	spSig    = regexp.MustCompile(`[+-]\d+(?:\.\d+)?`)
	totSig   = regexp.MustCompile(`\b\d{1,2}(?:\.5)?\b`)
	pctPair  = regexp.MustCompile(`(\d{1,3})\s*%.*?(\d{1,3})\s*%`)
	teamLine = regexp.MustCompile(`^\s*([A-Za-z0-9.'\-&\s]+?)\s+(?:[+-]?\d+(?:\.\d+)?\s*)?(\d{1,3})\s*%.*?(\d{1,3})\s*%`)
	atLine   = regexp.MustCompile(`(?i)([A-Za-z0-9.'\-&\s]+)\s+at\s+([A-Za-z0-9.'\-&\s]+)`)
	hasDigit = regexp.MustCompile(`\d`)

	handleFile = regexp.MustCompile(`^([a-z0-9_]+)[-_]`)

	layoutMGMCue  = regexp.MustCompile(`(?i)\bBETMGM\b|\bMLB Games\b|\bCollege Football Week\b`)
	layoutGridCue = regexp.MustCompile(`(?i)\bHandle\b.*\bBets\b`)
)

// Parse applies the account's rule (or auto-detection) and returns the
// parsed rows plus an audit report. Rows are deduplicated within the
// image.
func (p *Parser) Parse(text, filename string) ([]normalize.RawRow, Report) {
	rule := p.rules[HandleFromFilename(filename)]

	rep := Report{
		InferredLeague: InferLeague(text),
		InferredLayout: DetectLayout(text),
	}

	rep.League = rep.InferredLeague
	if rule.League.Known() {
		rep.League = rule.League
		if rep.InferredLeague.Known() && rep.InferredLeague != rule.League {
			rep.LeagueMismatch = true
		}
	}

	rep.Layout = rep.InferredLayout
	if rule.Layout == LayoutGrid || rule.Layout == LayoutMGM {
		rep.Layout = rule.Layout
		if rep.InferredLayout != LayoutAuto && rep.InferredLayout != rule.Layout {
			rep.LayoutMismatch = true
		}
	}

	ts := p.now().UTC().Format("2006-01-02T15:04:05")
	var rows []normalize.RawRow
	switch rep.Layout {
	case LayoutMGM:
		rows = parseMGM(text, rep.League, ts)
	case LayoutGrid:
		rows = parseGrid(text, rep.League, ts)
	default:
		if rows = parseMGM(text, rep.League, ts); len(rows) == 0 {
			rows = parseGrid(text, rep.League, ts)
		}
	}

	out := make([]normalize.RawRow, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		row.AwayTeam = resolve.CleanTeamLabel(row.AwayTeam)
		row.HomeTeam = resolve.CleanTeamLabel(row.HomeTeam)
		if row.AwayTeam == "" || row.HomeTeam == "" {
			rep.DroppedBlank++
			continue
		}
		if hasDigit.MatchString(row.AwayTeam) || hasDigit.MatchString(row.HomeTeam) {
			rep.DroppedNumeric++
			continue
		}
		sig := strings.Join([]string{row.League, row.AwayTeam, row.HomeTeam, row.Market, row.Line, row.Source}, "|")
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, row)
	}
	rep.Rows = len(out)
	return out, rep
}

// gridRec is one team line of a GRID screenshot.
type gridRec struct {
	team            string
	bets, handle    string
	ml, sp, tot     string
}

// parseGrid reads per-team lines and pairs them top-to-bottom: the
// away team is printed above the home team.
func parseGrid(text string, league types.League, ts string) []normalize.RawRow {
	var recs []gridRec
	for _, ln := range splitLines(text) {
		m := teamLine.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		rec := gridRec{team: strings.TrimSpace(m[1]), bets: m[2], handle: m[3]}
		rec.ml = mlSig.FindString(ln)
		rec.sp = spSig.FindString(ln)
		rec.tot = totSig.FindString(ln)
		recs = append(recs, rec)
	}

	var rows []normalize.RawRow
	for i := 0; i+1 < len(recs); i += 2 {
		away, home := recs[i], recs[i+1]
		if away.bets == "" || home.bets == "" {
			continue
		}
		add := func(market types.Market, line string) {
			rows = append(rows, normalize.RawRow{
				Timestamp:  ts,
				League:     string(league),
				AwayTeam:   away.team,
				HomeTeam:   home.team,
				Market:     string(market),
				TicketsPct: home.bets,
				HandlePct:  home.handle,
				Line:       line,
				Source:     sourceGrid,
			})
		}
		add(types.MarketML, firstOf(home.ml, away.ml))
		add(types.MarketSpread, firstOf(home.sp, away.sp))
		add(types.MarketTotal, firstOf(home.tot, away.tot))
	}
	return rows
}

// parseMGM reads "Away at Home" headers and scans the following short
// window for the percentage pair and market lines.
func parseMGM(text string, league types.League, ts string) []normalize.RawRow {
	lines := splitLines(text)
	var rows []normalize.RawRow
	for i, ln := range lines {
		m := atLine.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		away := strings.TrimSpace(m[1])
		home := strings.TrimSpace(m[2])

		end := i + 4
		if end > len(lines) {
			end = len(lines)
		}
		window := strings.Join(lines[i:end], "\n")

		bets, handle := "", ""
		if pc := pctPair.FindStringSubmatch(window); pc != nil {
			bets, handle = pc[1], pc[2]
		}

		add := func(market types.Market, line string) {
			rows = append(rows, normalize.RawRow{
				Timestamp:  ts,
				League:     string(league),
				AwayTeam:   away,
				HomeTeam:   home,
				Market:     string(market),
				TicketsPct: bets,
				HandlePct:  handle,
				Line:       line,
				Source:     sourceMGM,
			})
		}
		add(types.MarketML, mlSig.FindString(window))
		add(types.MarketSpread, spSig.FindString(window))
		add(types.MarketTotal, totSig.FindString(window))
	}
	return rows
}

// DetectLayout infers the screenshot layout from its text cues. When
// both match, the MGM branding wins.
func DetectLayout(text string) Layout {
	mgm := layoutMGMCue.MatchString(text)
	grid := layoutGridCue.MatchString(text)
	switch {
	case mgm:
		return LayoutMGM
	case grid:
		return LayoutGrid
	}
	return LayoutAuto
}

// League word sets for census-based inference. Explicit league tags
// win; otherwise two word hits are required before committing.
var (
	nflWords = []string{"chargers", "raiders", "cowboys", "patriots", "chiefs",
		"steelers", "jets", "giants", "vikings", "browns", "bears", "eagles",
		"saints", "lions"}
	mlbWords = []string{"yankees", "dodgers", "braves", "rays", "cardinals",
		"cubs", "reds", "astros", "giants", "phillies", "nationals",
		"blue jays", "orioles"}
	ncaafWords = []string{"college football", "cfb", "alabama", "georgia",
		"clemson", "ohio state", "texas", "usc", "tennessee", "oregon",
		"michigan", "florida state", "notre dame"}

	mlbTag   = regexp.MustCompile(`(?i)\bmlb\b`)
	nflTag   = regexp.MustCompile(`(?i)\bnfl\b`)
	ncaafTag = regexp.MustCompile(`(?i)\bcollege football\b|\bcfb\b|\bncaaf\b`)
)

// InferLeague guesses the league an OCR text is about.
func InferLeague(text string) types.League {
	lower := strings.ToLower(text)
	switch {
	case mlbTag.MatchString(lower):
		return types.LeagueMLB
	case nflTag.MatchString(lower):
		return types.LeagueNFL
	case ncaafTag.MatchString(lower):
		return types.LeagueNCAAF
	}
	switch {
	case wordCensus(lower, mlbWords) >= 2:
		return types.LeagueMLB
	case wordCensus(lower, ncaafWords) >= 2:
		return types.LeagueNCAAF
	case wordCensus(lower, nflWords) >= 2:
		return types.LeagueNFL
	}
	return types.LeagueUnknown
}

// HandleFromFilename extracts the account handle from names like
// "covers_abcdef.jpg".
func HandleFromFilename(name string) string {
	base := strings.ToLower(filepath.Base(name))
	if m := handleFile.FindStringSubmatch(base); m != nil {
		return m[1]
	}
	return ""
}

func wordCensus(lower string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}

func splitLines(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

func firstOf(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
