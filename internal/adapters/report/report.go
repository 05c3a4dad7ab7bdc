// Package report renders the ranked picks and game snapshots as CSV
// and Markdown artifacts. Every writer produces a complete, well-formed
// file even when there is nothing to report; "no eligible plays" is a
// declared outcome, never a missing or truncated artifact.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/boardroomlabs/boardroom/internal/domain/model"
)

// Params carries the run settings echoed into the rendered reports.
type Params struct {
	LookbackHours int
	Star5Min      float64
	Star4Min      float64
}

// picksColumns is the stable ranked-report schema.
var picksColumns = []string{
	"entity", "score", "signals", "w24", "w6", "decayed", "clv_boost",
	"last_seen", "sample_text",
}

// WritePicksCSV writes the ranked entity list.
func WritePicksCSV(path string, scores []model.EntityScore) error {
	return writeFile(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(picksColumns); err != nil {
			return err
		}
		for _, s := range scores {
			rec := []string{
				s.Entity,
				fmt.Sprintf("%.2f", s.Score),
				fmt.Sprintf("%d", s.Signals),
				fmt.Sprintf("%d", s.W24),
				fmt.Sprintf("%d", s.W6),
				fmt.Sprintf("%.2f", s.Decayed),
				fmt.Sprintf("%.0f", s.CLVBoost),
				formatTime(s.LastSeen),
				s.SampleText,
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

// WritePicksMarkdown writes the human-readable 5-star / 4-star report.
func WritePicksMarkdown(path string, scores []model.EntityScore, p Params) error {
	var b strings.Builder
	b.WriteString("# Boardroom Picks\n\n")
	fmt.Fprintf(&b, "Lookback: last %dh. Thresholds: 5-star >= %.1f, 4-star >= %.1f.\n",
		p.LookbackHours, p.Star5Min, p.Star4Min)

	writeStarBlock(&b, "5-star plays", scores, 5)
	writeStarBlock(&b, "4-star plays", scores, 4)

	return writeFile(path, func(f *os.File) error {
		_, err := f.WriteString(b.String())
		return err
	})
}

func writeStarBlock(b *strings.Builder, title string, scores []model.EntityScore, stars int) {
	fmt.Fprintf(b, "\n## %s\n\n", title)
	any := false
	for _, s := range scores {
		if s.Stars != stars {
			continue
		}
		any = true
		fmt.Fprintf(b, "**%s — %d-star**  (score %.2f, signals %d; 24h %d, 6h %d, decay %.2f)",
			s.Entity, stars, s.Score, s.Signals, s.W24, s.W6, s.Decayed)
		if !s.LastSeen.IsZero() {
			fmt.Fprintf(b, " — last: %s", formatTime(s.LastSeen))
		}
		b.WriteString("\n")
		if s.CLVBoost > 0 {
			fmt.Fprintf(b, "- CLV positive (+%.0f)\n", s.CLVBoost)
		}
		if s.SampleText != "" {
			fmt.Fprintf(b, "> %s\n", s.SampleText)
		}
		b.WriteString("\n")
	}
	if !any {
		b.WriteString("_None at this time._\n")
	}
}

// snapshotColumns is the per-game movement schema.
var snapshotColumns = []string{
	"league", "game", "away_team", "home_team", "market",
	"last_tickets_pct", "delta_tickets_pct", "last_handle_pct",
	"delta_handle_pct", "last_line", "delta_line", "observations",
	"sources", "twitter_weight", "first_seen", "last_seen",
}

// WriteSnapshotsCSV writes the per-game movement rollup.
func WriteSnapshotsCSV(path string, snaps []model.Snapshot) error {
	return writeFile(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(snapshotColumns); err != nil {
			return err
		}
		for _, s := range snaps {
			rec := []string{
				string(s.Key.League),
				s.Key.String(),
				s.Key.Away,
				s.Key.Home,
				string(s.Market),
				formatOpt(s.LastTickets),
				formatOpt(s.DeltaTickets),
				formatOpt(s.LastHandle),
				formatOpt(s.DeltaHandle),
				formatOpt(s.LastLine),
				formatOpt(s.DeltaLine),
				fmt.Sprintf("%d", s.Observations),
				strings.Join(s.Sources, "|"),
				fmt.Sprintf("%.2f", s.TweetWeight),
				formatTime(s.FirstSeen),
				formatTime(s.LastSeen),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

// WriteLatestMarkdown writes the most recent movers, newest first.
func WriteLatestMarkdown(path string, snaps []model.Snapshot, limit int) error {
	ordered := make([]model.Snapshot, len(snaps))
	copy(ordered, snaps)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].LastSeen.After(ordered[j].LastSeen)
	})
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}

	var b strings.Builder
	b.WriteString("# Live Analysis (latest)\n\n")
	if len(ordered) == 0 {
		b.WriteString("_No promotable games right now._\n")
	}
	for _, s := range ordered {
		b.WriteString(formatSnapshotLine(s))
		b.WriteString("\n")
	}
	return writeFile(path, func(f *os.File) error {
		_, err := f.WriteString(b.String())
		return err
	})
}

// WriteTimelineMarkdown writes per-game history, earliest to latest.
func WriteTimelineMarkdown(path string, snaps []model.Snapshot) error {
	var b strings.Builder
	b.WriteString("# Live Timeline\n\n")
	if len(snaps) == 0 {
		b.WriteString("_No history today yet._\n")
	}

	var lastGame string
	for _, s := range snaps {
		game := s.Key.String()
		if game != lastGame {
			fmt.Fprintf(&b, "## %s — %s\n", s.Key.League, game)
			lastGame = game
		}
		fmt.Fprintf(&b, "- %s: tix=%s (d%s), hdl=%s (d%s), line=%s (d%s) — %s — src:%s\n",
			formatTime(s.LastSeen),
			formatOpt(s.LastTickets), formatOpt(s.DeltaTickets),
			formatOpt(s.LastHandle), formatOpt(s.DeltaHandle),
			formatOpt(s.LastLine), formatOpt(s.DeltaLine),
			s.Market, strings.Join(s.Sources, "|"))
	}
	return writeFile(path, func(f *os.File) error {
		_, err := f.WriteString(b.String())
		return err
	})
}

// tweet-weight callout thresholds in the latest view.
const (
	tweetWeightHot  = 5.0
	tweetWeightWarm = 2.0
)

func formatSnapshotLine(s model.Snapshot) string {
	var deltas []string
	if s.DeltaHandle != nil {
		deltas = append(deltas, fmt.Sprintf("handle %+.1f", *s.DeltaHandle))
	}
	if s.DeltaTickets != nil {
		deltas = append(deltas, fmt.Sprintf("tickets %+.1f", *s.DeltaTickets))
	}
	if s.DeltaLine != nil {
		deltas = append(deltas, fmt.Sprintf("line %+.1f", *s.DeltaLine))
	}
	deltaTxt := "steady"
	if len(deltas) > 0 {
		deltaTxt = strings.Join(deltas, ", ")
	}

	tag := ""
	switch {
	case s.TweetWeight >= tweetWeightHot:
		tag = " (TW hot)"
	case s.TweetWeight >= tweetWeightWarm:
		tag = " (TW)"
	}

	return fmt.Sprintf("- **%s** %s @ %s — %s | last: tix=%s hdl=%s line=%s | delta %s%s — src: %s",
		s.Key.League, s.Key.Away, s.Key.Home, s.Market,
		formatOpt(s.LastTickets), formatOpt(s.LastHandle), formatOpt(s.LastLine),
		deltaTxt, tag, strings.Join(s.Sources, "|"))
}

// writeFile writes through a temp file and rename so a crashed run
// never leaves a partial artifact.
func writeFile(path string, write func(*os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".report-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func formatOpt(v *float64) string {
	if v == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", *v), "0"), ".")
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}
