// Package signalfeed reads tweet-derived signal CSVs: the pre-graded
// signal feed the scoring engine consumes, and raw tweet exports that
// still need grading and team detection.
package signalfeed

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/boardroomlabs/boardroom/internal/domain/model"
	"github.com/boardroomlabs/boardroom/internal/domain/normalize"
	"github.com/boardroomlabs/boardroom/internal/domain/types"
)

// Tweet is one raw, ungraded tweet row.
type Tweet struct {
	Timestamp string
	ID        string
	Handle    string
	Text      string
}

// ReadSignals loads the graded signal CSV. Columns: timestamp,
// entity|teams (pipe-separated canonical teams), text,
// signal_strength. This file is the required base input of a picks
// run; a missing file is fatal to the caller.
func ReadSignals(ctx context.Context, path string) ([]model.TweetSignal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("open signal feed: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedFeed, path, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	col := headerIndex(records[0])
	get := func(rec []string, names ...string) string {
		for _, name := range names {
			if i, ok := col[name]; ok && i < len(rec) {
				return rec[i]
			}
		}
		return ""
	}

	signals := make([]model.TweetSignal, 0, len(records)-1)
	for _, rec := range records[1:] {
		sig := model.TweetSignal{
			Timestamp: normalize.ParseTimestamp(get(rec, "timestamp", "date")),
			Handle:    strings.TrimSpace(get(rec, "handle")),
			Text:      get(rec, "text"),
			Strength:  types.ParseStrength(get(rec, "signal_strength", "strength")),
		}
		for _, team := range strings.Split(get(rec, "teams", "entity"), "|") {
			if team = strings.TrimSpace(team); team != "" {
				sig.Teams = append(sig.Teams, team)
			}
		}
		signals = append(signals, sig)
	}
	return signals, nil
}

// ReadTweets loads a raw tweet export. Sheet exports move the text
// column around, so the column is picked heuristically: a name
// containing text/tweet/body/content/message wins, otherwise the
// column with the longest median value.
func ReadTweets(ctx context.Context, path string) ([]Tweet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("open tweets: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedFeed, path, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	textCol := pickTextColumn(header, records[1:])
	col := headerIndex(header)
	get := func(rec []string, name string) string {
		if i, ok := col[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}

	tweets := make([]Tweet, 0, len(records)-1)
	for _, rec := range records[1:] {
		text := ""
		if textCol >= 0 && textCol < len(rec) {
			text = rec[textCol]
		}
		tweets = append(tweets, Tweet{
			Timestamp: get(rec, "timestamp"),
			ID:        get(rec, "tweet_id"),
			Handle:    get(rec, "handle"),
			Text:      text,
		})
	}
	return tweets, nil
}

// WriteSignals writes graded signals in the stable feed schema, so a
// later picks run can consume them.
func WriteSignals(path string, signals []model.TweetSignal) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create signal feed: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "handle", "text", "teams", "signal_strength"}); err != nil {
		return err
	}
	for _, sig := range signals {
		ts := ""
		if !sig.Timestamp.IsZero() {
			ts = sig.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		rec := []string{ts, sig.Handle, sig.Text, strings.Join(sig.Teams, " | "), string(sig.Strength)}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

var textColumnHints = []string{"text", "tweet", "body", "content", "message"}

func pickTextColumn(header []string, rows [][]string) int {
	for i, name := range header {
		lower := strings.ToLower(name)
		for _, hint := range textColumnHints {
			if strings.Contains(lower, hint) {
				return i
			}
		}
	}

	// Fall back to the column with the longest median value.
	best, bestLen := -1, -1
	for i := range header {
		lengths := make([]int, 0, len(rows))
		for _, rec := range rows {
			if i < len(rec) {
				lengths = append(lengths, len(rec[i]))
			}
		}
		if len(lengths) == 0 {
			continue
		}
		sort.Ints(lengths)
		if median := lengths[len(lengths)/2]; median > bestLen {
			best, bestLen = i, median
		}
	}
	return best
}

func headerIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return col
}
