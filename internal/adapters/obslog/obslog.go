// Package obslog persists the canonical observation log as CSV.
//
// The log is the only shared mutable resource in the system. Writers
// follow a read-entire-file, filter-in-memory, atomic-rename cycle
// under an advisory file lock, so other processes never see a partial
// write. Promotion is validity-gated: a run that yields too few clean
// rows leaves the previous log byte-for-byte untouched.
package obslog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/boardroomlabs/boardroom/internal/domain/model"
	"github.com/boardroomlabs/boardroom/internal/domain/normalize"
)

// columns is the stable on-disk schema. Column names are the interface;
// order matters for writes, reads map by header.
var columns = []string{
	"timestamp", "league", "away_team", "home_team", "market",
	"tickets_pct", "handle_pct", "line", "source",
}

const defaultPromoteMinRows = 25

// Store reads and rewrites one observation-log CSV file.
type Store struct {
	path           string
	lock           *flock.Flock
	promoteMinRows int
}

// New creates a Store for the log at path.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:           path,
		lock:           flock.New(path + ".lock"),
		promoteMinRows: defaultPromoteMinRows,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the log file location.
func (s *Store) Path() string { return s.path }

// Read loads every raw row from the log. A missing file is a normal
// empty state, not an error.
func (s *Store) Read(ctx context.Context) ([]normalize.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open observation log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedLog, s.path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := headerIndex(records[0])
	rows := make([]normalize.RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		rows = append(rows, normalize.RawRow{
			Timestamp:  get("timestamp"),
			League:     get("league"),
			AwayTeam:   get("away_team"),
			HomeTeam:   get("home_team"),
			Market:     get("market"),
			TicketsPct: get("tickets_pct"),
			HandlePct:  get("handle_pct"),
			Line:       get("line"),
			Source:     get("source"),
		})
	}
	return rows, nil
}

// Append adds observations to the end of the log, creating it with a
// header when absent. Append is the normal-operation write path; only
// Promote ever replaces the file.
func (s *Store) Append(ctx context.Context, obs []model.Observation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(obs) == 0 {
		return nil
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock observation log: %w", err)
	}
	defer s.lock.Unlock()

	_, statErr := os.Stat(s.path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open observation log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(columns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, o := range obs {
		if err := w.Write(encodeRow(o)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// Promote replaces the persisted log with the clean set, but only when
// enough rows survived validation. Below the threshold the run is
// treated as transient noise and the previous log is preserved
// unchanged. Returns whether promotion happened.
func (s *Store) Promote(ctx context.Context, clean []model.Observation) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if len(clean) < s.promoteMinRows {
		return false, nil
	}
	if err := s.lock.Lock(); err != nil {
		return false, fmt.Errorf("lock observation log: %w", err)
	}
	defer s.lock.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".splits-*.csv")
	if err != nil {
		return false, fmt.Errorf("create temp log: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(columns); err != nil {
		tmp.Close()
		return false, fmt.Errorf("write header: %w", err)
	}
	for _, o := range clean {
		if err := w.Write(encodeRow(o)); err != nil {
			tmp.Close()
			return false, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return false, err
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return false, fmt.Errorf("promote observation log: %w", err)
	}
	return true, nil
}

// WriteFlagged writes rejected rows plus their reasons to a review CSV.
// Best-effort audit output; an empty reject set still writes a header
// so a fresh run leaves no stale flags behind.
func WriteFlagged(path string, rejects []normalize.Reject) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create flagged file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append(append([]string{}, columns...), "text", "_flag_reason")
	if err := w.Write(header); err != nil {
		return err
	}
	for _, rej := range rejects {
		row := rej.Row
		rec := []string{
			row.Timestamp, row.League, row.AwayTeam, row.HomeTeam,
			row.Market, row.TicketsPct, row.HandlePct, row.Line,
			row.Source, rej.Text, string(rej.Reason),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func encodeRow(o model.Observation) []string {
	ts := ""
	if !o.Timestamp.IsZero() {
		ts = o.Timestamp.UTC().Format(time.RFC3339)
	}
	return []string{
		ts,
		string(o.League),
		o.AwayTeam,
		o.HomeTeam,
		string(o.Market),
		encodeOpt(o.TicketsPct),
		encodeOpt(o.HandlePct),
		encodeOpt(o.Line),
		o.Source,
	}
}

func encodeOpt(v *float64) string {
	if v == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", *v), "0"), ".")
}

func headerIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return col
}
