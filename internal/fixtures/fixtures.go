// Package fixtures generates a synthetic workspace for demos and
// end-to-end testing: alias dictionaries, a raw tweet export, and OCR
// text drops shaped like real screenshot captures.
package fixtures

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Generator writes deterministic fixture files under a root directory.
// The same seed always produces the same workspace.
type Generator struct {
	root   string
	rng    *rand.Rand
	now    time.Time
	tweets int
	images int
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSeed fixes the random source.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithClock fixes the timestamp base.
func WithClock(now time.Time) Option {
	return func(g *Generator) {
		if !now.IsZero() {
			g.now = now
		}
	}
}

// WithCounts sets how many tweets and OCR images to generate.
func WithCounts(tweets, images int) Option {
	return func(g *Generator) {
		if tweets > 0 {
			g.tweets = tweets
		}
		if images > 0 {
			g.images = images
		}
	}
}

// New creates a Generator rooted at dir.
func New(dir string, opts ...Option) *Generator {
	g := &Generator{
		root:   dir,
		rng:    rand.New(rand.NewSource(1)),
		now:    time.Now().UTC().Truncate(time.Minute),
		tweets: 40,
		images: 4,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// nflTeams is a small slice of the real alias space, enough to exercise
// multi-word aliases, shorthands, and cross-league shadowing.
var nflTeams = map[string][]string{
	"Kansas City Chiefs":   {"CHIEFS", "KC", "KANSAS CITY"},
	"Buffalo Bills":        {"BILLS", "BUF", "BUFFALO"},
	"Dallas Cowboys":       {"COWBOYS", "DAL", "DALLAS"},
	"Green Bay Packers":    {"PACKERS", "GB", "GREEN BAY"},
	"Philadelphia Eagles":  {"EAGLES", "PHI", "PHILLY"},
	"San Francisco 49ers":  {"49ERS", "SF", "NINERS"},
	"Tampa Bay Buccaneers": {"BUCCANEERS", "BUCS", "TB", "TAMPA BAY"},
	"Baltimore Ravens":     {"RAVENS", "BAL", "BALTIMORE"},
}

var mlbTeams = map[string][]string{
	"New York Yankees":    {"YANKEES", "NYY"},
	"Los Angeles Dodgers": {"DODGERS", "LAD"},
	"Tampa Bay Rays":      {"RAYS"},
	"Houston Astros":      {"ASTROS", "HOU"},
}

// tweetTemplates mix the three keyword strengths with team slots.
var tweetTemplates = []string{
	"%s are the most bet side today, 78%% of tickets against %s",
	"Public money pouring in on %s over %s, handle at 71%%",
	"Steam move on %s, line moved a full point vs %s",
	"Sharps quietly on %s while the public fades %s",
	"Pros taking %s against %s per the morning report",
	"Feels like a %s kind of night against %s",
	"Watching %s and %s, nothing actionable yet",
}

// Write generates the full fixture workspace and returns the paths the
// pipeline configuration should point at.
func (g *Generator) Write() (Paths, error) {
	p := Paths{
		DictionaryDir: filepath.Join(g.root, "dictionaries"),
		TweetsCSV:     filepath.Join(g.root, "sources", "tweets.csv"),
		OCRTextDir:    filepath.Join(g.root, "sources", "ocr"),
	}
	if err := g.writeDictionaries(p.DictionaryDir); err != nil {
		return Paths{}, err
	}
	if err := g.writeTweets(p.TweetsCSV); err != nil {
		return Paths{}, err
	}
	if err := g.writeOCR(p.OCRTextDir); err != nil {
		return Paths{}, err
	}
	return p, nil
}

// Paths locates the generated inputs.
type Paths struct {
	DictionaryDir string
	TweetsCSV     string
	OCRTextDir    string
}

func (g *Generator) writeDictionaries(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dictionary dir: %w", err)
	}
	for name, teams := range map[string]map[string][]string{
		"nfl.json": nflTeams,
		"mlb.json": mlbTeams,
	} {
		raw, err := json.MarshalIndent(teams, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

func (g *Generator) writeTweets(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create tweets dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tweets csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "id", "handle", "text"}); err != nil {
		return err
	}

	teams := teamNames(nflTeams)
	handles := []string{"covers", "actionnetworkhq", "br_betting", "vsinlive"}
	for i := 0; i < g.tweets; i++ {
		a := teams[g.rng.Intn(len(teams))]
		b := teams[g.rng.Intn(len(teams))]
		if a == b {
			b = teams[(g.rng.Intn(len(teams)-1)+1+indexOf(teams, a))%len(teams)]
		}
		tmpl := tweetTemplates[g.rng.Intn(len(tweetTemplates))]
		ts := g.now.Add(-time.Duration(g.rng.Intn(60)) * time.Hour)
		row := []string{
			ts.Format(time.RFC3339),
			uuid.NewString(),
			handles[g.rng.Intn(len(handles))],
			fmt.Sprintf(tmpl, a, b),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (g *Generator) writeOCR(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ocr dir: %w", err)
	}
	teams := teamNames(nflTeams)
	for i := 0; i < g.images; i++ {
		away := teams[g.rng.Intn(len(teams))]
		home := teams[(indexOf(teams, away)+1+g.rng.Intn(len(teams)-1))%len(teams)]
		// Bets prints first on a grid line; the home side leans
		// public, so its handle runs ahead of its tickets.
		tickets := 50 + g.rng.Intn(35)
		handle := tickets + 5 + g.rng.Intn(10)
		body := fmt.Sprintf(
			"NFL Splits    Handle    Bets\n%s  %d%%  %d%%\n%s  %d%%  %d%%\n",
			away, 100-tickets, 100-handle,
			home, tickets, handle,
		)
		name := fmt.Sprintf("covers-%02d.txt", i+1)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			return fmt.Errorf("write ocr file: %w", err)
		}
	}
	return nil
}

func teamNames(m map[string][]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	// Stable order so a fixed seed yields a fixed workspace.
	sort.Strings(names)
	return names
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return 0
}
