// Package service wires the pipeline stages together: ingest raw
// sources, clean the observation log, render market snapshots, and
// produce the ranked picks report.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/boardroomlabs/boardroom/internal/adapters/obslog"
	"github.com/boardroomlabs/boardroom/internal/adapters/ocrtext"
	"github.com/boardroomlabs/boardroom/internal/adapters/report"
	"github.com/boardroomlabs/boardroom/internal/adapters/signalfeed"
	"github.com/boardroomlabs/boardroom/internal/config"
	"github.com/boardroomlabs/boardroom/internal/domain/dictionary"
	"github.com/boardroomlabs/boardroom/internal/domain/merge"
	"github.com/boardroomlabs/boardroom/internal/domain/model"
	"github.com/boardroomlabs/boardroom/internal/domain/normalize"
	"github.com/boardroomlabs/boardroom/internal/domain/resolve"
	"github.com/boardroomlabs/boardroom/internal/domain/scoring"
	"github.com/boardroomlabs/boardroom/internal/domain/types"
	"github.com/boardroomlabs/boardroom/pkg/logger"
	"github.com/boardroomlabs/boardroom/pkg/metrics"
)

// Outcome classifies how a picks run ended. A run can succeed while
// producing no promotable picks; callers map that to its own exit
// status rather than treating it as a failure.
type Outcome int

const (
	// OutcomeOK means at least one entity cleared the gates.
	OutcomeOK Outcome = iota
	// OutcomeNoPicks means the run completed but nothing promoted.
	OutcomeNoPicks
)

// latestSnapshotLimit caps the "latest movement" report rows.
const latestSnapshotLimit = 20

// dictionaryFiles maps each supported league to its alias file inside
// the dictionary directory. Missing files are skipped at load time.
var dictionaryFiles = []struct {
	league types.League
	file   string
}{
	{types.LeagueNFL, "nfl.json"},
	{types.LeagueNCAAF, "ncaaf.json"},
	{types.LeagueNBA, "nba.json"},
	{types.LeagueNCAAB, "ncaab.json"},
	{types.LeagueMLB, "mlb.json"},
	{types.LeagueNHL, "nhl.json"},
	{types.LeagueWNBA, "wnba.json"},
	{types.LeagueMLS, "mls.json"},
}

// Service runs the pipeline stages against one configuration.
type Service struct {
	cfg   *config.Config
	log   logger.Logger
	met   *metrics.Manager
	now   func() time.Time
	runID string

	store  *obslog.Store
	idx    *dictionary.Index
	norm   *normalize.Normalizer
	parser *ocrtext.Parser
	engine *scoring.Engine
	stop   map[string]struct{}
}

// New constructs a Service for the given configuration. The dictionary
// is loaded lazily on first use so commands that never resolve teams
// do not pay for it.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:   cfg,
		now:   time.Now,
		runID: uuid.NewString(),
		stop:  resolve.StopEntities(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	if s.met == nil {
		s.met = metrics.NewManager(metrics.WithEnabled(false))
	}
	s.log = s.log.Named("pipeline")

	s.store = obslog.New(cfg.ObservationLog,
		obslog.WithPromoteMinRows(cfg.PromoteMinRows),
	)
	s.parser = ocrtext.NewParser(
		ocrtext.WithAccountRules(ocrtext.DefaultAccountRules()),
		ocrtext.WithClock(s.now),
	)
	s.engine = scoring.New(
		scoring.WithLookback(time.Duration(cfg.LookbackHours)*time.Hour),
		scoring.WithHalfLife(time.Duration(cfg.HalfLifeHours)*time.Hour),
		scoring.WithMinSignals(cfg.MinSignals),
		scoring.WithStarThresholds(cfg.Star4Min, cfg.Star5Min),
		scoring.WithSampleLimit(3, cfg.SampleTextLimit),
		scoring.WithStopEntities(s.stop),
	)
	return s
}

// RunID identifies this service instance across log lines.
func (s *Service) RunID() string { return s.runID }

// resolverInit loads the alias dictionary and builds the normalizer.
// Idempotent; the first caller pays the load.
func (s *Service) resolverInit(ctx context.Context) error {
	if s.norm != nil {
		return nil
	}
	sources := make([]dictionary.Source, 0, len(dictionaryFiles))
	for _, d := range dictionaryFiles {
		sources = append(sources, dictionary.Source{
			League: d.league,
			Path:   filepath.Join(s.cfg.DictionaryDir, d.file),
		})
	}
	idx, err := dictionary.Load(ctx, sources)
	if err != nil {
		return fmt.Errorf("load dictionary: %w", err)
	}
	if idx.Empty() {
		s.log.Warn(ctx, "alias dictionary is empty; resolution will fall back to raw labels",
			logger.String("dir", s.cfg.DictionaryDir),
		)
	}
	s.idx = idx
	s.norm = normalize.New(idx)
	s.log.Debug(ctx, "dictionary loaded",
		logger.Int("teams", idx.Teams()),
		logger.Int("aliases", len(idx.Entries())),
	)
	return nil
}

// Ingest parses the OCR text drop directory and the raw tweets export,
// appending screenshot observations to the log and writing the graded
// signal feed. Missing sources are skipped, not fatal: ingest is
// additive and each source arrives on its own schedule.
func (s *Service) Ingest(ctx context.Context) error {
	return s.timed(ctx, "ingest", func(ctx context.Context) error {
		if err := s.resolverInit(ctx); err != nil {
			return err
		}
		if err := s.ingestOCR(ctx); err != nil {
			return err
		}
		return s.ingestTweets(ctx)
	})
}

func (s *Service) ingestOCR(ctx context.Context) error {
	entries, err := os.ReadDir(s.cfg.OCRTextDir)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Info(ctx, "no ocr directory; skipping screenshot ingest",
			logger.String("dir", s.cfg.OCRTextDir),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read ocr dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var kept []model.Observation
	var rejected int
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := os.ReadFile(filepath.Join(s.cfg.OCRTextDir, name))
		if err != nil {
			return fmt.Errorf("read ocr file %s: %w", name, err)
		}
		rows, rep := s.parser.Parse(string(raw), name)
		if rep.LayoutMismatch || rep.LeagueMismatch {
			s.log.Warn(ctx, "ocr account rule mismatch",
				logger.String("file", name),
				logger.String("ruleLayout", string(rep.Layout)),
				logger.String("inferredLayout", string(rep.InferredLayout)),
				logger.String("ruleLeague", string(rep.League)),
				logger.String("inferredLeague", string(rep.InferredLeague)),
			)
		}
		for _, row := range rows {
			obs, rej := s.norm.FromRow(row, normalize.SourceOCR)
			if rej != nil {
				rejected++
				s.met.RowRejected(string(rej.Reason))
				continue
			}
			kept = append(kept, obs)
			s.met.RowsIngested(obs.Source, 1)
		}
	}

	if len(kept) == 0 {
		s.log.Info(ctx, "no ocr observations to append",
			logger.Int("files", len(names)),
			logger.Int("rejected", rejected),
		)
		return nil
	}
	if err := s.store.Append(ctx, kept); err != nil {
		return fmt.Errorf("append observations: %w", err)
	}
	s.log.Info(ctx, "ocr ingest complete",
		logger.Int("files", len(names)),
		logger.Int("appended", len(kept)),
		logger.Int("rejected", rejected),
	)
	return nil
}

func (s *Service) ingestTweets(ctx context.Context) error {
	tweets, err := signalfeed.ReadTweets(ctx, s.cfg.TweetsCSV)
	if errors.Is(err, signalfeed.ErrMissingInput) {
		s.log.Info(ctx, "no tweets export; skipping signal grading",
			logger.String("path", s.cfg.TweetsCSV),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read tweets: %w", err)
	}

	resolver := resolve.New(s.idx)
	signals := make([]model.TweetSignal, 0, len(tweets))
	for _, t := range tweets {
		if err := ctx.Err(); err != nil {
			return err
		}
		detected := resolver.DetectTeams(t.Text)
		teams := make([]string, 0, len(detected))
		for _, h := range detected {
			teams = append(teams, h.Team)
		}
		signals = append(signals, model.TweetSignal{
			Timestamp: normalize.ParseTimestamp(t.Timestamp),
			Handle:    t.Handle,
			Teams:     teams,
			Text:      t.Text,
			Strength:  scoring.Grade(t.Text),
		})
	}

	if err := signalfeed.WriteSignals(s.cfg.SignalsCSV, signals); err != nil {
		return fmt.Errorf("write signals: %w", err)
	}
	s.met.RowsIngested("TWITTER", len(signals))
	s.log.Info(ctx, "tweet grading complete",
		logger.Int("tweets", len(tweets)),
		logger.Int("signals", len(signals)),
		logger.String("out", s.cfg.SignalsCSV),
	)
	return nil
}

// Clean validates every logged row, writes rejects to the flagged
// side-channel, collapses duplicates, and promotes the cleaned rows
// back into the observation log when enough survive.
func (s *Service) Clean(ctx context.Context) error {
	return s.timed(ctx, "clean", func(ctx context.Context) error {
		if err := s.resolverInit(ctx); err != nil {
			return err
		}
		clean, rejects, err := s.cleanRows(ctx)
		if err != nil {
			return err
		}

		if err := obslog.WriteFlagged(s.cfg.FlaggedCSV, rejects); err != nil {
			return fmt.Errorf("write flagged: %w", err)
		}

		promoted, err := s.store.Promote(ctx, clean)
		if err != nil {
			return fmt.Errorf("promote log: %w", err)
		}
		s.met.CleanRows(len(clean))
		s.met.LogPromoted(promoted)
		if !promoted {
			s.log.Warn(ctx, "clean set below promotion floor; log left untouched",
				logger.Int("clean", len(clean)),
				logger.Int("floor", s.cfg.PromoteMinRows),
			)
		}
		s.log.Info(ctx, "clean complete",
			logger.Int("clean", len(clean)),
			logger.Int("flagged", len(rejects)),
			logger.Any("promoted", promoted),
		)
		return nil
	})
}

// cleanRows reads the log and returns the validated, deduplicated,
// latest-per-series observations plus the rejects.
func (s *Service) cleanRows(ctx context.Context) ([]model.Observation, []normalize.Reject, error) {
	rows, err := s.store.Read(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read observation log: %w", err)
	}

	var obs []model.Observation
	var rejects []normalize.Reject
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		o, rej := s.norm.FromRow(row, normalize.SourceSplits)
		if rej != nil {
			rejects = append(rejects, *rej)
			s.met.RowRejected(string(rej.Reason))
			continue
		}
		obs = append(obs, o)
	}

	before := len(obs)
	obs = merge.Dedupe(obs)
	s.met.RowsDeduped(before - len(obs))
	obs = merge.KeepLatest(obs)
	return obs, rejects, nil
}

// Snapshot renders the per-game market snapshots: CSV for machines,
// latest-movement and timeline markdown for humans.
func (s *Service) Snapshot(ctx context.Context) error {
	return s.timed(ctx, "snapshot", func(ctx context.Context) error {
		if err := s.resolverInit(ctx); err != nil {
			return err
		}
		snaps, err := s.buildSnapshots(ctx)
		if err != nil {
			return err
		}

		dir := s.cfg.ReportDir
		if err := report.WriteSnapshotsCSV(filepath.Join(dir, "snapshots.csv"), snaps); err != nil {
			return fmt.Errorf("write snapshots csv: %w", err)
		}
		if err := report.WriteLatestMarkdown(filepath.Join(dir, "latest.md"), snaps, latestSnapshotLimit); err != nil {
			return fmt.Errorf("write latest markdown: %w", err)
		}
		if err := report.WriteTimelineMarkdown(filepath.Join(dir, "timeline.md"), snaps); err != nil {
			return fmt.Errorf("write timeline markdown: %w", err)
		}
		s.log.Info(ctx, "snapshot complete",
			logger.Int("games", len(snaps)),
			logger.String("dir", dir),
		)
		return nil
	})
}

// loggedObservations reads the observation log and validates every
// row. Rejects are dropped silently here; Clean owns reject reporting.
func (s *Service) loggedObservations(ctx context.Context) ([]model.Observation, error) {
	rows, err := s.store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read observation log: %w", err)
	}
	obs := make([]model.Observation, 0, len(rows))
	for _, row := range rows {
		o, rej := s.norm.FromRow(row, normalize.SourceSplits)
		if rej != nil {
			continue
		}
		obs = append(obs, o)
	}
	return obs, nil
}

// tweetObservations folds graded signals into the observation series
// under the market-unknown TWITTER shape, the first-detected team in
// the away slot. Signals without a resolvable pair stay out of the
// series; they still carry scoring weight.
func (s *Service) tweetObservations(signals []model.TweetSignal) []model.Observation {
	var obs []model.Observation
	for _, sig := range signals {
		o, rej := s.norm.FromTweetSignal(sig, types.LeagueUnknown)
		if rej != nil {
			continue
		}
		obs = append(obs, o)
	}
	return obs
}

// buildSnapshots turns the validated observation log plus the tweet
// signal feed into merged per-game snapshots.
func (s *Service) buildSnapshots(ctx context.Context) ([]model.Snapshot, error) {
	obs, err := s.loggedObservations(ctx)
	if err != nil {
		return nil, err
	}
	obs = merge.Dedupe(obs)

	weights := map[string]float64{}
	signals, err := signalfeed.ReadSignals(ctx, s.cfg.SignalsCSV)
	switch {
	case errors.Is(err, signalfeed.ErrMissingInput):
		// Snapshots render without tweet heat.
	case err != nil:
		return nil, fmt.Errorf("read signals: %w", err)
	default:
		// Tweets join after dedupe: the identity tuple cannot
		// tell two tweets about the same game apart.
		obs = append(obs, s.tweetObservations(signals)...)
		weights = merge.TweetWeights(signals)
	}

	cutoff := time.Duration(s.cfg.PregameCutoffMinutes) * time.Minute
	return merge.Snapshots(obs, weights, s.now(), merge.WithPregameCutoff(cutoff)), nil
}

// Picks scores the graded signal feed, applies the promotion gates,
// and writes the ranked report. The signal feed is the one required
// input: its absence is a hard error, not an empty result.
func (s *Service) Picks(ctx context.Context) (Outcome, error) {
	outcome := OutcomeOK
	err := s.timed(ctx, "picks", func(ctx context.Context) error {
		if err := s.resolverInit(ctx); err != nil {
			return err
		}
		signals, err := signalfeed.ReadSignals(ctx, s.cfg.SignalsCSV)
		if err != nil {
			return fmt.Errorf("read signals: %w", err)
		}

		now := s.now()
		inputs := make([]scoring.Input, 0, len(signals))
		for _, sig := range signals {
			in := scoring.FromTweetSignal(sig)
			if len(in.Entities) == 0 {
				if fb := resolve.FallbackEntity(sig.Text, s.stop); fb != "" {
					in.Entities = []string{fb}
				}
			}
			inputs = append(inputs, in)
		}

		// Logged observations score too: a splits row is itself
		// evidence of market attention. The log keeps no text, so
		// these grade at the low tier.
		obs, err := s.loggedObservations(ctx)
		if err != nil {
			return err
		}
		for _, o := range merge.Dedupe(obs) {
			inputs = append(inputs, scoring.FromObservation(o))
		}

		scores, err := s.engine.Score(ctx, inputs, now)
		if err != nil {
			return err
		}
		s.met.EntitiesScored(len(scores))

		snaps, err := s.buildSnapshots(ctx)
		if err != nil {
			return err
		}
		for i := range scores {
			scores[i].CLVBoost = scoring.CLVBoost(scores[i].Entity, snaps)
		}

		ranked := s.engine.Rank(scores)
		promoted := make(map[int]int)
		for _, sc := range ranked {
			promoted[sc.Stars]++
		}
		for stars, n := range promoted {
			s.met.EntitiesPromoted(fmt.Sprintf("%d", stars), n)
		}

		dir := s.cfg.ReportDir
		if err := report.WritePicksCSV(filepath.Join(dir, "picks.csv"), ranked); err != nil {
			return fmt.Errorf("write picks csv: %w", err)
		}
		params := report.Params{
			LookbackHours: s.cfg.LookbackHours,
			Star5Min:      s.cfg.Star5Min,
			Star4Min:      s.cfg.Star4Min,
		}
		if err := report.WritePicksMarkdown(filepath.Join(dir, "picks.md"), ranked, params); err != nil {
			return fmt.Errorf("write picks markdown: %w", err)
		}

		if len(ranked) == 0 {
			outcome = OutcomeNoPicks
			s.log.Warn(ctx, "no entities cleared the gates",
				logger.Int("scored", len(scores)),
			)
			return nil
		}
		s.log.Info(ctx, "picks complete",
			logger.Int("scored", len(scores)),
			logger.Int("promoted", len(ranked)),
			logger.String("dir", dir),
		)
		return nil
	})
	if err != nil {
		return OutcomeOK, err
	}
	return outcome, nil
}

// Run executes the full chain: ingest, clean, snapshot, picks.
func (s *Service) Run(ctx context.Context) (Outcome, error) {
	s.log.Info(ctx, "pipeline run starting", logger.String("runID", s.runID))
	if err := s.Ingest(ctx); err != nil {
		return OutcomeOK, err
	}
	if err := s.Clean(ctx); err != nil {
		return OutcomeOK, err
	}
	if err := s.Snapshot(ctx); err != nil {
		return OutcomeOK, err
	}
	return s.Picks(ctx)
}

// timed wraps a stage with duration logging and metrics.
func (s *Service) timed(ctx context.Context, stage string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	s.met.ObserveStage(stage, elapsed)
	if err != nil {
		s.log.Error(ctx, "stage failed",
			logger.String("stage", stage),
			logger.Duration("elapsed", elapsed),
			logger.Error(err),
		)
		return err
	}
	s.log.Debug(ctx, "stage finished",
		logger.String("stage", stage),
		logger.Duration("elapsed", elapsed),
	)
	return nil
}
