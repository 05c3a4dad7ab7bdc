package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/boardroomlabs/boardroom/internal/adapters/report"
	"github.com/boardroomlabs/boardroom/internal/domain/model"
	"github.com/boardroomlabs/boardroom/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleScores() []model.EntityScore {
	return []model.EntityScore{
		{
			Entity:     "Buffalo Bills",
			Score:      6.75,
			Signals:    4,
			W24:        3,
			W6:         1,
			Decayed:    2.8,
			LastSeen:   time.Date(2026, 8, 20, 11, 0, 0, 0, time.UTC),
			SampleText: "public pounding the Bills",
			Stars:      5,
		},
		{
			Entity:  "Dallas Cowboys",
			Score:   3.9,
			Signals: 2,
			Stars:   4,
		},
	}
}

func sampleSnapshots() []model.Snapshot {
	lastT, deltaT := 70.0, 10.0
	return []model.Snapshot{
		{
			Key:          model.GameKey{League: types.LeagueNFL, Away: "Buffalo Bills", Home: "Kansas City Chiefs"},
			Market:       types.MarketSpread,
			LastTickets:  &lastT,
			DeltaTickets: &deltaT,
			Observations: 3,
			Sources:      []string{"GRID_OCR", "MGM_OCR"},
			TweetWeight:  5.5,
			LastSeen:     time.Date(2026, 8, 20, 11, 0, 0, 0, time.UTC),
		},
	}
}

func TestWritePicks(t *testing.T) {
	Convey("Given ranked scores", t, func() {
		dir := t.TempDir()

		Convey("When writing the CSV", func() {
			path := filepath.Join(dir, "picks.csv")
			So(report.WritePicksCSV(path, sampleScores()), ShouldBeNil)
			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)

			Convey("Then the schema and values are present", func() {
				text := string(raw)
				So(text, ShouldContainSubstring, "entity,score,signals")
				So(text, ShouldContainSubstring, "Buffalo Bills,6.75,4")
				So(text, ShouldContainSubstring, "Dallas Cowboys,3.90,2")
			})
		})

		Convey("When writing the markdown", func() {
			path := filepath.Join(dir, "picks.md")
			p := report.Params{LookbackHours: 72, Star5Min: 6.0, Star4Min: 3.5}
			So(report.WritePicksMarkdown(path, sampleScores(), p), ShouldBeNil)
			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)

			Convey("Then both star blocks render with their entities", func() {
				text := string(raw)
				So(text, ShouldContainSubstring, "## 5-star plays")
				So(text, ShouldContainSubstring, "## 4-star plays")
				So(text, ShouldContainSubstring, "Buffalo Bills")
				So(text, ShouldContainSubstring, "Dallas Cowboys")
				So(text, ShouldContainSubstring, "> public pounding the Bills")
			})
		})

		Convey("When there is nothing to report", func() {
			path := filepath.Join(dir, "empty.md")
			So(report.WritePicksMarkdown(path, nil, report.Params{LookbackHours: 72}), ShouldBeNil)
			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)

			Convey("Then the artifact is complete, with declared empty blocks", func() {
				So(strings.Count(string(raw), "_None at this time._"), ShouldEqual, 2)
			})
		})
	})
}

func TestWriteSnapshots(t *testing.T) {
	Convey("Given game snapshots", t, func() {
		dir := t.TempDir()

		Convey("When writing the CSV", func() {
			path := filepath.Join(dir, "snapshots.csv")
			So(report.WriteSnapshotsCSV(path, sampleSnapshots()), ShouldBeNil)
			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)

			Convey("Then movement fields serialize with absent values blank", func() {
				text := string(raw)
				So(text, ShouldContainSubstring, "last_tickets_pct")
				So(text, ShouldContainSubstring, "Buffalo Bills")
				So(text, ShouldContainSubstring, "GRID_OCR|MGM_OCR")
				// Handle columns were never observed; they stay empty.
				So(text, ShouldContainSubstring, ",70,10,,,")
			})
		})

		Convey("When writing the latest view", func() {
			path := filepath.Join(dir, "latest.md")
			So(report.WriteLatestMarkdown(path, sampleSnapshots(), 20), ShouldBeNil)
			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)

			Convey("Then movers render with the tweet-heat tag", func() {
				text := string(raw)
				So(text, ShouldContainSubstring, "Buffalo Bills @ Kansas City Chiefs")
				So(text, ShouldContainSubstring, "tickets +10.0")
				So(text, ShouldContainSubstring, "(TW hot)")
			})
		})

		Convey("When writing the timeline", func() {
			path := filepath.Join(dir, "timeline.md")
			So(report.WriteTimelineMarkdown(path, sampleSnapshots()), ShouldBeNil)
			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, "## NFL — NFL::Buffalo Bills @ Kansas City Chiefs")
		})

		Convey("When there are no snapshots", func() {
			path := filepath.Join(dir, "latest.md")
			So(report.WriteLatestMarkdown(path, nil, 20), ShouldBeNil)
			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, "_No promotable games right now._")
		})
	})
}
