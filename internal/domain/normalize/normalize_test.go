package normalize_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boardroomlabs/boardroom/internal/domain/dictionary"
	"github.com/boardroomlabs/boardroom/internal/domain/model"
	"github.com/boardroomlabs/boardroom/internal/domain/normalize"
	"github.com/boardroomlabs/boardroom/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func testIndex(t *testing.T) *dictionary.Index {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "nfl.json")
	body := `{
		"Kansas City Chiefs": ["CHIEFS", "KC"],
		"Buffalo Bills": ["BILLS"],
		"Dallas Cowboys": ["COWBOYS", "DAL"]
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	idx, err := dictionary.Load(context.Background(), []dictionary.Source{
		{League: types.LeagueNFL, Path: path},
	})
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func validRow() normalize.RawRow {
	return normalize.RawRow{
		Timestamp:  "2026-08-20T14:00:00Z",
		League:     "NFL",
		AwayTeam:   "Bills",
		HomeTeam:   "Chiefs",
		Market:     "Spread",
		TicketsPct: "64",
		HandlePct:  "71",
		Line:       "-2.5",
		Source:     "GRID_OCR",
		RawText:    "Bills at Chiefs splits",
	}
}

func TestFromRow(t *testing.T) {
	Convey("Given a normalizer over the test index", t, func() {
		n := normalize.New(testIndex(t))

		Convey("When the row is fully valid", func() {
			obs, rej := n.FromRow(validRow(), normalize.SourceSplits)

			Convey("Then fields are coerced and teams canonicalized", func() {
				So(rej, ShouldBeNil)
				So(obs.League, ShouldEqual, types.LeagueNFL)
				So(obs.Market, ShouldEqual, types.MarketSpread)
				So(obs.AwayTeam, ShouldEqual, "Buffalo Bills")
				So(obs.HomeTeam, ShouldEqual, "Kansas City Chiefs")
				So(*obs.TicketsPct, ShouldEqual, 64)
				So(*obs.HandlePct, ShouldEqual, 71)
				So(*obs.Line, ShouldEqual, -2.5)
				So(obs.Timestamp.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When the league is unknown", func() {
			row := validRow()
			row.League = "EPL"
			_, rej := n.FromRow(row, normalize.SourceSplits)
			So(rej, ShouldNotBeNil)
			So(rej.Reason, ShouldEqual, normalize.ReasonLeague)
		})

		Convey("When the market is a folded spelling", func() {
			row := validRow()
			row.Market = "Moneyline"
			obs, rej := n.FromRow(row, normalize.SourceSplits)
			So(rej, ShouldBeNil)
			So(obs.Market, ShouldEqual, types.MarketML)
		})

		Convey("When both teams are the same after resolution", func() {
			row := validRow()
			row.AwayTeam = "KC"
			row.HomeTeam = "Chiefs"
			_, rej := n.FromRow(row, normalize.SourceSplits)
			So(rej, ShouldNotBeNil)
			So(rej.Reason, ShouldEqual, normalize.ReasonSameTeam)
		})

		Convey("When a percentage is parseable but out of range", func() {
			row := validRow()
			row.TicketsPct = "140"
			_, rej := n.FromRow(row, normalize.SourceSplits)

			Convey("Then the row is rejected, not silently clamped", func() {
				So(rej, ShouldNotBeNil)
				So(rej.Reason, ShouldEqual, normalize.ReasonPctRange)
			})
		})

		Convey("When a percentage is unparseable", func() {
			row := validRow()
			row.HandlePct = "n/a"
			obs, rej := n.FromRow(row, normalize.SourceSplits)

			Convey("Then the field is absent, not an error", func() {
				So(rej, ShouldBeNil)
				So(obs.HandlePct, ShouldBeNil)
				So(obs.TicketsPct, ShouldNotBeNil)
			})
		})

		Convey("When the line is beyond the plausible range", func() {
			row := validRow()
			row.Line = "250"
			_, rej := n.FromRow(row, normalize.SourceSplits)
			So(rej, ShouldNotBeNil)
			So(rej.Reason, ShouldEqual, normalize.ReasonLineRange)
		})

		Convey("When an OCR label carries debris", func() {
			row := validRow()
			row.AwayTeam = "Bills +7 -110"
			obs, rej := n.FromRow(row, normalize.SourceSplits)
			So(rej, ShouldBeNil)
			So(obs.AwayTeam, ShouldEqual, "Buffalo Bills")
		})

		Convey("When a splits row has no measurable fields", func() {
			row := validRow()
			row.TicketsPct, row.HandlePct, row.Line = "", "", ""
			_, rej := n.FromRow(row, normalize.SourceSplits)

			Convey("Then it is rejected as weak", func() {
				So(rej, ShouldNotBeNil)
				So(rej.Reason, ShouldEqual, normalize.ReasonWeak)
			})
		})

		Convey("When the same fieldless row arrives from OCR", func() {
			row := validRow()
			row.TicketsPct, row.HandlePct, row.Line = "", "", ""
			_, rej := n.FromRow(row, normalize.SourceOCR)

			Convey("Then the weak check does not apply", func() {
				So(rej, ShouldBeNil)
			})
		})

		Convey("When a team label is gibberish", func() {
			row := validRow()
			row.AwayTeam = "###$$%%^^!!"
			row.HomeTeam = "@@@@@@@@"
			_, rej := n.FromRow(row, normalize.SourceSplits)
			So(rej, ShouldNotBeNil)
		})

		Convey("When strict resolution is enabled", func() {
			strict := normalize.New(testIndex(t), normalize.WithStrictResolve(true))
			row := validRow()
			row.AwayTeam = "Mystery Squad"
			_, rej := strict.FromRow(row, normalize.SourceSplits)
			So(rej, ShouldNotBeNil)
			So(rej.Reason, ShouldEqual, normalize.ReasonUnresolved)
		})
	})
}

func TestFromTweetSignal(t *testing.T) {
	Convey("Given a normalizer and graded tweets", t, func() {
		n := normalize.New(testIndex(t))

		Convey("When the tweet names two teams", func() {
			sig := model.TweetSignal{
				Timestamp: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
				Text:      "Cowboys getting 80% of tickets against the Chiefs",
				Strength:  types.StrengthHigh,
			}
			obs, rej := n.FromTweetSignal(sig, types.LeagueUnknown)

			Convey("Then the first-detected team takes the away slot", func() {
				So(rej, ShouldBeNil)
				So(obs.AwayTeam, ShouldEqual, "Dallas Cowboys")
				So(obs.HomeTeam, ShouldEqual, "Kansas City Chiefs")
				So(obs.Source, ShouldEqual, "TWITTER")
				So(obs.League, ShouldEqual, types.LeagueNFL)
			})
		})

		Convey("When the tweet names fewer than two teams", func() {
			sig := model.TweetSignal{Text: "Chiefs looking unstoppable"}
			_, rej := n.FromTweetSignal(sig, types.LeagueUnknown)
			So(rej, ShouldNotBeNil)
			So(rej.Reason, ShouldEqual, normalize.ReasonNoPair)
		})
	})
}

func TestParseTimestamp(t *testing.T) {
	Convey("Given timestamp spellings from different sources", t, func() {
		Convey("When parsing supported layouts", func() {
			for _, s := range []string{
				"2026-08-20T14:30:00Z",
				"2026-08-20T14:30:00",
				"2026-08-20 14:30:00",
				"2026-08-20 14:30",
				"2026-08-20",
			} {
				ts := normalize.ParseTimestamp(s)
				So(ts.IsZero(), ShouldBeFalse)
				So(ts.Year(), ShouldEqual, 2026)
			}
		})

		Convey("When parsing junk", func() {
			So(normalize.ParseTimestamp("yesterday").IsZero(), ShouldBeTrue)
			So(normalize.ParseTimestamp("").IsZero(), ShouldBeTrue)
		})
	})
}
