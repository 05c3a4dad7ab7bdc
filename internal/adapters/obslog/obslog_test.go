package obslog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boardroomlabs/boardroom/internal/adapters/obslog"
	"github.com/boardroomlabs/boardroom/internal/domain/model"
	"github.com/boardroomlabs/boardroom/internal/domain/normalize"
	"github.com/boardroomlabs/boardroom/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleObs(ts time.Time) model.Observation {
	return model.Observation{
		Timestamp:  ts,
		League:     types.LeagueNFL,
		AwayTeam:   "Buffalo Bills",
		HomeTeam:   "Kansas City Chiefs",
		Market:     types.MarketSpread,
		TicketsPct: model.Float(64),
		HandlePct:  model.Float(71.5),
		Line:       model.Float(-2.5),
		Source:     "GRID_OCR",
	}
}

func TestStoreRoundTrip(t *testing.T) {
	Convey("Given a store over a fresh log path", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "splits.csv")
		store := obslog.New(path)
		ctx := context.Background()
		ts := time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)

		Convey("When reading a missing file", func() {
			rows, err := store.Read(ctx)

			Convey("Then the empty state is normal, not an error", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldBeEmpty)
			})
		})

		Convey("When appending then reading", func() {
			So(store.Append(ctx, []model.Observation{sampleObs(ts)}), ShouldBeNil)
			rows, err := store.Read(ctx)

			Convey("Then fields survive the round trip", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 1)
				So(rows[0].AwayTeam, ShouldEqual, "Buffalo Bills")
				So(rows[0].TicketsPct, ShouldEqual, "64")
				So(rows[0].HandlePct, ShouldEqual, "71.5")
				So(rows[0].Line, ShouldEqual, "-2.5")
				So(rows[0].Timestamp, ShouldEqual, "2026-08-20T14:00:00Z")
			})

			Convey("And a second append does not duplicate the header", func() {
				So(store.Append(ctx, []model.Observation{sampleObs(ts.Add(time.Hour))}), ShouldBeNil)
				rows, err := store.Read(ctx)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
			})
		})

		Convey("When the file is malformed", func() {
			So(os.WriteFile(path, []byte("a,b\n\"unterminated\n"), 0o644), ShouldBeNil)
			_, err := store.Read(ctx)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, obslog.ErrMalformedLog.Error())
		})
	})
}

func TestPromote(t *testing.T) {
	Convey("Given a store with a promotion floor", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "splits.csv")
		store := obslog.New(path, obslog.WithPromoteMinRows(3))
		ctx := context.Background()
		ts := time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)

		So(store.Append(ctx, []model.Observation{
			sampleObs(ts), sampleObs(ts.Add(time.Hour)), sampleObs(ts.Add(2 * time.Hour)),
		}), ShouldBeNil)
		before, err := os.ReadFile(path)
		So(err, ShouldBeNil)

		Convey("When the clean set is below the floor", func() {
			promoted, err := store.Promote(ctx, []model.Observation{sampleObs(ts)})

			Convey("Then the previous log is byte-for-byte untouched", func() {
				So(err, ShouldBeNil)
				So(promoted, ShouldBeFalse)
				after, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(after), ShouldEqual, string(before))
			})
		})

		Convey("When the clean set clears the floor", func() {
			clean := []model.Observation{
				sampleObs(ts), sampleObs(ts.Add(time.Hour)), sampleObs(ts.Add(2 * time.Hour)),
			}
			clean[0].TicketsPct = model.Float(60)
			promoted, err := store.Promote(ctx, clean)

			Convey("Then the log is atomically replaced", func() {
				So(err, ShouldBeNil)
				So(promoted, ShouldBeTrue)
				rows, err := store.Read(ctx)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 3)
				So(rows[0].TicketsPct, ShouldEqual, "60")
			})

			Convey("And no temp files are left behind", func() {
				entries, err := os.ReadDir(dir)
				So(err, ShouldBeNil)
				for _, e := range entries {
					So(e.Name(), ShouldNotStartWith, ".splits-")
				}
			})
		})
	})
}

func TestWriteFlagged(t *testing.T) {
	Convey("Given rejected rows", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "audit", "flagged.csv")
		rejects := []normalize.Reject{
			{
				Row:    normalize.RawRow{League: "EPL", AwayTeam: "Arsenal", HomeTeam: "Spurs"},
				Reason: normalize.ReasonLeague,
			},
			{Text: "no teams here", Reason: normalize.ReasonNoPair},
		}

		Convey("When writing the flagged file", func() {
			So(obslog.WriteFlagged(path, rejects), ShouldBeNil)
			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)

			Convey("Then rows carry their reasons", func() {
				So(string(raw), ShouldContainSubstring, "_flag_reason")
				So(string(raw), ShouldContainSubstring, "league")
				So(string(raw), ShouldContainSubstring, "no teams here")
				So(string(raw), ShouldContainSubstring, "no_pair")
			})
		})

		Convey("When the reject set is empty", func() {
			So(obslog.WriteFlagged(path, nil), ShouldBeNil)
			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)

			Convey("Then a header still replaces any stale flags", func() {
				So(string(raw), ShouldContainSubstring, "_flag_reason")
			})
		})
	})
}
