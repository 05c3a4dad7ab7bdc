package ocrtext_test

import (
	"testing"
	"time"

	"github.com/boardroomlabs/boardroom/internal/adapters/ocrtext"
	"github.com/boardroomlabs/boardroom/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

const gridText = `NFL Week 3 Handle vs Bets
Bills +2.5 64% 71%
Chiefs -2.5 36% 29%
`

const mgmText = `BETMGM MLB Games Tonight
Yankees at Red Sox
ML -145
72% of bets 81% of handle
`

func fixedClock() func() time.Time {
	ts := time.Date(2026, 8, 20, 15, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func TestParseGridLayout(t *testing.T) {
	Convey("Given a GRID screenshot text", t, func() {
		p := ocrtext.NewParser(
			ocrtext.WithAccountRules(ocrtext.DefaultAccountRules()),
			ocrtext.WithClock(fixedClock()),
		)

		Convey("When parsing under the account's grid rule", func() {
			rows, rep := p.Parse(gridText, "covers_20260820.txt")

			Convey("Then team lines pair top-to-bottom into three markets", func() {
				So(rep.Layout, ShouldEqual, ocrtext.LayoutGrid)
				So(len(rows), ShouldEqual, 3)
				markets := map[string]bool{}
				for _, row := range rows {
					So(row.AwayTeam, ShouldEqual, "Bills")
					So(row.HomeTeam, ShouldEqual, "Chiefs")
					So(row.Source, ShouldEqual, "GRID_OCR")
					So(row.League, ShouldEqual, "NFL")
					So(row.Timestamp, ShouldEqual, "2026-08-20T15:00:00")
					markets[row.Market] = true
				}
				So(markets, ShouldContainKey, "ML")
				So(markets, ShouldContainKey, "Spread")
				So(markets, ShouldContainKey, "Total")
			})

			Convey("And percentages come from the home line", func() {
				So(rows[0].TicketsPct, ShouldEqual, "36")
				So(rows[0].HandlePct, ShouldEqual, "29")
			})
		})
	})
}

func TestParseMGMLayout(t *testing.T) {
	Convey("Given an MGM screenshot text", t, func() {
		p := ocrtext.NewParser(
			ocrtext.WithAccountRules(ocrtext.DefaultAccountRules()),
			ocrtext.WithClock(fixedClock()),
		)

		Convey("When parsing under the account's MGM rule", func() {
			rows, rep := p.Parse(mgmText, "betmgm_slate.txt")

			Convey("Then the at-header yields away and home", func() {
				So(rep.Layout, ShouldEqual, ocrtext.LayoutMGM)
				So(len(rows), ShouldEqual, 3)
				So(rows[0].AwayTeam, ShouldEqual, "Yankees")
				So(rows[0].HomeTeam, ShouldEqual, "Red Sox")
				So(rows[0].Source, ShouldEqual, "MGM_OCR")
				So(rows[0].TicketsPct, ShouldEqual, "72")
				So(rows[0].HandlePct, ShouldEqual, "81")
			})
		})

		Convey("When no rule exists for the account", func() {
			rows, rep := p.Parse(mgmText, "random_account.txt")

			Convey("Then layout inference still finds MGM", func() {
				So(rep.InferredLayout, ShouldEqual, ocrtext.LayoutMGM)
				So(len(rows), ShouldEqual, 3)
			})
		})
	})
}

func TestDetectLayout(t *testing.T) {
	Convey("Given layout cue texts", t, func() {
		So(ocrtext.DetectLayout(mgmText), ShouldEqual, ocrtext.LayoutMGM)
		So(ocrtext.DetectLayout(gridText), ShouldEqual, ocrtext.LayoutGrid)
		So(ocrtext.DetectLayout("nothing to see"), ShouldEqual, ocrtext.LayoutAuto)

		Convey("When both cues appear, MGM branding wins", func() {
			both := "BETMGM splits Handle vs Bets"
			So(ocrtext.DetectLayout(both), ShouldEqual, ocrtext.LayoutMGM)
		})
	})
}

func TestInferLeague(t *testing.T) {
	Convey("Given texts with league signals", t, func() {
		Convey("When an explicit tag is present", func() {
			So(ocrtext.InferLeague("MLB betting splits"), ShouldEqual, types.LeagueMLB)
			So(ocrtext.InferLeague("NFL Week 1"), ShouldEqual, types.LeagueNFL)
			So(ocrtext.InferLeague("College Football Saturday"), ShouldEqual, types.LeagueNCAAF)
		})

		Convey("When only team words appear", func() {
			So(ocrtext.InferLeague("Yankees against the Dodgers tonight"), ShouldEqual, types.LeagueMLB)
			So(ocrtext.InferLeague("Cowboys host the Eagles"), ShouldEqual, types.LeagueNFL)
		})

		Convey("When a single team word is not enough", func() {
			So(ocrtext.InferLeague("Cowboys fans everywhere"), ShouldEqual, types.LeagueUnknown)
		})
	})
}

func TestHandleFromFilename(t *testing.T) {
	Convey("Given screenshot filenames", t, func() {
		So(ocrtext.HandleFromFilename("covers_abc123.txt"), ShouldEqual, "covers")
		So(ocrtext.HandleFromFilename("/drops/betmgm-today.txt"), ShouldEqual, "betmgm")
		So(ocrtext.HandleFromFilename("NoSeparator.txt"), ShouldEqual, "")
	})
}
