package resolve_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/boardroomlabs/boardroom/internal/domain/dictionary"
	"github.com/boardroomlabs/boardroom/internal/domain/resolve"
	"github.com/boardroomlabs/boardroom/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func buildIndex(t testing.TB, files map[string]struct {
	league types.League
	body   string
}) *dictionary.Index {
	t.Helper()
	dir := t.TempDir()
	var sources []dictionary.Source
	for name, f := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(f.body), 0o644); err != nil {
			t.Fatal(err)
		}
		sources = append(sources, dictionary.Source{League: f.league, Path: path})
	}
	idx, err := dictionary.Load(context.Background(), sources)
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func nflIndex(t testing.TB) *dictionary.Index {
	return buildIndex(t, map[string]struct {
		league types.League
		body   string
	}{
		"nfl.json": {types.LeagueNFL, `{
			"Kansas City Chiefs": ["CHIEFS", "KC"],
			"Buffalo Bills": ["BILLS"],
			"Tampa Bay Buccaneers": ["BUCS", "TAMPA BAY"],
			"Green Bay Packers": ["PACKERS", "GB"]
		}`},
	})
}

func TestDetectTeams(t *testing.T) {
	Convey("Given a resolver over an NFL index", t, func() {
		r := resolve.New(nflIndex(t))

		Convey("When the text mentions two teams", func() {
			hits := r.DetectTeams("Bills at Chiefs tonight, public on Buffalo")

			Convey("Then hits come in text order, one per team", func() {
				So(len(hits), ShouldEqual, 2)
				So(hits[0].Team, ShouldEqual, "Buffalo Bills")
				So(hits[1].Team, ShouldEqual, "Kansas City Chiefs")
				So(hits[0].Pos, ShouldBeLessThan, hits[1].Pos)
			})
		})

		Convey("When a long alias contains a shorter one", func() {
			hits := r.DetectTeams("Tampa Bay getting heavy handle vs Green Bay")

			Convey("Then the longer span claims the text first", func() {
				So(len(hits), ShouldEqual, 2)
				So(hits[0].Team, ShouldEqual, "Tampa Bay Buccaneers")
				So(hits[1].Team, ShouldEqual, "Green Bay Packers")
			})
		})

		Convey("When matching is case-insensitive", func() {
			hits := r.DetectTeams("chiefs favored over BILLS")

			Convey("Then both resolve", func() {
				So(len(hits), ShouldEqual, 2)
			})
		})

		Convey("When an alias appears inside a larger word", func() {
			hits := r.DetectTeams("gbx and kcq are not teams")

			Convey("Then word boundaries prevent the match", func() {
				So(hits, ShouldBeEmpty)
			})
		})

		Convey("When the text is empty", func() {
			So(r.DetectTeams(""), ShouldBeEmpty)
		})
	})
}

func TestChoosePair(t *testing.T) {
	Convey("Given hits across leagues", t, func() {
		idx := buildIndex(t, map[string]struct {
			league types.League
			body   string
		}{
			"nfl.json": {types.LeagueNFL, `{
				"Kansas City Chiefs": ["CHIEFS"],
				"Buffalo Bills": ["BILLS"]
			}`},
			"mlb.json": {types.LeagueMLB, `{
				"New York Yankees": ["YANKEES"]
			}`},
		})
		r := resolve.New(idx)

		Convey("When one league has two teams and another has one", func() {
			hits := r.DetectTeams("Yankees fans watching Bills at Chiefs")
			pair, ok := resolve.ChoosePair(hits, types.LeagueUnknown)

			Convey("Then the dominant league supplies the pair in text order", func() {
				So(ok, ShouldBeTrue)
				So(pair.Method, ShouldEqual, resolve.MethodDominantLeague)
				So(pair.League, ShouldEqual, types.LeagueNFL)
				So(pair.First, ShouldEqual, "Buffalo Bills")
				So(pair.Second, ShouldEqual, "Kansas City Chiefs")
			})
		})

		Convey("When a hint league has at least two hits", func() {
			hits := r.DetectTeams("Bills at Chiefs")
			pair, ok := resolve.ChoosePair(hits, types.LeagueNFL)

			Convey("Then the hint wins and is recorded", func() {
				So(ok, ShouldBeTrue)
				So(pair.Method, ShouldEqual, resolve.MethodHintDominant)
				So(pair.League, ShouldEqual, types.LeagueNFL)
			})
		})

		Convey("When the hint league has fewer than two hits", func() {
			hits := r.DetectTeams("Yankees and Bills and Chiefs")
			pair, ok := resolve.ChoosePair(hits, types.LeagueMLB)

			Convey("Then selection falls back to the dominant league", func() {
				So(ok, ShouldBeTrue)
				So(pair.Method, ShouldEqual, resolve.MethodDominantLeague)
				So(pair.League, ShouldEqual, types.LeagueNFL)
			})
		})

		Convey("When no league reaches two teams", func() {
			hits := r.DetectTeams("Yankees and Chiefs")
			_, ok := resolve.ChoosePair(hits, types.LeagueUnknown)

			Convey("Then no pair is produced rather than a cross-league guess", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When fewer than two teams are mentioned", func() {
			hits := r.DetectTeams("Chiefs looking strong")
			_, ok := resolve.ChoosePair(hits, types.LeagueUnknown)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestCleanTeamLabel(t *testing.T) {
	Convey("Given raw OCR team labels", t, func() {
		cases := map[string]string{
			"Chiefs -3.5":    "Chiefs",
			"Bills +7 -110":  "Bills",
			"O 47.5 Packers": "Packers",
			"Cowboys   at":   "Cowboys",
			"  Eagles  ":     "Eagles",
			"U 8.5":          "",
		}
		for in, want := range cases {
			So(resolve.CleanTeamLabel(in), ShouldEqual, want)
		}
	})
}

func TestFallbackEntity(t *testing.T) {
	Convey("Given text with no dictionary matches", t, func() {
		stop := resolve.StopEntities()

		Convey("When a token carries a spread", func() {
			got := resolve.FallbackEntity("heavy money on PHI -3.5 tonight", stop)
			So(got, ShouldEqual, "PHI")
		})

		Convey("When only bare tokens exist", func() {
			got := resolve.FallbackEntity("watch out for DET this week", stop)
			So(got, ShouldEqual, "DET")
		})

		Convey("When every candidate is a stopword", func() {
			got := resolve.FallbackEntity("THE NFL TOTAL IS OVER", stop)
			So(got, ShouldEqual, "")
		})

		Convey("When a stopword carries the spread", func() {
			got := resolve.FallbackEntity("TOTAL -7 but DAL looks live", stop)
			So(got, ShouldEqual, "DAL")
		})
	})
}

func BenchmarkDetectTeams(b *testing.B) {
	r := resolve.New(nflIndex(b))
	text := "Public money hammering the Chiefs at Buffalo, sharps quietly on the Bucs while GB drifts"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.DetectTeams(text)
	}
}
