package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/boardroomlabs/boardroom/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		for _, key := range []string{
			"BOARDROOM_CONFIG", "BOARDROOM_MIN_SIGNALS",
			"BOARDROOM_OBSERVATION_LOG", "BOARDROOM_STAR5_MIN",
		} {
			So(os.Unsetenv(key), ShouldBeNil)
		}
		ctx := context.Background()

		Convey("When loading with no file and no env", func() {
			cfg, err := config.Load(ctx)

			Convey("Then defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.ObservationLog, ShouldEqual, "splits.csv")
				So(cfg.LookbackHours, ShouldEqual, 72)
				So(cfg.MinSignals, ShouldEqual, 2)
				So(cfg.Star5Min, ShouldEqual, 6.0)
				So(cfg.Star4Min, ShouldEqual, 3.5)
				So(cfg.PromoteMinRows, ShouldEqual, 25)
			})
		})

		Convey("When a YAML file is provided", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "boardroom.yaml")
			body := "observation_log: custom.csv\nmin_signals: 3\n"
			So(os.WriteFile(path, []byte(body), 0o644), ShouldBeNil)
			So(os.Setenv("BOARDROOM_CONFIG", path), ShouldBeNil)
			defer os.Unsetenv("BOARDROOM_CONFIG")

			cfg, err := config.Load(ctx)

			Convey("Then file values override defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.ObservationLog, ShouldEqual, "custom.csv")
				So(cfg.MinSignals, ShouldEqual, 3)
				So(cfg.LookbackHours, ShouldEqual, 72) // untouched default
			})
		})

		Convey("When env vars are set on top of a file", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "boardroom.yaml")
			So(os.WriteFile(path, []byte("min_signals: 3\n"), 0o644), ShouldBeNil)
			So(os.Setenv("BOARDROOM_CONFIG", path), ShouldBeNil)
			So(os.Setenv("BOARDROOM_MIN_SIGNALS", "4"), ShouldBeNil)
			defer func() {
				os.Unsetenv("BOARDROOM_CONFIG")
				os.Unsetenv("BOARDROOM_MIN_SIGNALS")
			}()

			cfg, err := config.Load(ctx)

			Convey("Then env wins over the file", func() {
				So(err, ShouldBeNil)
				So(cfg.MinSignals, ShouldEqual, 4)
			})
		})

		Convey("When the config file is missing", func() {
			So(os.Setenv("BOARDROOM_CONFIG", filepath.Join(t.TempDir(), "absent.yaml")), ShouldBeNil)
			defer os.Unsetenv("BOARDROOM_CONFIG")

			_, err := config.Load(ctx)
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})

		Convey("When validation fails", func() {
			So(os.Setenv("BOARDROOM_OBSERVATION_LOG", ""), ShouldBeNil)
			defer os.Unsetenv("BOARDROOM_OBSERVATION_LOG")

			_, err := config.Load(ctx)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When star thresholds are inverted", func() {
			So(os.Setenv("BOARDROOM_STAR5_MIN", "2.0"), ShouldBeNil)
			defer os.Unsetenv("BOARDROOM_STAR5_MIN")

			_, err := config.Load(ctx)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
