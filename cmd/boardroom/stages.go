package main

import (
	service "github.com/boardroomlabs/boardroom/internal/app"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Parse OCR text drops and grade the tweet export",
	Long: `Parse every OCR text file in the drop directory into observation rows,
append them to the observation log, and grade the raw tweet export into
the signal feed. Missing sources are skipped; ingest is additive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		return svc.Ingest(cmd.Context())
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Validate and deduplicate the observation log",
	Long: `Validate every logged row, write rejects to the flagged side-channel,
collapse exact duplicates, and keep only the latest row per game and
market series. The cleaned set only replaces the log when it clears the
promotion floor; below it the log is left byte-for-byte untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		return svc.Clean(cmd.Context())
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render per-game market snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		return svc.Snapshot(cmd.Context())
	},
}

var picksCmd = &cobra.Command{
	Use:   "picks",
	Short: "Score the signal feed and write the ranked picks report",
	Long: `Score the graded signal feed, apply the star-rating gates, and write
the ranked picks report. The signal feed is the one required input; its
absence is an error. A clean run that promotes nothing exits 78.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		outcome, err := svc.Picks(cmd.Context())
		if err != nil {
			return err
		}
		if outcome == service.OutcomeNoPicks {
			return errNoPicks
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full chain: ingest, clean, snapshot, picks",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		outcome, err := svc.Run(cmd.Context())
		if err != nil {
			return err
		}
		if outcome == service.OutcomeNoPicks {
			return errNoPicks
		}
		return nil
	},
}
