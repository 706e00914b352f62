package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/config"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/eventlog"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/simulate"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "audit",
		Short:         "Reliability audit tooling for the scan pipeline",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	defaults := config.Default().Simulator

	var (
		scans     int
		failRate  float64
		threshold float64
		alertURL  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a reliability simulation against the scan pipeline",
		Long: "Runs synthetic scans through the real provider fan-out, fails a " +
			"pre-labeled share of them, and compares the observed failure rate " +
			"to the alert threshold. Exits non-zero when the threshold is breached.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if failRate < 0 || failRate > 1 {
				return fmt.Errorf("fail-rate must be in [0,1], got %v", failRate)
			}

			store.Init()
			harness := simulate.New(eventlog.New(), threshold, alertURL)

			failLabels := labelFailures(scans, failRate)
			report, err := harness.Run(cmd.Context(), scans, failLabels)
			if err != nil {
				return err
			}

			for _, outcome := range report.Outcomes {
				state := "pass"
				if outcome.Failed {
					state = "fail"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "scan %3d  %s  %s\n", outcome.Index, state, outcome.ScanID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nfailure rate: %.2f%% (%d/%d), threshold: %.2f%%\n",
				report.FailureRate*100, report.FailedScans, report.TotalScans, report.Threshold*100)

			if report.Alerted {
				return fmt.Errorf("failure rate %.2f%% breached threshold %.2f%%",
					report.FailureRate*100, report.Threshold*100)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&scans, "scans", 10, "number of synthetic scans to run")
	cmd.Flags().Float64Var(&failRate, "fail-rate", 0, "share of scans pre-labeled to fail, in [0,1]")
	cmd.Flags().Float64Var(&threshold, "threshold", defaults.FailureAlertThreshold, "failure rate above which the alert fires")
	cmd.Flags().StringVar(&alertURL, "alert-url", defaults.AlertURL, "endpoint to POST the alert payload to")

	return cmd
}

// labelFailures spreads round(n*rate) failures evenly over the scan
// indices so short runs still exercise both outcomes.
func labelFailures(n int, rate float64) map[int]bool {
	count := int(math.Round(float64(n) * rate))
	if count <= 0 {
		return nil
	}
	if count > n {
		count = n
	}

	labels := make(map[int]bool, count)
	step := float64(n) / float64(count)
	for i := 0; i < count; i++ {
		labels[int(float64(i)*step)] = true
	}
	return labels
}
