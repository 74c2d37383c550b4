package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/devansh054/dev-pulse-sub000/internal/scoring"
)

var (
	scoreDays int
	scoreSave bool
)

var scoreCmd = &cobra.Command{
	Use:   "score <user-id>",
	Short: "Print health, burnout and trend scores for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		userID := args[0]
		if scoreSave {
			report, err := a.Insights.Generate(cmd.Context(), userID)
			if err != nil {
				return err
			}
			printScores(cmd.OutOrStdout(), report.Health, report.Burnout, report.Trend)
			fmt.Fprintf(cmd.OutOrStdout(), "stored %d insights\n", len(report.Insights))
			return nil
		}

		metrics, err := a.Metrics.Trailing(cmd.Context(), userID, scoreDays)
		if err != nil {
			return err
		}
		printScores(cmd.OutOrStdout(),
			scoring.HealthScore(metrics, a.Thresholds),
			scoring.GenerateBurnoutPrediction(metrics, a.Thresholds),
			scoring.ProductivityTrend(metrics))
		return nil
	},
}

func init() {
	scoreCmd.Flags().IntVar(&scoreDays, "days", 30, "days of metrics to score")
	scoreCmd.Flags().BoolVar(&scoreSave, "save", false, "regenerate and store insights")
	rootCmd.AddCommand(scoreCmd)
}

func printScores(out io.Writer, health scoring.HealthResult, burnout *scoring.BurnoutPrediction, trend scoring.Trend) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(out, "%s %d/100", cyan("Health:"), health.Score)
	if !health.Sufficient {
		fmt.Fprintf(out, " %s", gray("(not enough data)"))
	}
	fmt.Fprintln(out)

	if burnout == nil {
		fmt.Fprintf(out, "%s %s\n", cyan("Burnout:"), gray("not enough data"))
	} else {
		fmt.Fprintf(out, "%s %s (%.2f)\n", cyan("Burnout:"), riskColor(burnout.Level)(burnout.Level), burnout.RiskScore)
		for _, f := range burnout.Factors {
			fmt.Fprintf(out, "  - %s\n", f)
		}
	}

	fmt.Fprintf(out, "%s %s %+.1f%% (%d vs %d)\n", cyan("Trend:"), trend.Direction, trend.ChangePercent, trend.Current, trend.Previous)
}

func riskColor(level string) func(a ...interface{}) string {
	switch level {
	case scoring.RiskHigh:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case scoring.RiskModerate:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgGreen).SprintFunc()
	}
}
