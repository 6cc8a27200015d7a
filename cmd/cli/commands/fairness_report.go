package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmaguire/fairway-lottery/pkg/core/lottery"
	"github.com/dmaguire/fairway-lottery/pkg/core/services"
)

// FairnessReportCmd creates the fairnessReport command
func FairnessReportCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fairnessReport [period]",
		Short: "Show per-member fairness scores for a period (defaults to the current month)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period := lottery.Period(time.Now())
			if len(args) > 0 {
				period = args[0]
			}

			app.Logger.Debug("fairnessReport command", zap.String("period", period))

			result, err := services.FairnessReport(app.Ctx, app.Database, app.Logger, period)
			if err != nil {
				return fmt.Errorf("fairness report failed: %w", err)
			}

			fmt.Printf("\n📊 Fairness Report for %s\n\n", result.Period)

			if len(result.Rows) == 0 {
				fmt.Println("No fairness records for this period yet.")
				return nil
			}

			nameColWidth := 20
			for _, row := range result.Rows {
				if len(row.MemberName) > nameColWidth {
					nameColWidth = len(row.MemberName)
				}
			}

			fmt.Printf("%-*s  %7s  %7s  %9s  %6s  %5s\n",
				nameColWidth, "Member", "Entries", "Granted", "Fulfilled", "Streak", "Score")
			fmt.Print(strings.Repeat("-", nameColWidth))
			fmt.Println("  -------  -------  ---------  ------  -----")

			for _, row := range result.Rows {
				fmt.Printf("%-*s  %7d  %7d  %8.0f%%  %6d  %5.1f\n",
					nameColWidth, row.MemberName,
					row.TotalEntries,
					row.PreferencesGranted,
					row.FulfillmentRate*100,
					row.MissStreak,
					row.FairnessScore)
			}
			fmt.Println()

			return nil
		},
	}
}
