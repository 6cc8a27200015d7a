package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmaguire/fairway-lottery/pkg/core/services"
)

// RunLotteryCmd creates the runLottery command
func RunLotteryCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runLottery <date>",
		Short: "Run the tee-time lottery for a date",
		Long:  "Run the lottery allocation for all pending requests on the given date (YYYY-MM-DD), groups first, then individuals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := args[0]
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			app.Logger.Debug("runLottery command",
				zap.String("date", date),
				zap.Bool("dry_run", dryRun))

			result, err := services.RunLottery(app.Ctx, app.Database, app.Cfg, app.Logger, date, dryRun)
			if err != nil {
				return fmt.Errorf("lottery run failed: %w", err)
			}

			// Display header
			fmt.Printf("\n⛳ Lottery Results for %s\n\n", result.Date)
			if dryRun {
				fmt.Printf("Mode:   🧪 DRY RUN (not saved)\n")
			} else {
				fmt.Printf("Mode:   ✅ Saved to database\n")
			}
			fmt.Printf("Period: %s\n\n", result.Period)

			// Display assignments in a table
			if len(result.Assignments) > 0 {
				fmt.Printf("📅 Assignments:\n\n")

				timeColWidth := 8
				playersColWidth := 40
				for _, a := range result.Assignments {
					if w := len(strings.Join(a.MemberIDs, ", ")); w > playersColWidth {
						playersColWidth = w
					}
				}

				fmt.Printf("%-*s  %-*s  %s\n",
					timeColWidth, "Time",
					playersColWidth, "Members",
					"Notes")
				fmt.Print(strings.Repeat("-", timeColWidth))
				fmt.Print("  ")
				fmt.Print(strings.Repeat("-", playersColWidth))
				fmt.Println("  -----")

				for _, a := range result.Assignments {
					notes := ""
					if a.PolicyFallback {
						notes = "fallback"
					} else if a.RuleLimited {
						notes = "rule-limited"
					}
					fmt.Printf("%-*s  %-*s  %s\n",
						timeColWidth, fmt.Sprintf("%02d:%02d", a.StartMinute/60, a.StartMinute%60),
						playersColWidth, strings.Join(a.MemberIDs, ", "),
						notes)
				}
				fmt.Println()
			}

			// Display skipped requests if any
			if len(result.Skipped) > 0 {
				fmt.Printf("⚠️  Skipped Requests (%d):\n", len(result.Skipped))
				for _, s := range result.Skipped {
					fmt.Printf("  • %s: %s\n", s.RequestID, s.Reason)
				}
				fmt.Println()
			}

			// Summary
			fmt.Printf("Summary:\n")
			fmt.Printf("  Total requests:   %d\n", result.Summary.TotalRequests)
			fmt.Printf("  Processed:        %d\n", result.Summary.ProcessedCount)
			fmt.Printf("  Bookings created: %d\n", result.Summary.BookingsCreated)
			fmt.Printf("  Fallbacks:        %d\n", result.Summary.FallbackCount)
			fmt.Printf("  Skipped:          %d\n", result.Summary.SkippedCount)
			fmt.Printf("  Still pending:    %d\n", result.Summary.PendingCount)
			fmt.Printf("  Fairness updated: %d\n\n", result.FairnessUpdated)

			if dryRun {
				fmt.Println("💡 This was a dry run. Use without --dry-run to save assignments.")
			}

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Run without saving to database")

	return cmd
}
