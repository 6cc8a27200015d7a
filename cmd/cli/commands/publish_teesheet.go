package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmaguire/fairway-lottery/internal/config"
	"github.com/dmaguire/fairway-lottery/pkg/clients/sheetsclient"
	"github.com/dmaguire/fairway-lottery/pkg/core/services"
)

// PublishTeeSheetCmd creates the publishTeeSheet command. The Sheets
// client is built here rather than at startup so the OAuth flow only
// runs when publishing is actually requested.
func PublishTeeSheetCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publishTeeSheet <date>",
		Short: "Publish the tee sheet for a date to Google Sheets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := args[0]

			app.Logger.Debug("publishTeeSheet command", zap.String("date", date))

			oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
			if err != nil {
				return fmt.Errorf("failed to load OAuth client config: %w", err)
			}

			sheetsClient, err := sheetsclient.NewClient(app.Ctx, oauthCfg, app.Env)
			if err != nil {
				return fmt.Errorf("failed to create sheets client: %w", err)
			}

			result, err := services.PublishTeeSheet(
				app.Ctx,
				app.Database,
				sheetsClient,
				app.Cfg,
				app.Logger,
				date,
			)
			if err != nil {
				return fmt.Errorf("publish failed: %w", err)
			}

			fmt.Printf("\n✅ Tee sheet published!\n\n")
			fmt.Printf("Date:        %s\n", result.Date)
			fmt.Printf("Spreadsheet: %s\n", result.SpreadsheetID)
			fmt.Printf("Tee times:   %d\n", result.RowCount)
			fmt.Printf("Players:     %d\n\n", result.PlayerCount)

			return nil
		},
	}
}
