package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmaguire/fairway-lottery/cmd/cli/commands"
	"github.com/dmaguire/fairway-lottery/internal/config"
	"github.com/dmaguire/fairway-lottery/pkg/postgres"
	"github.com/dmaguire/fairway-lottery/pkg/utils/logging"
)

var (
	env string
	app *commands.AppContext
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Fairway Lottery CLI - Allocate tee times fairly",
		Long:  `A CLI tool for running the tee-time lottery, reviewing fairness scores, and publishing tee sheets.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.Database != nil {
					app.Database.Close()
				}
				if app.Logger != nil {
					app.Logger.Sync()
				}
			}
		},
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	// Add all commands
	rootCmd.AddCommand(commands.RunLotteryCmd(appRef()))
	rootCmd.AddCommand(commands.FairnessReportCmd(appRef()))
	rootCmd.AddCommand(commands.PublishTeeSheetCmd(appRef()))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appRef returns the shared AppContext, allocating it before initApp runs
// so command constructors can capture the same pointer.
func appRef() *commands.AppContext {
	if app == nil {
		app = &commands.AppContext{}
	}
	return app
}

// initApp sets up logger, config, and database
func initApp() error {
	var err error
	a := appRef()
	a.Env = env
	a.Ctx = context.Background()

	// Initialize logger
	a.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	a.Logger.Info("Loading configuration")
	a.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.Logger.Debug("Configuration loaded successfully")

	// Connect to the database and apply migrations
	a.Logger.Info("Connecting to database")
	a.Database, err = postgres.NewDB(a.Ctx, a.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	a.Logger.Info("Running migrations")
	if err := a.Database.RunMigrations(a.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	a.Logger.Info("Database initialized successfully")

	return nil
}
