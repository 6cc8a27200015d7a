package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/dmaguire/fairway-lottery/internal/config"
	"github.com/dmaguire/fairway-lottery/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands.
// The Sheets client is not here: only publishTeeSheet needs Google and the
// OAuth flow should not run for plain database commands.
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Database *postgres.DB
	Logger   *zap.Logger
	Ctx      context.Context
}
