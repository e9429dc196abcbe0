package cli

import (
	"io"
	"log/slog"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/config"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// App holds what the operator commands need. OpenDB is called lazily so that
// commands which never touch the database do not require one.
type App struct {
	Config config.Config
	Logger *slog.Logger
	OpenDB func() (*gorm.DB, error)
	Out    io.Writer
}

// NewRootCmd creates the top-level "portalctl" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Operator tasks for the client portal database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.Out)

	root.AddCommand(
		newMigrateCmd(app),
		newSchemaCmd(app),
		newCreateUserCmd(app),
	)
	return root
}
