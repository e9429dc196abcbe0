package cli

import (
	"fmt"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/database"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/storage/objectstore"

	"github.com/spf13/cobra"
)

func newMigrateCmd(app *App) *cobra.Command {
	var withBucket bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or extend the portal tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.OpenDB()
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			if err := database.Migrate(cmd.Context(), db, app.Logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema migrated")

			if !withBucket {
				return nil
			}
			if !app.Config.Storage.Enabled() {
				return fmt.Errorf("--bucket needs MINIO_ENDPOINT or storage.endpoint")
			}
			store, err := objectstore.NewMinioStore(app.Config.Storage.ObjectStore())
			if err != nil {
				return err
			}
			if err := store.EnsureBucket(cmd.Context(), app.Config.Storage.Region); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bucket %s ready\n", app.Config.Storage.Bucket)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withBucket, "bucket", false, "also create the deliverables bucket")
	return cmd
}
