package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"

	"github.com/spf13/cobra"
)

type schemaReport struct {
	Configured repository.SchemaCapabilities `json:"configured"`
	Detected   repository.SchemaCapabilities `json:"detected"`
	Effective  repository.SchemaCapabilities `json:"effective"`
	Strategy   string                        `json:"cancellation_strategy"`
	Error      string                        `json:"error,omitempty"`
}

func newSchemaCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show which cancellation shape the deployed schema supports",
		RunE: func(cmd *cobra.Command, args []string) error {
			configured, err := app.Config.Schema.Capabilities()
			if err != nil {
				return err
			}
			db, err := app.OpenDB()
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}

			report := schemaReport{Configured: configured}
			detected, detectErr := repository.DetectSchemaCapabilities(cmd.Context(), db)
			if detectErr != nil {
				report.Error = detectErr.Error()
			}
			report.Detected = detected
			report.Effective = configured.Merge(detected)
			report.Strategy = firstStrategy(report.Effective)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printSchemaReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

// firstStrategy names the cancellation write that will be attempted first.
func firstStrategy(caps repository.SchemaCapabilities) string {
	switch {
	case caps.CancelledStatus == repository.CapabilityUnsupported:
		return "notes_only"
	case caps.AuditColumns == repository.CapabilityUnsupported:
		return "status_only"
	default:
		return "status_with_audit"
	}
}

func printSchemaReport(w io.Writer, r schemaReport) {
	fmt.Fprintf(w, "%-18s %-12s %-12s %s\n", "CAPABILITY", "CONFIGURED", "DETECTED", "EFFECTIVE")
	fmt.Fprintf(w, "%-18s %-12s %-12s %s\n", "audit_columns",
		r.Configured.AuditColumns, r.Detected.AuditColumns, r.Effective.AuditColumns)
	fmt.Fprintf(w, "%-18s %-12s %-12s %s\n", "cancelled_status",
		r.Configured.CancelledStatus, r.Detected.CancelledStatus, r.Effective.CancelledStatus)
	fmt.Fprintf(w, "\nfirst cancellation strategy: %s\n", r.Strategy)
	if r.Error != "" {
		fmt.Fprintf(w, "detection error: %s\n", r.Error)
	}
}
