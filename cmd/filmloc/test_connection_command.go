package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"filmloc/internal/catalog"
)

const connectionSampleSize = 5

type connectionReport struct {
	Driver           string               `json:"driver"`
	Target           string               `json:"target"`
	Migrations       []string             `json:"migrations"`
	Productions      []catalog.Production `json:"productions"`
	FilmingLocations int                  `json:"filming_locations"`
}

func newTestConnectionCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "test-connection",
		Short: "Check database connectivity and list a few productions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}

			report := connectionReport{Driver: st.Driver(), Target: st.Target()}
			if report.Migrations, err = st.AppliedMigrations(cmd.Context()); err != nil {
				return err
			}
			if report.Productions, err = st.ListProductions(cmd.Context(), connectionSampleSize); err != nil {
				return err
			}
			if report.FilmingLocations, err = st.CountFullView(cmd.Context()); err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Connected to %s (%s)\n", report.Target, report.Driver)
			fmt.Fprintf(out, "Schema versions: %d\n", len(report.Migrations))
			fmt.Fprintf(out, "Productions (showing up to %d): %d\n", connectionSampleSize, len(report.Productions))
			for _, production := range report.Productions {
				fmt.Fprintf(out, "  - %s (%s)\n", production.Title, typeLabel(production.Type))
			}
			fmt.Fprintf(out, "Filming locations view rows: %d\n", report.FilmingLocations)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
