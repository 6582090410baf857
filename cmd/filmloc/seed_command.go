package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"filmloc/internal/seed"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load bundled sample data",
	}
	seedCmd.AddCommand(newSeedDatasetCommand(ctx, "sample", "Load the starter productions and locations"))
	seedCmd.AddCommand(newSeedDatasetCommand(ctx, "more", "Load the additional productions and locations"))
	return seedCmd
}

func newSeedDatasetCommand(ctx *commandContext, name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, ok := seed.ByName(name)
			if !ok {
				return fmt.Errorf("unknown dataset %q", name)
			}
			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loading %s data into %s...\n", dataset.Name, st.Target())
			report, err := seed.NewLoader(st, logger).Load(cmd.Context(), dataset)
			for _, link := range report.Links {
				fmt.Fprintf(out, "Linked %s -> %s\n", link.Production.Title, link.Location.Name)
			}
			if err != nil {
				return err
			}

			total, err := st.CountFullView(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Resolved %d productions and %d locations\n", report.Productions, report.Locations)
			fmt.Fprintf(out, "Total filming locations: %d\n", total)
			return nil
		},
	}
}
