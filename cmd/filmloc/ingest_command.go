package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"filmloc/internal/logging"
	"filmloc/internal/sources"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>",
		Short: "Reconcile a JSON-lines file of location records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open records: %w", err)
			}
			defer file.Close()

			batch, err := sources.ReadRecords(cmd.Context(), file, 0)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			for _, bad := range batch.Skipped {
				logging.WarnWithContext(logger, "skipping undecodable line", "record_line_skipped",
					logging.String("path", args[0]),
					logging.Int("line", bad.Line),
					logging.Error(bad.Err),
				)
			}
			records := batch.Records
			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			pipeline, err := ctx.newPipeline(st)
			if err != nil {
				return err
			}

			summary, err := pipeline.ProcessAll(cmd.Context(), records)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Records: %d\n", len(records))
			fmt.Fprintf(out, "Processed: %d\n", summary.Processed)
			fmt.Fprintf(out, "Failed: %d\n", summary.Failed)
			fmt.Fprintf(out, "Sent for review: %d\n", summary.Submitted)
			fmt.Fprintf(out, "Skipped lines: %d\n", len(batch.Skipped))
			if err != nil {
				return err
			}
			if len(batch.Skipped) > 0 {
				return fmt.Errorf("%d lines of %s could not be decoded (first at line %d)",
					len(batch.Skipped), args[0], batch.Skipped[0].Line)
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d records failed", summary.Failed, len(records))
			}
			return nil
		},
	}
}
