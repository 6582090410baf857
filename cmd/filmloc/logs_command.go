package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"filmloc/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		source string
		grep   []string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			filter := logs.Filter{Contains: grep}
			if source != "" {
				filter.Contains = append(filter.Contains, source)
			}

			out := cmd.OutOrStdout()
			recent, offset, err := logs.Last(cfg.LogPath(), lines, filter)
			if err != nil {
				return err
			}
			for _, line := range recent {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			err = logs.Follow(cmd.Context(), cfg.LogPath(), offset, logs.DefaultPoll, filter, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().StringVar(&source, "source", "", "Only show lines mentioning this source")
	cmd.Flags().StringSliceVar(&grep, "grep", nil, "Only show lines containing every value")
	return cmd
}
