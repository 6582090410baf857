package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"filmloc/internal/catalog"
	"filmloc/internal/store"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("gather stats: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd, stats)
			}
			renderStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderStats(out io.Writer, stats store.Stats) {
	fmt.Fprintln(out, "Productions")
	fmt.Fprintf(out, "  Total: %d (movies %d, TV shows %d)\n", stats.Productions, stats.Movies, stats.TVShows)

	fmt.Fprintln(out, "\nLocations")
	fmt.Fprintf(out, "  Total: %d\n", stats.Locations)
	if len(stats.LocationsByCountry) > 0 {
		rows := make([][]string, 0, len(stats.LocationsByCountry))
		for _, entry := range stats.LocationsByCountry {
			rows = append(rows, []string{entry.Country, strconv.Itoa(entry.Count)})
		}
		fmt.Fprintln(out, renderTable(out, []string{"Country", "Locations"}, rows, []columnAlignment{alignLeft, alignRight}))
	}

	fmt.Fprintln(out, "\nFilming locations")
	fmt.Fprintf(out, "  Total: %d (verified %d, unverified %d)\n", stats.FilmingLocations, stats.Verified, stats.Unverified)
	fmt.Fprintf(out, "  Pending submissions: %d\n", stats.PendingSubmissions)

	if len(stats.TopProductions) > 0 {
		fmt.Fprintln(out, "\nTop productions by location count")
		rows := make([][]string, 0, len(stats.TopProductions))
		for _, ref := range stats.TopProductions {
			rows = append(rows, []string{ref.Title, typeLabel(ref.Type), strconv.Itoa(ref.LocationCount)})
		}
		fmt.Fprintln(out, renderTable(out, []string{"Production", "Type", "Locations"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	}

	if len(stats.RecentAdditions) > 0 {
		fmt.Fprintln(out, "\nRecent additions")
		rows := make([][]string, 0, len(stats.RecentAdditions))
		for _, row := range stats.RecentAdditions {
			rows = append(rows, []string{row.ProductionTitle, row.LocationName, placeLabel(row.City, row.Country), yesNo(row.Verified)})
		}
		fmt.Fprintln(out, renderTable(out, []string{"Production", "Location", "Place", "Verified"}, rows, nil))
	}
}

func typeLabel(kind catalog.ProductionType) string {
	switch kind {
	case catalog.ProductionTVShow:
		return "TV show"
	case catalog.ProductionMovie:
		return "Movie"
	default:
		return string(kind)
	}
}

func placeLabel(city, country string) string {
	if city == "" {
		return country
	}
	return city + ", " + country
}
