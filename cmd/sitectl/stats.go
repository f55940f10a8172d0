package main

import (
	"fmt"
	"sort"

	"github.com/couchcryptid/pollution-map-service/internal/domain"
	"github.com/spf13/cobra"
)

func newStatsCmd(opts *options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show site and pollution entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := opts.loadSites(cmd, file)
			if err != nil {
				return err
			}
			s := domain.Summarize(result)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Pollution Sites\n")
			fmt.Fprintf(out, "===============\n")
			fmt.Fprintf(out, "Geolocated sites:     %d\n", s.Sites)
			fmt.Fprintf(out, "Diffuse sites:        %d\n", s.DiffuseSites)
			fmt.Fprintf(out, "Pollution entries:    %d\n", s.PollutionEntries)
			fmt.Fprintf(out, "Sites without entries: %d\n", s.SitesWithoutData)

			if len(s.SectorBreakdown) > 0 {
				fmt.Fprintf(out, "\nPer-Sector Breakdown\n")
				fmt.Fprintf(out, "--------------------\n")
				for _, sc := range s.SectorBreakdown {
					fmt.Fprintf(out, "  %-40s %s  %3d\n", sc.Sector, sc.Color, sc.Sites)
				}
			}

			if len(s.CompartmentCounts) > 0 {
				fmt.Fprintf(out, "\nPer-Compartment Entries\n")
				fmt.Fprintf(out, "-----------------------\n")
				names := make([]string, 0, len(s.CompartmentCounts))
				for name := range s.CompartmentCounts {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "  %-40s %s  %3d\n", name, domain.CompartmentColor(name), s.CompartmentCounts[name])
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Read a saved feed response instead of fetching")
	return cmd
}
