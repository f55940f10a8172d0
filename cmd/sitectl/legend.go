package main

import (
	"fmt"

	"github.com/couchcryptid/pollution-map-service/internal/domain"
	"github.com/spf13/cobra"
)

func newLegendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "legend",
		Short: "Print sector and compartment colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Sectors")
			for _, item := range domain.SectorLegend() {
				fmt.Fprintf(out, "  %s  %s\n", item.Color, item.Name)
			}
			fmt.Fprintln(out, "\nCompartments")
			for _, item := range domain.CompartmentLegend() {
				fmt.Fprintf(out, "  %s  %s\n", item.Color, item.Name)
			}
			return nil
		},
	}
}
