package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newDumpCmd(opts *options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the parsed sites as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := opts.loadSites(cmd, file)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Read a saved feed response instead of fetching")
	return cmd
}
