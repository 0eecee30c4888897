package main

import (
	"github.com/spf13/cobra"
)

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored place counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		counts, err := store.Counts(ctx)
		if err != nil {
			return err
		}
		return printJSON(counts)
	},
}
