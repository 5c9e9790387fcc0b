package cmd

import (
	"github.com/spf13/cobra"
)

var itemsVerbose bool

var itemsCmd = &cobra.Command{
	Use:   "items [records] [type]",
	Short: "List all records of a type, as ids or full records",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		defer func() { _ = log.Sync() }() // safe to ignore

		registry, m, err := openModel(cmd, args[0], log)
		if err != nil {
			return err
		}
		defer func() { _ = registry.Close(m.ID) }() // safe to ignore

		if !itemsVerbose {
			ids, err := m.ItemIDsOfType(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, ids)
		}

		records, err := m.ItemsOfType(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		maps := make([]map[string]any, len(records))
		for i, r := range records {
			maps[i] = r.AsMap()
		}
		return printJSON(cmd, maps)
	},
}

func init() {
	itemsCmd.Flags().BoolVarP(&itemsVerbose, "verbose", "v", false, "emit full records instead of ids")
	rootCmd.AddCommand(itemsCmd)
}
