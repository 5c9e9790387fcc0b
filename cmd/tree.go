package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var treeProps bool

var treeCmd = &cobra.Command{
	Use:   "tree [records]",
	Short: "Print a model's spatial structure as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		defer func() { _ = log.Sync() }() // safe to ignore

		registry, m, err := openModel(cmd, args[0], log)
		if err != nil {
			return err
		}
		defer func() { _ = registry.Close(m.ID) }() // safe to ignore

		root, err := m.SpatialStructure(cmd.Context(), treeProps)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(root, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal tree: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	treeCmd.Flags().BoolVar(&treeProps, "props", false, "inline each node's property payload")
	rootCmd.AddCommand(treeCmd)
}
