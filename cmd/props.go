package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentic-research/ifcgraph/internal/model"
	"github.com/agentic-research/ifcgraph/internal/props"
	"github.com/agentic-research/ifcgraph/internal/store"
)

var (
	propsRecursive bool
	propsKind      string
	propsSelect    string
)

var propsCmd = &cobra.Command{
	Use:   "props [records] [element-id]",
	Short: "Print the property sets, type object, or materials of an element",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		elementID, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("parse element id %q: %w", args[1], err)
		}

		log := newLogger()
		defer func() { _ = log.Sync() }() // safe to ignore

		registry, m, err := openModel(cmd, args[0], log)
		if err != nil {
			return err
		}
		defer func() { _ = registry.Close(m.ID) }() // safe to ignore

		records, err := relatedByKind(cmd.Context(), m, uint32(elementID))
		if err != nil {
			return err
		}

		if propsSelect != "" {
			values, err := props.Select(records, propsSelect)
			if err != nil {
				return err
			}
			return printJSON(cmd, values)
		}

		maps := make([]map[string]any, len(records))
		for i, r := range records {
			maps[i] = r.AsMap()
		}
		return printJSON(cmd, maps)
	},
}

func relatedByKind(ctx context.Context, m *model.Model, elementID uint32) ([]*store.Record, error) {
	switch propsKind {
	case "psets":
		return m.PropertySets(ctx, elementID, propsRecursive)
	case "typeof":
		return m.TypeProperties(ctx, elementID, propsRecursive)
	case "materials":
		return m.MaterialsProperties(ctx, elementID, propsRecursive)
	}
	return nil, fmt.Errorf("unknown property kind %q (want psets, typeof, or materials)", propsKind)
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func init() {
	propsCmd.Flags().BoolVarP(&propsRecursive, "recursive", "r", false, "expand nested record references")
	propsCmd.Flags().StringVarP(&propsKind, "kind", "k", "psets", "relation kind: psets, typeof, or materials")
	propsCmd.Flags().StringVar(&propsSelect, "select", "", "JSONPath expression applied to each result")
	rootCmd.AddCommand(propsCmd)
}
