package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentic-research/ifcgraph/internal/geom"
)

var batchCmd = &cobra.Command{
	Use:   "batch [fragments]",
	Short: "Group a geometry fragment dump into per-appearance draw batches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		defer func() { _ = log.Sync() }() // safe to ignore

		abs, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolve %s: %w", args[0], err)
		}

		assembler := geom.NewAssembler()
		var fragments int
		err = newLoader(log).Fragments(abs, func(f geom.Fragment) error {
			assembler.Add(f)
			fragments++
			return nil
		})
		if err != nil {
			return err
		}

		type batchSummary struct {
			Color    geom.ColorKey `json:"color"`
			Elements []uint32      `json:"elements"`
			Vertices int           `json:"vertices"`
			Faces    int           `json:"faces"`
		}
		batches := assembler.Batches()
		summaries := make([]batchSummary, len(batches))
		for i, b := range batches {
			faces := 0
			for _, g := range b.Node.FaceGroup {
				faces += len(g.Faces)
			}
			summaries[i] = batchSummary{
				Color:    b.Color,
				Elements: b.Elements,
				Vertices: len(b.Node.Vertices),
				Faces:    faces,
			}
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "%d fragments -> %d batches\n", fragments, len(batches))
		return printJSON(cmd, summaries)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
}
