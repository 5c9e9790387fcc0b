package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/ifcgraph/internal/load"
	"github.com/agentic-research/ifcgraph/internal/logging"
	"github.com/agentic-research/ifcgraph/internal/model"
	"github.com/agentic-research/ifcgraph/internal/schema"
)

var (
	logLevel   string
	logFile    string
	schemaPath string
)

var rootCmd = &cobra.Command{
	Use:          "ifcgraph",
	Short:        "Spatial-structure and property queries over parsed IFC models",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file (rotated)")
	rootCmd.PersistentFlags().StringVarP(&schemaPath, "schema", "s", "", "HCL relation-descriptor overrides")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	return logging.New(logging.Options{
		Level:    logLevel,
		FilePath: logFile,
		Console:  true,
	})
}

func loadSchema() (schema.Set, error) {
	if schemaPath == "" {
		return schema.Default(), nil
	}
	return schema.Load(schemaPath)
}

func newLoader(log *zap.Logger) *load.Loader {
	return load.NewLoader(osfs.New("/"), log)
}

// openModel loads a record dump and registers it as a model.
func openModel(cmd *cobra.Command, dumpPath string, log *zap.Logger) (*model.Registry, *model.Model, error) {
	set, err := loadSchema()
	if err != nil {
		return nil, nil, err
	}
	abs, err := filepath.Abs(dumpPath)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %s: %w", dumpPath, err)
	}
	src, err := newLoader(log).Open(abs)
	if err != nil {
		return nil, nil, err
	}
	registry := model.NewRegistry(log)
	m, err := registry.Open(cmd.Context(), src, set)
	if err != nil {
		return nil, nil, err
	}
	return registry, m, nil
}
