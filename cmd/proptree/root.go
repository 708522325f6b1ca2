// FILE: lixenwraith/proptree/cmd/proptree/root.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lixenwraith/proptree"
	"github.com/spf13/cobra"
)

var (
	filePath  string
	envPrefix string
	logLevel  string
	format    string

	logger = slog.New(slog.DiscardHandler)
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&filePath, "file", "f", "", "TOML, JSON or YAML file to load")
	rootCmd.PersistentFlags().StringVarP(&envPrefix, "env-prefix", "e", "", "Apply environment variables with this prefix")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&format, "format", proptree.FormatAuto, "File format: auto, toml, json, yaml")
}

var rootCmd = &cobra.Command{
	Use:           "proptree",
	Short:         "Inspect, query and merge property trees built from config files",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger(cmd)
	},
}

// setupLogger builds the stderr logger from --log-level.
func setupLogger(cmd *cobra.Command) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(logLevel))); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// loadTree loads --file, or an empty tree when no file is given, and applies
// the environment when --env-prefix is set.
func loadTree(name string) (*proptree.Group, error) {
	tree := proptree.NewGroup(name)
	if filePath != "" {
		g, err := proptree.LoadFileFormat(filePath, format, name)
		if err != nil {
			return nil, err
		}
		tree = g
		logger.Debug("loaded file", "file", filePath, "items", tree.Len())
	}
	if envPrefix != "" {
		n, err := proptree.ApplyEnv(tree, envPrefix)
		if err != nil {
			return nil, err
		}
		logger.Debug("applied environment", "prefix", envPrefix, "updated", n)
	}
	return tree, nil
}

// loadNamed loads a file into a group named after the file.
func loadNamed(path string) (*proptree.Group, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	g, err := proptree.LoadFileFormat(path, format, name)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded file", "file", path, "items", g.Len())
	return g, nil
}

// exitCode maps an error to the process exit status: 2 for missing files
// and unknown paths, 1 for anything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, proptree.ErrFileNotFound), errors.Is(err, proptree.ErrPathNotFound):
		return 2
	default:
		return 1
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}
