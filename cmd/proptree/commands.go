// FILE: lixenwraith/proptree/cmd/proptree/commands.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lixenwraith/proptree"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const treeName = "proptree"

var (
	showDebug     bool
	segmentPrefix bool
	strategyName  string
)

func init() {
	showCmd.Flags().BoolVar(&showDebug, "debug", false, "Print the indented debug view instead of TOML")
	prefixCmd.Flags().BoolVar(&segmentPrefix, "segment", false, "Match whole path segments only")
	mergeCmd.Flags().StringVarP(&strategyName, "strategy", "s", "overwrite", "Conflict strategy: overwrite, skip, throw, rename")

	rootCmd.AddCommand(showCmd, getCmd, listCmd, findCmd, prefixCmd, mergeCmd, leftMergeCmd, watchCmd)
}

var showCmd = &cobra.Command{
	Use:   "show [--key=value ...]",
	Short: "Build the layered tree from file, environment and trailing arguments and print it",
	Long: `Build the layered tree from file, environment and trailing arguments and print it.

Arguments that are not flags of this command are applied to the tree, e.g.
  proptree --file app.toml show --server.port=9000 --server.host=example.com
Everything after "--" is applied as well.`,
	// overrides are tree paths unknown to cobra, flags are split by hand
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		own, overrides := splitOverrides(cmd, args)
		if err := cmd.Flags().Parse(own); err != nil {
			return err
		}
		if help, _ := cmd.Flags().GetBool("help"); help {
			return cmd.Help()
		}
		if err := setupLogger(cmd); err != nil {
			return err
		}

		tree, err := loadTree(treeName)
		if err != nil {
			return err
		}
		if len(overrides) > 0 {
			n, err := proptree.Apply(tree, proptree.ParseArgs(overrides))
			if err != nil {
				return fmt.Errorf("%w: %w", proptree.ErrCLIParse, err)
			}
			logger.Debug("applied arguments", "updated", n)
		}
		return printGroup(cmd.OutOrStdout(), tree)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Print the value or subtree at a dotted path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := loadTree(treeName)
		if err != nil {
			return err
		}
		p, err := proptree.GetByPath(tree, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch x := p.(type) {
		case *proptree.Group:
			return printGroup(out, x)
		case proptree.Valuer:
			fmt.Fprintln(out, x.Interface())
		default:
			fmt.Fprintf(out, "%s (action)\n", x.Name())
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every node of the tree, depth first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := loadTree(treeName)
		if err != nil {
			return err
		}
		printProperties(cmd.OutOrStdout(), proptree.AllProperties(tree))
		return nil
	},
}

var findCmd = &cobra.Command{
	Use:   "find <pattern>",
	Short: "List the nodes matching a dotted pattern, * matching any name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := loadTree(treeName)
		if err != nil {
			return err
		}
		printProperties(cmd.OutOrStdout(), proptree.FindByPattern(tree, args[0]))
		return nil
	},
}

var prefixCmd = &cobra.Command{
	Use:   "prefix <prefix>",
	Short: "List the nodes whose full path starts with prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := loadTree(treeName)
		if err != nil {
			return err
		}
		var matches []proptree.Property
		if segmentPrefix {
			matches = proptree.FindBySegmentPrefix(tree, args[0])
		} else {
			matches = proptree.FindByPrefix(tree, args[0])
		}
		printProperties(cmd.OutOrStdout(), matches)
		return nil
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge <base> <other>",
	Short: "Merge the top-level items of two files and print the result",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := proptree.ParseMergeStrategy(strategyName)
		if err != nil {
			return err
		}
		base, err := loadNamed(args[0])
		if err != nil {
			return err
		}
		other, err := loadNamed(args[1])
		if err != nil {
			return err
		}
		n, err := proptree.Merge(base, other, strategy)
		if err != nil {
			return err
		}
		logger.Info("merged", "strategy", strategy, "merged", n)
		return printGroup(cmd.OutOrStdout(), base)
	},
}

var leftMergeCmd = &cobra.Command{
	Use:   "left-merge <base> <override>",
	Short: "Replace the top-level items of base found in override and print the result",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := loadNamed(args[0])
		if err != nil {
			return err
		}
		override, err := loadNamed(args[1])
		if err != nil {
			return err
		}
		n, err := proptree.LeftMerge(base, override)
		if err != nil {
			return err
		}
		logger.Info("left-merged", "updated", n)
		return printGroup(cmd.OutOrStdout(), base)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch --file and print the paths that change on every reload",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if filePath == "" {
			return fmt.Errorf("watch requires --file")
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := proptree.DefaultWatchOptions()
		opts.Format = format
		opts.Name = treeName
		opts.Logger = logger
		w, err := proptree.Watch(ctx, filePath, opts)
		if err != nil {
			return err
		}
		defer w.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "watching %s, press Ctrl+C to exit\n", w.Path())
		for r := range w.Events() {
			if r.Err != nil {
				logger.Warn("reload failed", "file", r.Path, "error", r.Err)
				continue
			}
			for _, path := range r.Changed {
				value, err := proptree.ValueAt[any](r.Group, path)
				if err != nil {
					fmt.Fprintf(out, "- %s\n", path)
					continue
				}
				fmt.Fprintf(out, "~ %s = %v\n", path, value)
			}
		}
		return nil
	},
}

// splitOverrides separates the flags known to cmd, with their values, from
// the arguments meant for the tree. Everything after "--" goes to the tree.
func splitOverrides(cmd *cobra.Command, args []string) (own, overrides []string) {
	fs := cmd.Flags()
	fs.AddFlagSet(cmd.InheritedFlags())
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			overrides = append(overrides, args[i+1:]...)
			break
		}
		f := lookupFlag(fs, arg)
		if f == nil {
			overrides = append(overrides, arg)
			continue
		}
		own = append(own, arg)
		if !strings.Contains(arg, "=") && f.NoOptDefVal == "" && i+1 < len(args) {
			i++
			own = append(own, args[i])
		}
	}
	return own, overrides
}

func lookupFlag(fs *pflag.FlagSet, arg string) *pflag.Flag {
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		name, _, _ = strings.Cut(name, "=")
		return fs.Lookup(name)
	}
	if name, ok := strings.CutPrefix(arg, "-"); ok {
		name, _, _ = strings.Cut(name, "=")
		if len(name) == 1 {
			return fs.ShorthandLookup(name)
		}
	}
	return nil
}

func printGroup(w io.Writer, g *proptree.Group) error {
	if showDebug {
		_, err := io.WriteString(w, proptree.Debug(g))
		return err
	}
	return proptree.Dump(w, g)
}

func printProperties(w io.Writer, props []proptree.Property) {
	for _, p := range props {
		if v, ok := p.(proptree.Valuer); ok {
			fmt.Fprintf(w, "%s = %v\n", proptree.FullPath(p), v.Interface())
			continue
		}
		fmt.Fprintln(w, proptree.FullPath(p))
	}
}
