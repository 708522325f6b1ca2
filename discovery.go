// FILE: lixenwraith/proptree/discovery.go
package proptree

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FileDiscoveryOptions configures automatic file discovery for the builder
type FileDiscoveryOptions struct {
	// Base name of the file, without extension
	Name string

	// Extensions tried in order for every directory
	Extensions []string

	// Paths searched before the current and XDG directories
	Paths []string

	// EnvVar names a variable holding an explicit path
	EnvVar string

	// CLIFlag names a flag holding an explicit path, e.g. "--config"
	CLIFlag string

	// UseXDG adds $XDG_CONFIG_HOME/<name> and $XDG_CONFIG_DIRS/<name>
	UseXDG bool

	// UseCurrentDir adds the working directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions searches for appName.toml, .json, .yaml and .yml
// in the current directory and the XDG config directories. The explicit
// path comes from --config or APPNAME_CONFIG.
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".json", ".yaml", ".yml"},
		EnvVar:        EnvName("", appName+".config"),
		CLIFlag:       "--config",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// WithFileDiscovery sets the file to the first match of opts. Call it after
// WithArgs so the CLI flag can be found. Finding nothing keeps the current file.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	if path, ok := discoverFile(opts, b.args, b.logger); ok {
		b.file = path
	}
	return b
}

// DiscoverFile resolves a file from a CLI flag in args, then the environment
// variable, then the first existing candidate of the search directories.
func DiscoverFile(opts FileDiscoveryOptions, args []string) (string, bool) {
	return discoverFile(opts, args, slog.New(slog.DiscardHandler))
}

func discoverFile(opts FileDiscoveryOptions, args []string, logger *slog.Logger) (string, bool) {
	if path, ok := flagValue(args, opts.CLIFlag); ok {
		logger.Debug("file from flag", "flag", opts.CLIFlag, "file", path)
		return path, true
	}
	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			logger.Debug("file from environment", "env", opts.EnvVar, "file", path)
			return path, true
		}
	}

	for _, path := range candidates(opts) {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			logger.Debug("file candidate skipped", "file", path)
			continue
		}
		logger.Debug("file discovered", "file", path)
		return path, true
	}
	return "", false
}

// flagValue finds "flag value" or "flag=value" in args.
func flagValue(args []string, flag string) (string, bool) {
	if flag == "" {
		return "", false
	}
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1], true
		}
		if value, ok := strings.CutPrefix(arg, flag+"="); ok {
			return value, true
		}
	}
	return "", false
}

// candidates lists every directory/name+extension combination in search
// order, each directory once.
func candidates(opts FileDiscoveryOptions) []string {
	dirs := slices.Clone(opts.Paths)
	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			dirs = append(dirs, cwd)
		}
	}
	if opts.UseXDG {
		dirs = append(dirs, xdgConfigDirs(opts.Name)...)
	}

	var out []string
	seen := make(map[string]bool)
	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		for _, ext := range opts.Extensions {
			out = append(out, filepath.Join(dir, opts.Name+ext))
		}
	}
	return out
}

// xdgConfigDirs returns the per-application XDG config directories, user
// first, falling back to ~/.config and /etc/xdg.
func xdgConfigDirs(appName string) []string {
	var dirs []string
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		dirs = append(dirs, filepath.Join(home, appName))
	} else if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", appName))
	}

	system := filepath.SplitList(os.Getenv("XDG_CONFIG_DIRS"))
	if len(system) == 0 {
		system = []string{"/etc/xdg", "/etc"}
	}
	for _, dir := range system {
		dirs = append(dirs, filepath.Join(dir, appName))
	}
	return dirs
}
