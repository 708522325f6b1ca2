// File: lixenwraith/proptree/builder.go
package proptree

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
)

// ValidatorFunc validates the fully layered tree at the end of Build.
type ValidatorFunc func(g *Group) error

// Builder provides a fluent interface for assembling a layered tree:
// defaults, then a file, then environment variables, then command-line
// arguments, each layer overriding the ones before it.
type Builder struct {
	name       string
	defaults   any
	tagName    string
	groups     []*Group
	envPrefix  string
	file       string
	fileFormat string
	addMissing bool
	args       []string
	sources    []Source
	logger     *slog.Logger
	err        error
	validators []ValidatorFunc
}

// NewBuilder creates a builder for a tree whose root group is called name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:       name,
		tagName:    DefaultTagName,
		fileFormat: FormatAuto,
		args:       os.Args[1:],
		sources:    DefaultSources(),
		logger:     slog.New(slog.DiscardHandler),
		validators: make([]ValidatorFunc, 0),
	}
}

// WithDefaults sets the struct containing default values
func (b *Builder) WithDefaults(defaults any) *Builder {
	b.defaults = defaults
	return b
}

// WithTagName sets the struct tag read by WithDefaults and BuildAndScan
func (b *Builder) WithTagName(tagName string) *Builder {
	if tagName != "" {
		b.tagName = tagName
	}
	return b
}

// WithGroup adds a ready-made group of defaults. Its items are attached to
// the built tree, after the struct defaults.
func (b *Builder) WithGroup(g *Group) *Builder {
	if g == nil {
		b.err = errors.Join(b.err, fmt.Errorf("WithGroup: %w", ErrNilGroup))
		return b
	}
	b.groups = append(b.groups, g)
	return b
}

// WithEnvPrefix sets the environment variable prefix. Environment values
// are only read when a prefix is set.
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.envPrefix = prefix
	return b
}

// WithFile sets the configuration file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithFileFormat forces the file format instead of detecting it
func (b *Builder) WithFileFormat(format string) *Builder {
	b.fileFormat = format
	return b
}

// WithAddMissing lets the file add keys the defaults do not declare.
// By default the file may only update declared leaves.
func (b *Builder) WithAddMissing(addMissing bool) *Builder {
	b.addMissing = addMissing
	return b
}

// WithArgs sets the command-line arguments
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithSources sets the precedence order for sources, highest first
func (b *Builder) WithSources(sources ...Source) *Builder {
	b.sources = sources
	return b
}

// WithLogger sets the logger used while building. The default discards.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the layered tree. A missing file is not fatal: the tree is
// returned together with an error wrapping ErrFileNotFound.
func (b *Builder) Build() (*Group, error) {
	if b.err != nil {
		return nil, b.err
	}

	root := NewGroup(b.name)

	if b.defaults != nil {
		defaults, err := FromStructWithTag(b.name, b.defaults, b.tagName)
		if err != nil {
			return nil, fmt.Errorf("failed to register defaults: %w", err)
		}
		if _, err := Overlay(root, defaults, true); err != nil {
			return nil, fmt.Errorf("failed to register defaults: %w", err)
		}
	}
	for _, g := range b.groups {
		if _, err := Overlay(root, g, true); err != nil {
			return nil, fmt.Errorf("failed to register group %q: %w", g.Name(), err)
		}
	}

	// apply lowest precedence first so that later layers win
	var loadErr error
	for _, src := range slices.Backward(b.sources) {
		n, err := b.applySource(root, src)
		if err != nil {
			if errors.Is(err, ErrFileNotFound) {
				b.logger.Debug("config file not found, continuing", "file", b.file)
				loadErr = err
				continue
			}
			return nil, err
		}
		b.logger.Debug("applied source", "source", src, "updated", n)
	}

	for _, validator := range b.validators {
		if err := validator(root); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	// ErrFileNotFound or nil
	return root, loadErr
}

func (b *Builder) applySource(root *Group, src Source) (int, error) {
	switch src {
	case SourceDefault:
		// declared before any source is applied
		return 0, nil

	case SourceFile:
		if b.file == "" {
			return 0, nil
		}
		fileGroup, err := LoadFileFormat(b.file, b.fileFormat, b.name)
		if err != nil {
			return 0, err
		}
		n, err := Overlay(root, fileGroup, b.addMissing)
		if err != nil {
			return n, fmt.Errorf("failed to apply config file '%s': %w", b.file, err)
		}
		return n, nil

	case SourceEnv:
		if b.envPrefix == "" {
			return 0, nil
		}
		n, err := ApplyEnv(root, b.envPrefix)
		if err != nil {
			return n, fmt.Errorf("failed to apply environment: %w", err)
		}
		return n, nil

	case SourceCLI:
		if len(b.args) == 0 {
			return 0, nil
		}
		n, err := Apply(root, ParseArgs(b.args))
		if err != nil {
			return n, fmt.Errorf("%w: %w", ErrCLIParse, err)
		}
		return n, nil

	default:
		return 0, fmt.Errorf("unknown source %q", src)
	}
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Group {
	g, err := b.Build()
	if err != nil {
		// ErrFileNotFound is not fatal, the tree still holds defaults, env and CLI values
		if !errors.Is(err, ErrFileNotFound) {
			panic(fmt.Sprintf("tree build failed: %v", err))
		}
	}
	return g
}

// BuildAndScan builds the tree and decodes it into the provided target struct pointer
func (b *Builder) BuildAndScan(target any) (*Group, error) {
	g, err := b.Build()
	if err != nil && !errors.Is(err, ErrFileNotFound) {
		return nil, err
	}

	if scanErr := ScanWithTag(g, b.tagName, target); scanErr != nil {
		return g, fmt.Errorf("failed to scan final tree into target: %w", scanErr)
	}

	// ErrFileNotFound or nil
	return g, err
}
