// File: lixenwraith/proptree/convenience.go
package proptree

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/spf13/pflag"
)

// Quick builds a tree from a struct of defaults, a file and environment
// variables, with the command-line arguments of the process on top.
// This is the recommended way to initialize a tree for most applications
func Quick(name string, structDefaults any, envPrefix, configFile string) (*Group, error) {
	return NewBuilder(name).
		WithDefaults(structDefaults).
		WithEnvPrefix(envPrefix).
		WithFile(configFile).
		WithArgs(os.Args[1:]).
		Build()
}

// MustQuick is like Quick but panics on error
func MustQuick(name string, structDefaults any, envPrefix, configFile string) *Group {
	g, err := Quick(name, structDefaults, envPrefix, configFile)
	if err != nil {
		panic(fmt.Sprintf("tree initialization failed: %v", err))
	}
	return g
}

// GenerateFlags creates a flag for every value leaf below g, named by its
// dotted path and defaulting to the leaf's current value.
func GenerateFlags(g *Group) *pflag.FlagSet {
	if g == nil {
		return pflag.NewFlagSet("", pflag.ContinueOnError)
	}
	fs := pflag.NewFlagSet(g.Name(), pflag.ContinueOnError)
	for path, leaf := range leaves(g) {
		usage := fmt.Sprintf("Config: %s", path)
		switch v := leaf.Interface().(type) {
		case bool:
			fs.Bool(path, v, usage)
		case int:
			fs.Int(path, v, usage)
		case float64:
			fs.Float64(path, v, usage)
		case string:
			fs.String(path, v, usage)
		default:
			// For other types, use string flag
			fs.String(path, fmt.Sprintf("%v", v), usage)
		}
	}
	return fs
}

// BindFlags assigns the flags that were set on the command line to the
// leaves of g. It returns the number of leaves updated.
func BindFlags(g *Group, fs *pflag.FlagSet) (int, error) {
	values := make(map[string]string)
	fs.Visit(func(f *pflag.Flag) {
		values[f.Name] = f.Value.String()
	})
	n, err := Apply(g, values)
	if err != nil {
		return n, fmt.Errorf("failed to bind flags: %w", err)
	}
	return n, nil
}

// Validate checks that every required path resolves to a value leaf holding
// a non-zero value.
func Validate(g *Group, required ...string) error {
	var missing []string
	for _, path := range required {
		p := FindByPath(g, path)
		v, ok := p.(Valuer)
		if !ok {
			missing = append(missing, path+" (not declared)")
			continue
		}
		x := v.Interface()
		if x == nil || reflect.ValueOf(x).IsZero() {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Debug returns a formatted view of the tree, one node per line.
func Debug(g *Group) string {
	var b strings.Builder
	b.WriteString("=== Property Tree Debug ===\n")
	if g == nil {
		b.WriteString("(nil)\n")
		return b.String()
	}
	debugGroup(&b, g, 0, make(map[*Group]struct{}))
	return b.String()
}

func debugGroup(b *strings.Builder, g *Group, depth int, visited map[*Group]struct{}) {
	indent := strings.Repeat("  ", depth)
	if _, seen := visited[g]; seen {
		fmt.Fprintf(b, "%s%s/ (cycle)\n", indent, g.Name())
		return
	}
	visited[g] = struct{}{}
	defer delete(visited, g)

	fmt.Fprintf(b, "%s%s/\n", indent, g.Name())
	for _, p := range g.Items() {
		switch x := p.(type) {
		case *Group:
			debugGroup(b, x, depth+1, visited)
		case Valuer:
			fmt.Fprintf(b, "%s  %s = %v (%T)\n", indent, x.Name(), x.Interface(), x.Interface())
		case *Action:
			fmt.Fprintf(b, "%s  %s()\n", indent, x.Name())
		}
	}
}

// Clone deep-copies a tree. Groups and value leaves are new nodes with no
// subscribers; adapters cannot be copied and fail with ErrRenameUnsupported.
// A group reachable from itself is copied once, its repeat is left out.
func Clone(g *Group) (*Group, error) {
	if g == nil {
		return nil, ErrNilGroup
	}
	return cloneGroup(g, make(map[*Group]struct{}))
}

func cloneGroup(g *Group, visited map[*Group]struct{}) (*Group, error) {
	visited[g] = struct{}{}
	defer delete(visited, g)

	out := NewGroup(g.Name())
	for _, p := range g.Items() {
		if sub, ok := p.(*Group); ok {
			if _, seen := visited[sub]; seen {
				continue
			}
			c, err := cloneGroup(sub, visited)
			if err != nil {
				return nil, err
			}
			out.Add(c)
			continue
		}
		c, err := p.duplicate(p.Name())
		if err != nil {
			return nil, fmt.Errorf("cloning %s: %w", FullPath(p), err)
		}
		out.Add(c)
	}
	return out, nil
}
