// FILE: lixenwraith/proptree/source.go
package proptree

import (
	"os"
	"sort"
	"strconv"
	"strings"
)

// Source represents a configuration source, used to define build precedence.
type Source string

const (
	// SourceDefault represents the defaults given to the builder
	SourceDefault Source = "default"
	// SourceFile represents values loaded from a configuration file
	SourceFile Source = "file"
	// SourceEnv represents values loaded from environment variables
	SourceEnv Source = "env"
	// SourceCLI represents values loaded from command-line arguments
	SourceCLI Source = "cli"
)

// Default names of the flat groups produced by the ingestion helpers.
const (
	DefaultArgsGroupName = "CommandLineArgs"
	DefaultEnvGroupName  = "Environment"
)

// DefaultSources returns the standard precedence, highest first.
func DefaultSources() []Source {
	return []Source{SourceCLI, SourceEnv, SourceFile, SourceDefault}
}

type argPair struct {
	key   string
	value string
}

// parseArgs recognizes, in order:
//
//	--key=value       key/value
//	--key value       key/value when the next argument is not a flag
//	--flag            boolean flag, value "true"
//	/key:value        key/value
//	-key value        key/value, value "" when no value follows
//	anything else     positional, stored as ArgN with N its index in args
func parseArgs(args []string) []argPair {
	var pairs []argPair
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			continue

		case strings.HasPrefix(arg, "--"):
			content := strings.TrimPrefix(arg, "--")
			if key, value, ok := strings.Cut(content, "="); ok {
				if key != "" {
					pairs = append(pairs, argPair{key, value})
				}
				continue
			}
			if i+1 < len(args) && !isFlag(args[i+1]) {
				pairs = append(pairs, argPair{content, args[i+1]})
				i++
			} else {
				pairs = append(pairs, argPair{content, "true"})
			}

		case strings.HasPrefix(arg, "/") && strings.Contains(arg, ":"):
			key, value, _ := strings.Cut(arg[1:], ":")
			if key != "" {
				pairs = append(pairs, argPair{key, value})
			}

		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			value := ""
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				value = args[i]
			}
			pairs = append(pairs, argPair{arg[1:], value})

		default:
			pairs = append(pairs, argPair{"Arg" + strconv.Itoa(i), arg})
		}
	}
	return pairs
}

func isFlag(arg string) bool {
	return strings.HasPrefix(arg, "-") || (strings.HasPrefix(arg, "/") && strings.Contains(arg, ":"))
}

// ParseArgs parses command-line arguments into a key/value map. Later
// occurrences of a key win.
func ParseArgs(args []string) map[string]string {
	result := make(map[string]string)
	for _, p := range parseArgs(args) {
		result[p.key] = p.value
	}
	return result
}

// FromArgs converts command-line arguments into a flat group of string
// leaves, one per argument in order. See parseArgs for the accepted forms.
func FromArgs(args []string, name string) *Group {
	g := NewGroup(name)
	for _, p := range parseArgs(args) {
		g.Add(String(p.key, p.value))
	}
	return g
}

// FromArgsByPosition names positional arguments: args[i] becomes a leaf
// called names[i]. Extra arguments or names are ignored.
func FromArgsByPosition(args, names []string, name string) *Group {
	g := NewGroup(name)
	for i := 0; i < len(args) && i < len(names); i++ {
		g.Add(String(names[i], args[i]))
	}
	return g
}

// FromMap converts a key/value map into a flat group, sorted by key.
func FromMap(values map[string]string, name string) *Group {
	g := NewGroup(name)
	for _, key := range sortedKeys(values) {
		g.Add(String(key, values[key]))
	}
	return g
}

// FromEnv converts the whole environment into a flat group, sorted by name.
func FromEnv(name string) *Group {
	return FromMap(environ(), name)
}

// FromEnvNames reads the named variables; unset variables become "".
func FromEnvNames(names []string, name string) *Group {
	g := NewGroup(name)
	for _, n := range names {
		g.Add(String(n, os.Getenv(n)))
	}
	return g
}

// FromEnvPrefix reads the variables whose name starts with prefix, compared
// case-insensitively. With trim, the prefix is removed from leaf names.
func FromEnvPrefix(prefix, name string, trim bool) *Group {
	g := NewGroup(name)
	env := environ()
	upper := strings.ToUpper(prefix)
	for _, key := range sortedKeys(env) {
		if !strings.HasPrefix(strings.ToUpper(key), upper) {
			continue
		}
		leafName := key
		if trim && len(key) > len(prefix) {
			leafName = key[len(prefix):]
		}
		g.Add(String(leafName, env[key]))
	}
	return g
}

// EnvName maps a dotted path to an environment variable name:
// EnvName("MYAPP_", "server.port") is "MYAPP_SERVER_PORT".
func EnvName(prefix, path string) string {
	env := strings.ReplaceAll(path, PathSeparator, "_")
	env = strings.ReplaceAll(env, "-", "_")
	return prefix + strings.ToUpper(env)
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
