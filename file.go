// FILE: lixenwraith/proptree/file.go
package proptree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// File formats understood by LoadFile and Parse.
const (
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatAuto = "auto"
)

// LoadFile reads a TOML, JSON or YAML file into a new group called name.
// The format comes from the extension, or from the content when the
// extension is not recognized.
func LoadFile(path, name string) (*Group, error) {
	return LoadFileFormat(path, FormatAuto, name)
}

// LoadFileFormat is LoadFile with an explicit format; FormatAuto or "" detects it.
func LoadFileFormat(path, format, name string) (*Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if format == "" || format == FormatAuto {
		format = detectFileFormat(path)
	}
	g, err := Parse(data, format, name)
	if err != nil {
		return nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	return g, nil
}

// Parse converts a document into a group. Tables become groups, scalars
// become typed leaves and arrays of scalars become comma-joined string leaves.
// An array of tables becomes a group whose children are named "0", "1", ...
func Parse(data []byte, format, name string) (*Group, error) {
	if format == "" || format == FormatAuto {
		format = detectFormatFromContent(data)
	}

	switch format {
	case FormatTOML:
		var doc map[string]any
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		return fromNested(name, doc, tomlKeyOrder(md), ""), nil

	case FormatJSON:
		var doc map[string]any
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return fromNested(name, doc, nil, ""), nil

	case FormatYAML:
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		g := NewGroup(name)
		if len(root.Content) == 0 {
			return g, nil
		}
		doc := root.Content[0]
		if doc.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("failed to parse YAML: top level is not a mapping")
		}
		if err := addYAMLMapping(g, doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		return g, nil

	default:
		return nil, ErrUnknownFormat
	}
}

// FromNested converts a nested map, as produced by ToMap or a decoder, into
// a group. Keys are added in sorted order.
func FromNested(name string, m map[string]any) *Group {
	return fromNested(name, m, nil, "")
}

// keyOrder ranks dotted keys by document position; unranked keys sort last by name.
type keyOrder map[string]int

func tomlKeyOrder(md toml.MetaData) keyOrder {
	order := make(keyOrder)
	for i, key := range md.Keys() {
		k := key.String()
		if _, ok := order[k]; !ok {
			order[k] = i
		}
	}
	return order
}

func (o keyOrder) sort(prefix string, keys []string) {
	rank := func(k string) (int, bool) {
		if o == nil {
			return 0, false
		}
		full := k
		if prefix != "" {
			full = prefix + PathSeparator + k
		}
		r, ok := o[full]
		return r, ok
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, oki := rank(keys[i])
		rj, okj := rank(keys[j])
		switch {
		case oki && okj:
			return ri < rj
		case oki != okj:
			return oki
		default:
			return keys[i] < keys[j]
		}
	})
}

func fromNested(name string, m map[string]any, order keyOrder, prefix string) *Group {
	g := NewGroup(name)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	order.sort(prefix, keys)

	for _, k := range keys {
		full := k
		if prefix != "" {
			full = prefix + PathSeparator + k
		}
		g.Add(fromAny(k, m[k], order, full))
	}
	return g
}

func fromAny(name string, v any, order keyOrder, full string) Property {
	switch x := v.(type) {
	case map[string]any:
		return fromNested(name, x, order, full)
	case []map[string]any:
		g := NewGroup(name)
		for i, m := range x {
			// array-of-table keys carry no index, so the table's keys rank under full
			g.Add(fromNested(strconv.Itoa(i), m, order, full))
		}
		return g
	case []any:
		if tables, ok := allTables(x); ok {
			return fromAny(name, tables, order, full)
		}
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = fmt.Sprint(e)
		}
		return String(name, strings.Join(parts, ","))
	default:
		return scalarLeaf(name, v)
	}
}

func allTables(xs []any) ([]map[string]any, bool) {
	if len(xs) == 0 {
		return nil, false
	}
	out := make([]map[string]any, len(xs))
	for i, e := range xs {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, false
		}
		out[i] = m
	}
	return out, true
}

// scalarLeaf picks the leaf kind for a decoded scalar.
func scalarLeaf(name string, v any) Property {
	switch x := v.(type) {
	case nil:
		return String(name, "")
	case string:
		return String(name, x)
	case bool:
		return Bool(name, x)
	case int:
		return Int(name, x)
	case int64:
		return Int(name, int(x))
	case uint64:
		if x <= uint64(^uint(0)>>1) {
			return Int(name, int(x))
		}
		return String(name, strconv.FormatUint(x, 10))
	case float64:
		return Float(name, x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return Int(name, int(n))
		}
		if f, err := x.Float64(); err == nil {
			return Float(name, f)
		}
		return String(name, x.String())
	case time.Time:
		return NewValue(name, x)
	default:
		return String(name, fmt.Sprint(x))
	}
}

// addYAMLMapping adds the pairs of a mapping node to g in document order.
func addYAMLMapping(g *Group, n *yaml.Node) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		p, err := fromYAML(key.Value, value)
		if err != nil {
			return err
		}
		g.Add(p)
	}
	return nil
}

func fromYAML(name string, n *yaml.Node) (Property, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.MappingNode:
		g := NewGroup(name)
		if err := addYAMLMapping(g, n); err != nil {
			return nil, err
		}
		return g, nil

	case yaml.SequenceNode:
		allMappings := len(n.Content) > 0
		for _, e := range n.Content {
			if e.Kind != yaml.MappingNode {
				allMappings = false
				break
			}
		}
		if allMappings {
			g := NewGroup(name)
			for i, e := range n.Content {
				child, err := fromYAML(strconv.Itoa(i), e)
				if err != nil {
					return nil, err
				}
				g.Add(child)
			}
			return g, nil
		}
		var xs []any
		if err := n.Decode(&xs); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return fromAny(name, xs, nil, name), nil

	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return scalarLeaf(name, v), nil
	}
}

// ToMap converts the subtree of g into nested maps: groups become maps,
// value leaves their current value. Actions are skipped, and when several
// items share a name the first one wins.
func ToMap(g *Group) map[string]any {
	if g == nil {
		return nil
	}
	return toMap(g, make(map[*Group]struct{}))
}

func toMap(g *Group, visited map[*Group]struct{}) map[string]any {
	out := make(map[string]any)
	if _, seen := visited[g]; seen {
		return out
	}
	visited[g] = struct{}{}
	defer delete(visited, g)

	for _, p := range g.items {
		if _, exists := out[p.Name()]; exists {
			continue
		}
		switch x := p.(type) {
		case *Group:
			out[x.Name()] = toMap(x, visited)
		case Valuer:
			out[x.Name()] = x.Interface()
		}
	}
	return out
}

// Dump writes the subtree of g to w as TOML. It is meant for inspection;
// leaves whose values TOML cannot represent fail the encoding.
func Dump(w io.Writer, g *Group) error {
	if g == nil {
		return ErrNilGroup
	}
	if err := toml.NewEncoder(w).Encode(ToMap(g)); err != nil {
		return fmt.Errorf("failed to encode group %q as TOML: %w", g.Name(), err)
	}
	return nil
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// JSON first, it is the strictest
	var jsonTest map[string]any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return FormatYAML
	}

	return ""
}
