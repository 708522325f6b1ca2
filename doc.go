// File: lixenwraith/proptree/doc.go

// Package proptree provides a hierarchical tree of observable properties:
// named groups holding typed value leaves, adapters over external state and
// actions, with change events that bubble from a leaf up through its
// ancestors.
//
// Features:
//   - Typed leaves with optional [min, max] clamping
//   - Updated events on the first assignment and on every real change
//   - Child-updated events bubbling to every ancestor, safe on cyclic parent chains
//   - Dotted path, wildcard pattern and prefix lookup, and flattening
//   - Merging with Overwrite, Skip, Throw or Rename conflict strategies, and left merge
//   - Trees from TOML, JSON and YAML files, environment variables, arguments and structs
//   - Builder pattern for layered trees and file watching
//
// Quick Start:
//
//	video := proptree.NewGroup("Video",
//	    proptree.NewGroup("Resolution",
//	        proptree.IntRange("Width", 1920, 640, 7680),
//	        proptree.IntRange("Height", 1080, 480, 4320),
//	    ),
//	    proptree.Bool("Fullscreen", false),
//	)
//
//	video.OnChildUpdated(func(child proptree.Property) {
//	    log.Printf("changed below Video: %s", child.Name())
//	})
//
//	width, _ := proptree.GetByPathAs[*proptree.Value[int]](video, "Resolution.Width")
//	width.Set(2560) // fires Width updated, then Resolution and Video child-updated
//
// Layered trees:
//
//	tree, err := proptree.NewBuilder("app").
//	    WithDefaults(defaults).
//	    WithFile("app.toml").
//	    WithEnvPrefix("APP_").
//	    WithArgs(os.Args[1:]).
//	    Build()
//
// Default Precedence (highest to lowest):
//  1. Command-line arguments (--server.port=9090)
//  2. Environment variables (APP_SERVER_PORT=9090)
//  3. Configuration file (app.toml)
//  4. Default values
//
// A tree is not safe for concurrent use. Events are raised synchronously on
// the goroutine that made the change.
package proptree
