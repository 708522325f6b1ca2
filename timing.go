// FILE: lixenwraith/proptree/timing.go
package proptree

import "time"

// Timing constants for file watching.
const (
	MinDebounce     = 10 * time.Millisecond  // Hard floor for change coalescence
	DefaultDebounce = 500 * time.Millisecond // File change coalescence period
)

// DefaultWatchBuffer is the capacity of a watcher's event channel.
const DefaultWatchBuffer = 8
