// FILE: lixenwraith/proptree/errors.go
package proptree

import "errors"

// Errors returned by tree operations. Lookups that simply miss return nil or
// an empty slice instead of an error.
var (
	// ErrPathNotFound is returned by the Get* lookups when nothing lives at the path.
	ErrPathNotFound = errors.New("property not found at path")

	// ErrTypeMismatch is returned when a node exists but is not of the requested kind.
	ErrTypeMismatch = errors.New("property type mismatch")

	// ErrIndexOutOfRange is returned by positional access outside [0, Len()).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrPropertyExists is returned by the Throw merge strategy on a name conflict.
	ErrPropertyExists = errors.New("property already exists")

	// ErrRenameUnsupported is returned when the Rename strategy meets a node kind it cannot duplicate.
	ErrRenameUnsupported = errors.New("rename not supported for this property kind")

	// ErrNilGroup is returned by merge operations given a nil target or source.
	ErrNilGroup = errors.New("group is nil")

	// ErrUnknownStrategy is returned for merge strategies outside the defined set.
	ErrUnknownStrategy = errors.New("unknown merge strategy")

	// ErrFileNotFound is returned when a configuration file does not exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrUnknownFormat is returned when a file's format cannot be determined.
	ErrUnknownFormat = errors.New("unable to determine file format")

	// ErrCLIParse is returned when command-line arguments cannot be parsed.
	ErrCLIParse = errors.New("failed to parse command-line arguments")
)
