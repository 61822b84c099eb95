package check

import "errors"

var (
	// ErrOrderingNotUnique is returned when two distinct local vertex ids
	// resolve to the same physical point
	ErrOrderingNotUnique = errors.New("local ordering not unique")
	// ErrInconsistentVertex is returned when corners sharing a local vertex id
	// resolve to different physical points
	ErrInconsistentVertex = errors.New("local ordering not consistent")
	// ErrTableSize is returned when the vertex map cannot back a location table
	ErrTableSize = errors.New("invalid local vertex table")
)
