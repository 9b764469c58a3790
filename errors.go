package idxmap

import "errors"

var (
	// ErrKeyOutOfRange is raised when a negative key, or a key beyond
	// MaxKeyIndex, is written to a map.
	ErrKeyOutOfRange = errors.New("idxmap: key out of range")

	// ErrVacantEntry is raised when an occupied-only operation is called
	// on a vacant entry.
	ErrVacantEntry = errors.New("idxmap: entry is vacant")

	// ErrStaleEntry is raised when an entry is used after the map was
	// modified behind it.
	ErrStaleEntry = errors.New("idxmap: entry no longer matches the map")
)
