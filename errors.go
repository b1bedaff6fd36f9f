package pcache

import "errors"

var (
	// ErrSerialize marks a value or argument tuple the codec could not
	// encode. Raised before any storage call; nothing is persisted.
	ErrSerialize = errors.New("pcache: encode failed")

	// ErrDeserialize marks a stored entry the codec could not decode back
	// into V. The entry stays in the store; a broken payload must surface,
	// not silently turn into a recompute.
	ErrDeserialize = errors.New("pcache: decode failed")
)
