package object

import "errors"

var (
	// ErrNotFound indicates a referenced hash has no stored object.
	ErrNotFound = errors.New("object not found")

	// ErrCorrupt indicates a stored object failed envelope parsing, declared
	// an unknown kind, or no longer matches its storage key.
	ErrCorrupt = errors.New("corrupt object")
)
