package data

import "errors"

// ErrInvalidConfiguration and ErrInvalidHierarchy are wrapped into
// descriptive errors by Build; see spec.md §7.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInvalidHierarchy     = errors.New("invalid hierarchy")
)
