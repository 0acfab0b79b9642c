// ABOUTME: Sentinel errors for taxonomy operations
// ABOUTME: Callers match with errors.Is after unwrapping

package codetree

import "errors"

var (
	// ErrInvalidPath indicates a child-index path that does not resolve
	// in the current tree (stale or out of range)
	ErrInvalidPath = errors.New("codetree: invalid path")

	// ErrNotExcluded indicates an include operation on a subtree that no
	// ancestor-or-self excludes; the caller acted on stale membership
	ErrNotExcluded = errors.New("codetree: subtree not excluded")

	// ErrUnknownGroup indicates a group name absent from the catalog
	ErrUnknownGroup = errors.New("codetree: unknown group")

	// ErrGroupExists indicates a group name already in the catalog
	ErrGroupExists = errors.New("codetree: group already exists")

	// ErrLastGroup indicates an attempt to remove the only group
	ErrLastGroup = errors.New("codetree: cannot remove last group")

	// ErrCodeNotFound indicates a code with no exact match in the tree
	ErrCodeNotFound = errors.New("codetree: code not found")
)
