// ABOUTME: Sentinel errors for codes-file loading and saving
// ABOUTME: Callers match with errors.Is after unwrapping

package codefile

import "errors"

var (
	// ErrMissingGroups indicates a codes file without a non-empty
	// groups key; loading is rejected, never silently defaulted
	ErrMissingGroups = errors.New("codefile: no groups declared")

	// ErrUnknownFormat indicates a file extension that names no codec
	ErrUnknownFormat = errors.New("codefile: unknown format")
)
