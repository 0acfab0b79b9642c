// Package journal implements the append-only edit journal: every group
// edit a session performs is framed with a CRC-32 checksum and appended,
// so an interrupted session can be replayed onto a freshly loaded codes
// file. A successful save checkpoints and truncates the journal.
package journal

import "errors"

var (
	// ErrCorrupt indicates a frame whose checksum does not match
	ErrCorrupt = errors.New("journal: corrupt entry")

	// ErrShortRead indicates a frame cut off mid-write
	ErrShortRead = errors.New("journal: short entry")

	// ErrClosed indicates an operation on a closed journal
	ErrClosed = errors.New("journal: closed")

	// ErrSourceChanged indicates the codes file no longer matches the
	// hash recorded at open; replaying would apply stale paths
	ErrSourceChanged = errors.New("journal: codes file changed since journal was opened")

	// ErrNoOpen indicates a journal without a leading open entry
	ErrNoOpen = errors.New("journal: missing open entry")
)
