// ABOUTME: Append-only edit journal with sequence numbers and checkpoints
// ABOUTME: Appends CRC-framed entries; truncates and re-anchors on save

package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// OpenPayload anchors a journal to its codes file: the path and the
// SHA-256 of the file bytes at open time. Replay refuses a journal
// whose hash no longer matches the file.
type OpenPayload struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// TogglePayload records a subtree exclude or include.
type TogglePayload struct {
	Path  []int  `json:"path"`
	Group string `json:"group"`
}

// GroupPayload records a group selection, declaration, or removal.
type GroupPayload struct {
	Group string `json:"group"`
}

// RenamePayload records a group rename.
type RenamePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// HashFile returns the hex SHA-256 of the file's bytes.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("journal: hash %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Journal is an append-only edit log for one editing session.
type Journal struct {
	// Path is the journal file location, conventionally the codes-file
	// path plus ".journal".
	Path string

	mu     sync.Mutex
	fd     *os.File
	seq    uint64
	closed bool
}

// Open opens or creates the journal file in append mode and resumes
// the sequence counter from the highest entry already on disk.
func (j *Journal) Open() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	fd, err := os.OpenFile(j.Path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("journal: open %s: %w", j.Path, err)
	}
	j.fd = fd
	j.closed = false

	entries, err := ReadAll(j.Path)
	if err != nil {
		fd.Close()
		return err
	}
	var maxSeq uint64
	for _, e := range entries {
		if e.Seq > maxSeq {
			maxSeq = e.Seq
		}
	}
	atomic.StoreUint64(&j.seq, maxSeq)
	return nil
}

// NextSeq returns the next sequence number.
func (j *Journal) NextSeq() uint64 {
	return atomic.AddUint64(&j.seq, 1)
}

// Seq returns the sequence number of the newest entry on disk; zero
// means the journal is empty.
func (j *Journal) Seq() uint64 {
	return atomic.LoadUint64(&j.seq)
}

// Append journals one op. The payload is JSON-encoded into the entry
// and the write is fsynced before returning: once Append succeeds the
// edit survives a crash.
func (j *Journal) Append(op OpType, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("journal: encode %s payload: %w", op, err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrClosed
	}

	entry := Entry{Seq: j.NextSeq(), Op: op, Time: time.Now(), Data: data}
	if _, err := j.fd.Write(entry.Encode()); err != nil {
		return fmt.Errorf("journal: append %s: %w", op, err)
	}
	if err := j.fd.Sync(); err != nil {
		return fmt.Errorf("journal: fsync: %w", err)
	}
	return nil
}

// Checkpoint re-anchors the journal after a successful save: a
// checkpoint marker is appended, then the file is truncated and a
// fresh open entry carrying the new codes-file hash is written. A
// crash between the two steps leaves the checkpoint marker in place,
// and replay skips everything at or before it.
func (j *Journal) Checkpoint(path, hash string) error {
	if err := j.Append(OpCheckpoint, nil); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrClosed
	}
	if err := j.fd.Truncate(0); err != nil {
		return fmt.Errorf("journal: truncate: %w", err)
	}
	if _, err := j.fd.Seek(0, 0); err != nil {
		return fmt.Errorf("journal: seek: %w", err)
	}
	atomic.StoreUint64(&j.seq, 0)

	data, err := json.Marshal(OpenPayload{Path: path, Hash: hash})
	if err != nil {
		return fmt.Errorf("journal: encode open payload: %w", err)
	}
	entry := Entry{Seq: j.NextSeq(), Op: OpOpen, Time: time.Now(), Data: data}
	if _, err := j.fd.Write(entry.Encode()); err != nil {
		return fmt.Errorf("journal: write open entry: %w", err)
	}
	if err := j.fd.Sync(); err != nil {
		return fmt.Errorf("journal: fsync: %w", err)
	}
	return nil
}

// Close closes the journal file. The file stays on disk; Remove
// discards it.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.fd.Close()
}

// Remove deletes the journal file. Call after Close once the session's
// edits are saved and the journal has no further value.
func (j *Journal) Remove() error {
	return os.Remove(j.Path)
}
