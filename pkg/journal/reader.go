// ABOUTME: Tolerant journal reader
// ABOUTME: A torn or corrupt tail frame ends the scan cleanly

package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadAll reads every intact entry from the journal file. A final
// frame that is short or fails its checksum is treated as a torn tail
// from an interrupted write: the scan stops there and returns
// everything before it. A missing file reads as empty.
func ReadAll(path string) ([]*Entry, error) {
	fd, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	defer fd.Close()

	var entries []*Entry
	for {
		entry, err := readEntry(fd)
		if err == io.EOF {
			return entries, nil
		}
		if err == ErrShortRead || err == ErrCorrupt {
			// Torn tail; everything before it is good
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
}

func readEntry(r io.Reader) (*Entry, error) {
	header := make([]byte, EntryHeaderSize)
	n, err := io.ReadFull(r, header)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err == io.ErrUnexpectedEOF || n < EntryHeaderSize {
		return nil, ErrShortRead
	}
	if err != nil {
		return nil, fmt.Errorf("journal: read header: %w", err)
	}

	payloadLen := binary.LittleEndian.Uint32(header[0:4])
	frame := make([]byte, EntryHeaderSize+int(payloadLen))
	copy(frame, header)
	if _, err := io.ReadFull(r, frame[EntryHeaderSize:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrShortRead
		}
		return nil, fmt.Errorf("journal: read payload: %w", err)
	}
	return DecodeEntry(frame)
}

// Pending returns the entries that still need replaying: the newest
// open anchor plus every op after it and after the last checkpoint.
// Entries at or before a checkpoint are already reflected in the saved
// codes file; entries before a later open belong to an earlier,
// abandoned session and must never stack onto the replayed tree.
func Pending(entries []*Entry) (open *OpenPayload, ops []*Entry, err error) {
	anchor := -1
	for i, e := range entries {
		if e.Op == OpOpen {
			anchor = i
		}
	}
	if anchor == -1 {
		return nil, nil, ErrNoOpen
	}
	var payload OpenPayload
	if err := entries[anchor].Decode(&payload); err != nil {
		return nil, nil, err
	}

	start := anchor + 1
	for i := start; i < len(entries); i++ {
		if entries[i].Op == OpCheckpoint {
			start = i + 1
		}
	}
	for _, e := range entries[start:] {
		if e.Op == OpOpen || e.Op == OpCheckpoint {
			continue
		}
		ops = append(ops, e)
	}
	return &payload, ops, nil
}

// Decode unmarshals the entry's JSON payload into v.
func (e *Entry) Decode(v interface{}) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("journal: decode %s payload: %w", e.Op, err)
	}
	return nil
}
