// ABOUTME: Edit-journal entry framing with CRC-32 checksums
// ABOUTME: Fixed 25-byte header followed by a JSON op payload

package journal

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"
)

// OpType identifies the kind of edit an entry records.
type OpType byte

const (
	// OpOpen anchors the journal to a codes file and its content hash
	OpOpen OpType = 1

	// OpExclude removes a subtree from a group
	OpExclude OpType = 2

	// OpInclude carves a subtree back into a group
	OpInclude OpType = 3

	// OpSetGroup selects the active group
	OpSetGroup OpType = 4

	// OpAddGroup declares a group
	OpAddGroup OpType = 5

	// OpRemoveGroup drops a group and its markers
	OpRemoveGroup OpType = 6

	// OpRenameGroup renames a group catalog-wide
	OpRenameGroup OpType = 7

	// OpCheckpoint marks a successful save; earlier entries are
	// already reflected in the codes file
	OpCheckpoint OpType = 8
)

// String returns the op name used in logs.
func (op OpType) String() string {
	switch op {
	case OpOpen:
		return "open"
	case OpExclude:
		return "exclude"
	case OpInclude:
		return "include"
	case OpSetGroup:
		return "set-group"
	case OpAddGroup:
		return "add-group"
	case OpRemoveGroup:
		return "remove-group"
	case OpRenameGroup:
		return "rename-group"
	case OpCheckpoint:
		return "checkpoint"
	}
	return "unknown"
}

const (
	// EntryHeaderSize is the fixed size of the frame header.
	// Layout: PayloadLen(4) + CRC32(4) + Seq(8) + Op(1) + Timestamp(8)
	EntryHeaderSize = 25
)

// Entry is one journaled edit. Data holds the JSON-encoded op payload;
// the CRC in the frame covers it.
type Entry struct {
	Seq  uint64
	Op   OpType
	Time time.Time
	Data []byte
}

// Encode serializes the entry as [Header(25)][Payload].
func (e *Entry) Encode() []byte {
	buf := make([]byte, EntryHeaderSize+len(e.Data))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(e.Data)))
	binary.LittleEndian.PutUint32(buf[4:8], crc32.ChecksumIEEE(e.Data))
	binary.LittleEndian.PutUint64(buf[8:16], e.Seq)
	buf[16] = byte(e.Op)
	binary.LittleEndian.PutUint64(buf[17:25], uint64(e.Time.UnixNano()))
	copy(buf[EntryHeaderSize:], e.Data)
	return buf
}

// DecodeEntry deserializes one frame. The input must hold the whole
// frame; a short buffer is ErrShortRead, a checksum mismatch ErrCorrupt.
func DecodeEntry(data []byte) (*Entry, error) {
	if len(data) < EntryHeaderSize {
		return nil, ErrShortRead
	}
	payloadLen := binary.LittleEndian.Uint32(data[0:4])
	if len(data) < EntryHeaderSize+int(payloadLen) {
		return nil, ErrShortRead
	}
	payload := data[EntryHeaderSize : EntryHeaderSize+int(payloadLen)]
	if crc32.ChecksumIEEE(payload) != binary.LittleEndian.Uint32(data[4:8]) {
		return nil, ErrCorrupt
	}
	e := &Entry{
		Seq:  binary.LittleEndian.Uint64(data[8:16]),
		Op:   OpType(data[16]),
		Time: time.Unix(0, int64(binary.LittleEndian.Uint64(data[17:25]))),
	}
	if payloadLen > 0 {
		e.Data = make([]byte, payloadLen)
		copy(e.Data, payload)
	}
	return e, nil
}

// Size returns the encoded frame size.
func (e *Entry) Size() int {
	return EntryHeaderSize + len(e.Data)
}

// String returns a human-readable representation of the entry.
func (e *Entry) String() string {
	return fmt.Sprintf("journal[seq=%d op=%s len=%d]", e.Seq, e.Op, len(e.Data))
}
