// ABOUTME: Tests for journal framing, append, tolerant reads, and checkpoints
// ABOUTME: Covers round trips, torn tails, corrupt frames, and pending-op selection

package journal

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func setupJournal(t *testing.T) *Journal {
	t.Helper()
	j := &Journal{Path: filepath.Join(t.TempDir(), "codes.yaml.journal")}
	if err := j.Open(); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestEntryEncodeDecode(t *testing.T) {
	entry := &Entry{
		Seq:  7,
		Op:   OpExclude,
		Time: time.Unix(0, 1724600000000000000),
		Data: []byte(`{"path":[0,1],"group":"bleeding"}`),
	}
	decoded, err := DecodeEntry(entry.Encode())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Seq != 7 || decoded.Op != OpExclude {
		t.Errorf("decoded header = %v", decoded)
	}
	if !decoded.Time.Equal(entry.Time) {
		t.Errorf("timestamp = %v, want %v", decoded.Time, entry.Time)
	}
	if !reflect.DeepEqual(decoded.Data, entry.Data) {
		t.Errorf("payload = %s", decoded.Data)
	}
}

func TestDecodeRejectsCorruptPayload(t *testing.T) {
	entry := &Entry{Seq: 1, Op: OpOpen, Time: time.Now(), Data: []byte(`{"path":"x"}`)}
	frame := entry.Encode()
	frame[len(frame)-1] ^= 0xFF

	if _, err := DecodeEntry(frame); err != ErrCorrupt {
		t.Errorf("err = %v, want ErrCorrupt", err)
	}
	if _, err := DecodeEntry(frame[:EntryHeaderSize+2]); err != ErrShortRead {
		t.Errorf("short frame: err = %v, want ErrShortRead", err)
	}
}

func TestAppendAndReadAll(t *testing.T) {
	j := setupJournal(t)

	if err := j.Append(OpOpen, OpenPayload{Path: "codes.yaml", Hash: "abc"}); err != nil {
		t.Fatalf("append open: %v", err)
	}
	if err := j.Append(OpExclude, TogglePayload{Path: []int{0}, Group: "bleeding"}); err != nil {
		t.Fatalf("append exclude: %v", err)
	}
	if err := j.Append(OpInclude, TogglePayload{Path: []int{0, 1}, Group: "bleeding"}); err != nil {
		t.Fatalf("append include: %v", err)
	}

	entries, err := ReadAll(j.Path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	for i, e := range entries {
		if e.Seq != uint64(i+1) {
			t.Errorf("entry %d: seq = %d, want %d", i, e.Seq, i+1)
		}
	}

	var toggle TogglePayload
	if err := entries[2].Decode(&toggle); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !reflect.DeepEqual(toggle.Path, []int{0, 1}) || toggle.Group != "bleeding" {
		t.Errorf("toggle payload = %+v", toggle)
	}
}

func TestOpenResumesSequence(t *testing.T) {
	j := setupJournal(t)
	if err := j.Append(OpOpen, OpenPayload{Path: "codes.yaml", Hash: "abc"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.Append(OpSetGroup, GroupPayload{Group: "bleeding"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	j.Close()

	reopened := &Journal{Path: j.Path}
	if err := reopened.Open(); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	if err := reopened.Append(OpAddGroup, GroupPayload{Group: "sepsis"}); err != nil {
		t.Fatalf("append after reopen: %v", err)
	}

	entries, err := ReadAll(j.Path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got := entries[len(entries)-1].Seq; got != 3 {
		t.Errorf("resumed seq = %d, want 3", got)
	}
}

func TestReadAllToleratesTornTail(t *testing.T) {
	j := setupJournal(t)
	if err := j.Append(OpOpen, OpenPayload{Path: "codes.yaml", Hash: "abc"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.Append(OpExclude, TogglePayload{Path: []int{0}, Group: "bleeding"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	j.Close()

	// Chop bytes off the final frame, as an interrupted write would
	data, err := os.ReadFile(j.Path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if err := os.WriteFile(j.Path, data[:len(data)-5], 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	entries, err := ReadAll(j.Path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Op != OpOpen {
		t.Errorf("entries = %d, want just the open entry", len(entries))
	}
}

func TestReadAllMissingFileIsEmpty(t *testing.T) {
	entries, err := ReadAll(filepath.Join(t.TempDir(), "absent.journal"))
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if entries != nil {
		t.Errorf("entries = %v, want nil", entries)
	}
}

func TestCheckpointTruncatesAndReanchors(t *testing.T) {
	j := setupJournal(t)
	if err := j.Append(OpOpen, OpenPayload{Path: "codes.yaml", Hash: "old"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.Append(OpExclude, TogglePayload{Path: []int{0}, Group: "bleeding"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := j.Checkpoint("codes.yaml", "new"); err != nil {
		t.Fatalf("checkpoint failed: %v", err)
	}

	entries, err := ReadAll(j.Path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Op != OpOpen || entries[0].Seq != 1 {
		t.Fatalf("after checkpoint: %d entries, first %v", len(entries), entries[0])
	}
	var open OpenPayload
	if err := entries[0].Decode(&open); err != nil {
		t.Fatalf("decode open: %v", err)
	}
	if open.Hash != "new" {
		t.Errorf("hash = %q, want new", open.Hash)
	}
}

func TestPendingSkipsCheckpointedOps(t *testing.T) {
	entries := []*Entry{
		{Seq: 1, Op: OpOpen, Data: []byte(`{"path":"codes.yaml","hash":"abc"}`)},
		{Seq: 2, Op: OpExclude, Data: []byte(`{"path":[0],"group":"bleeding"}`)},
		{Seq: 3, Op: OpCheckpoint, Data: []byte(`null`)},
		{Seq: 4, Op: OpInclude, Data: []byte(`{"path":[0,1],"group":"bleeding"}`)},
	}
	open, ops, err := Pending(entries)
	if err != nil {
		t.Fatalf("pending failed: %v", err)
	}
	if open.Hash != "abc" {
		t.Errorf("open hash = %q", open.Hash)
	}
	if len(ops) != 1 || ops[0].Op != OpInclude {
		t.Errorf("pending ops = %v, want just the include", ops)
	}

	if _, _, err := Pending(entries[1:]); err != ErrNoOpen {
		t.Errorf("missing open: err = %v, want ErrNoOpen", err)
	}
}

func TestPendingAnchorsOnNewestOpen(t *testing.T) {
	// Two sessions' histories in one file: an abandoned one and the one
	// that reopened the journal. Only the newest history is pending.
	entries := []*Entry{
		{Seq: 1, Op: OpOpen, Data: []byte(`{"path":"codes.yaml","hash":"old"}`)},
		{Seq: 2, Op: OpExclude, Data: []byte(`{"path":[0],"group":"bleeding"}`)},
		{Seq: 3, Op: OpOpen, Data: []byte(`{"path":"codes.yaml","hash":"new"}`)},
		{Seq: 4, Op: OpInclude, Data: []byte(`{"path":[0,1],"group":"bleeding"}`)},
	}
	open, ops, err := Pending(entries)
	if err != nil {
		t.Fatalf("pending failed: %v", err)
	}
	if open.Hash != "new" {
		t.Errorf("open hash = %q, want the newest anchor's", open.Hash)
	}
	if len(ops) != 1 || ops[0].Op != OpInclude {
		t.Fatalf("pending ops = %v, want just the include after the newest open", ops)
	}
	if ops[0].Seq != 4 {
		t.Errorf("pending seq = %d, want 4", ops[0].Seq)
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.yaml")
	if err := os.WriteFile(path, []byte("groups: [a]\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	h1, err := HashFile(path)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, _ := HashFile(path)
	if h1 != h2 || len(h1) != 64 {
		t.Errorf("hash unstable or malformed: %q vs %q", h1, h2)
	}
	if err := os.WriteFile(path, []byte("groups: [b]\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	h3, _ := HashFile(path)
	if h3 == h1 {
		t.Errorf("hash should change with content")
	}
}
