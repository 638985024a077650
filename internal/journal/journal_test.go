package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
)

func TestJSONLZstdWriter_WriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "steps")

	entries := []StepEntry{
		{At: time.Now(), Goal: "PLANK", Item: "LOG", Outcome: "PROGRESS", Count: 1, Gained: 1, Depth: 2},
		{At: time.Now(), Goal: "PLANK", Item: "PLANK", Outcome: "PROGRESS", Count: 1, Gained: 4, Depth: 1},
	}
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "steps-*.jsonl.zst"))
	if err != nil || len(files) != 1 {
		t.Fatalf("trace files: %v (err=%v)", files, err)
	}
	f, err := os.Open(files[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var got []StepEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e StepEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		got = append(got, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 || got[0].Item != "LOG" || got[1].Gained != 4 {
		t.Fatalf("read back: %+v", got)
	}
}

func TestSQLiteIndex_WriteAndCount(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "steps.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer idx.Close()

	idx.WriteStep(StepEntry{At: time.Now(), Goal: "LOG", Item: "LOG", Outcome: "BACKOFF", Replan: true})
	idx.WriteStep(StepEntry{At: time.Now(), Goal: "LOG", Item: "LOG", Outcome: "PROGRESS", Gained: 1})
	idx.WriteStep(StepEntry{At: time.Now(), Goal: "LOG", Item: "LOG", Outcome: "PROGRESS", Gained: 1})

	// The writer goroutine drains asynchronously.
	deadline := time.Now().Add(5 * time.Second)
	for {
		n, err := idx.CountByOutcome("PROGRESS")
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if n == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("rows never landed: got %d want 2", n)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if n, _ := idx.CountByOutcome("BACKOFF"); n != 1 {
		t.Fatalf("backoff rows: got %d want 1", n)
	}
}

func TestJournal_OpenWriteClose(t *testing.T) {
	dir := t.TempDir()
	j, err := Open(dir)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	if err := j.WriteStep(StepEntry{At: time.Now(), Goal: "PLANK", Item: "LOG", Outcome: "PROGRESS", Gained: 1}); err != nil {
		t.Fatalf("write step: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "steps.db")); err != nil {
		t.Fatalf("steps.db missing: %v", err)
	}
}
