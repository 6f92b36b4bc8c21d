package snapshotfile

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	in := []map[string]string{{"song_name": "Ivy", "artist": "Frank Ocean"}}
	if err := s.Write(Songs, in); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	b, err := os.ReadFile(s.Path(Songs))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(b), "\n  {") {
		t.Errorf("expected two-space indentation, got %s", b)
	}

	var out []map[string]string
	if err := s.Read(Songs, &out); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(out) != 1 || out[0]["artist"] != "Frank Ocean" {
		t.Errorf("Read = %v", out)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestReadMissing(t *testing.T) {
	var v any
	if err := New(t.TempDir()).Read(Projects, &v); !errors.Is(err, ErrSnapshotMissing) {
		t.Fatalf("expected ErrSnapshotMissing, got %v", err)
	}
}
