package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestComputeOffset(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.mp4")
	if got, err := ComputeOffset(missing); err != nil || got != 0 {
		t.Errorf("missing file: got (%d, %v), want (0, nil)", got, err)
	}

	partial := filepath.Join(dir, "partial.mp4")
	if err := os.WriteFile(partial, make([]byte, 1234), 0644); err != nil {
		t.Fatal(err)
	}
	if got, err := ComputeOffset(partial); err != nil || got != 1234 {
		t.Errorf("partial file: got (%d, %v), want (1234, nil)", got, err)
	}

	if _, err := ComputeOffset(dir); err == nil {
		t.Error("expected error for directory destination")
	}
}

func TestRangeHeaderAndFlags(t *testing.T) {
	if got := RangeHeader(0); got != "" {
		t.Errorf("RangeHeader(0) = %q, want empty", got)
	}
	if got := RangeHeader(2048); got != "bytes=2048-" {
		t.Errorf("RangeHeader(2048) = %q", got)
	}
	if OpenFlags(0)&os.O_TRUNC == 0 || OpenFlags(0)&os.O_APPEND != 0 {
		t.Error("fresh transfer must truncate and not append")
	}
	if OpenFlags(10)&os.O_APPEND == 0 || OpenFlags(10)&os.O_TRUNC != 0 {
		t.Error("resumed transfer must append and never truncate")
	}
}

func TestParseContentRange(t *testing.T) {
	start, end, total, err := parseContentRange("bytes 100-199/1000")
	if err != nil || start != 100 || end != 199 || total != 1000 {
		t.Errorf("got (%d, %d, %d, %v)", start, end, total, err)
	}
	if _, _, total, err := parseContentRange("bytes 0-9/*"); err != nil || total != -1 {
		t.Errorf("unknown total: got (%d, %v)", total, err)
	}
	if _, _, _, err := parseContentRange("garbage"); err == nil {
		t.Error("expected error for malformed header")
	}
}
