package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ComputeOffset returns the number of bytes already present at path, or 0 if nothing is there.
func ComputeOffset(path string) (int64, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error inspecting destination: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("destination %s is a directory", path)
	}
	return info.Size(), nil
}

// OpenFlags is create/truncate for a fresh transfer and append-only once bytes exist.
func OpenFlags(offset int64) int {
	if offset > 0 {
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
}

func RangeHeader(offset int64) string {
	if offset <= 0 {
		return ""
	}
	return fmt.Sprintf("bytes=%d-", offset)
}
