package engine

import (
	"errors"
	"fmt"
)

var (
	ErrAccessDenied = errors.New("access denied")
	ErrNotFound     = errors.New("resource not found")
	ErrExhausted    = errors.New("retries exhausted")
	ErrCanceled     = errors.New("download canceled")
	ErrSizeMismatch = errors.New("destination larger than remote resource")
)

// DownloadError is the classified outcome of a failed Run.
type DownloadError struct {
	Class      Class
	Attempts   int
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	msg := e.Class.String()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Attempts > 0 {
		msg = fmt.Sprintf("%s after %d attempt(s)", msg, e.Attempts)
	}
	return msg
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// Is lets callers match the outcome with the package sentinels.
func (e *DownloadError) Is(target error) bool {
	switch target {
	case ErrAccessDenied:
		return e.Class == ClassAccessDenied
	case ErrNotFound:
		return e.Class == ClassNotFound
	case ErrCanceled:
		return e.Class == ClassCanceled
	case ErrSizeMismatch:
		return e.Class == ClassSizeMismatch
	}
	return false
}

// Hints returns the actionable suggestions for err, or nil if err is not a DownloadError.
func Hints(err error) []string {
	var dlErr *DownloadError
	if errors.As(err, &dlErr) {
		return dlErr.Class.Hints()
	}
	return nil
}

func (e *DownloadError) Hints() []string {
	return e.Class.Hints()
}
