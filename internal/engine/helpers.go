package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// watchdogReader pushes the attempt's inactivity deadline forward on every read that
// returns data.
type watchdogReader struct {
	r       io.Reader
	timer   *time.Timer
	timeout time.Duration
}

func (w *watchdogReader) Read(p []byte) (int, error) {
	n, err := w.r.Read(p)
	if n > 0 {
		w.timer.Reset(w.timeout)
	}
	return n, err
}

// parseContentRange parses "bytes start-end/total". total is -1 when the server sends "*".
func parseContentRange(header string) (start, end, total int64, err error) {
	header = strings.TrimPrefix(header, "bytes ")
	parts := strings.Split(header, "/")
	if len(parts) != 2 {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range format: %s", header)
	}
	rangeParts := strings.Split(parts[0], "-")
	if len(rangeParts) != 2 {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range format: %s", header)
	}
	if start, err = strconv.ParseInt(rangeParts[0], 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid start byte: %w", err)
	}
	if end, err = strconv.ParseInt(rangeParts[1], 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid end byte: %w", err)
	}
	if parts[1] == "*" {
		return start, end, -1, nil
	}
	if total, err = strconv.ParseInt(parts[1], 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid total bytes: %w", err)
	}
	return start, end, total, nil
}

// rangeAlreadySatisfied reports whether a 416 response says the resource is exactly offset
// bytes long, i.e. the destination is already complete.
func rangeAlreadySatisfied(resp *http.Response, offset int64) bool {
	if offset <= 0 {
		return false
	}
	cr := resp.Header.Get("Content-Range")
	if !strings.HasPrefix(cr, "bytes */") {
		return false
	}
	total, err := strconv.ParseInt(strings.TrimPrefix(cr, "bytes */"), 10, 64)
	return err == nil && total == offset
}
