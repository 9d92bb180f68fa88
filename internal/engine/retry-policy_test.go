package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyStatus(t *testing.T) {
	p := DefaultRetryPolicy()
	tests := map[int]Class{
		http.StatusForbidden:           ClassAccessDenied,
		http.StatusNotFound:            ClassNotFound,
		http.StatusTooManyRequests:     ClassTransientServer,
		http.StatusInternalServerError: ClassTransientServer,
		http.StatusBadGateway:          ClassTransientServer,
		http.StatusServiceUnavailable:  ClassTransientServer,
		http.StatusGatewayTimeout:      ClassTransientServer,
		http.StatusUnauthorized:        ClassTransientServer,
		http.StatusFound:               ClassTransientServer,
		http.StatusNoContent:           ClassTransientServer,
	}
	for code, want := range tests {
		if got := p.ClassifyStatus(code); got != want {
			t.Errorf("ClassifyStatus(%d) = %s, want %s", code, got, want)
		}
	}
}

func TestClassifyError(t *testing.T) {
	p := DefaultRetryPolicy()
	tests := []struct {
		name  string
		err   error
		cause error
		want  Class
	}{
		{"stall watchdog", context.Canceled, errStalled, ClassTimeout},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), nil, ClassTimeout},
		{"net timeout", fmt.Errorf("read: %w", timeoutErr{}), nil, ClassTimeout},
		{"canceled", context.Canceled, nil, ClassCanceled},
		{"reset", errors.New("connection reset by peer"), nil, ClassNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ClassifyError(tt.err, tt.cause); got != tt.want {
				t.Errorf("ClassifyError = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRetryableAndBackoff(t *testing.T) {
	p := DefaultRetryPolicy()
	for _, c := range []Class{ClassTransientServer, ClassTimeout, ClassNetwork} {
		if !p.Retryable(c) {
			t.Errorf("%s should be retryable", c)
		}
	}
	for _, c := range []Class{ClassAccessDenied, ClassNotFound, ClassCanceled, ClassLocalIO, ClassSizeMismatch} {
		if p.Retryable(c) {
			t.Errorf("%s should be terminal", c)
		}
	}
	if got := p.Backoff(1); got != 2*time.Second {
		t.Errorf("Backoff(1) = %s, want 2s", got)
	}
	if got := p.Backoff(2); got != 4*time.Second {
		t.Errorf("Backoff(2) = %s, want 4s", got)
	}
}

func TestDownloadErrorMatching(t *testing.T) {
	err := error(&DownloadError{Class: ClassAccessDenied, Attempts: 1, StatusCode: 403})
	if !errors.Is(err, ErrAccessDenied) || errors.Is(err, ErrNotFound) {
		t.Errorf("unexpected sentinel matching for %v", err)
	}
	exhausted := error(&DownloadError{Class: ClassTimeout, Attempts: 3, Err: fmt.Errorf("%w: stalled", ErrExhausted)})
	if !errors.Is(exhausted, ErrExhausted) {
		t.Errorf("expected %v to match ErrExhausted", exhausted)
	}
	if len(Hints(err)) == 0 {
		t.Error("expected hints for access denied")
	}
	if Hints(errors.New("plain")) != nil {
		t.Error("expected no hints for a plain error")
	}
}
