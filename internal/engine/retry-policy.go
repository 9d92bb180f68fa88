package engine

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// Class is the failure classification of one request attempt.
type Class int

const (
	ClassNone Class = iota
	ClassAccessDenied
	ClassNotFound
	ClassTransientServer
	ClassTimeout
	ClassNetwork
	ClassCanceled
	ClassLocalIO
	ClassSizeMismatch
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassAccessDenied:
		return "access-denied"
	case ClassNotFound:
		return "not-found"
	case ClassTransientServer:
		return "transient-server"
	case ClassTimeout:
		return "timeout"
	case ClassNetwork:
		return "network-error"
	case ClassCanceled:
		return "canceled"
	case ClassLocalIO:
		return "local-io"
	case ClassSizeMismatch:
		return "size-mismatch"
	default:
		return "unknown"
	}
}

// Hints returns user-facing suggestions for a failure class.
func (c Class) Hints() []string {
	switch c {
	case ClassAccessDenied:
		return []string{
			"Video may require authentication, provide cookies with --cookie-file",
			"Cookies may have expired, export fresh ones from your browser",
			"Your account may not have access or download permission",
		}
	case ClassNotFound:
		return []string{
			"Check that the video ID is correct",
			"The video may have been deleted or the download link expired",
		}
	case ClassTransientServer:
		return []string{"The server kept failing, try again later"}
	case ClassTimeout:
		return []string{"Check your internet connection", "Try again later"}
	case ClassNetwork:
		return []string{"Check your internet connection", "Verify the video URL is accessible"}
	case ClassCanceled:
		return []string{"Run the same command again to resume from the partial file"}
	case ClassLocalIO:
		return []string{"Check the destination path permissions and free disk space"}
	case ClassSizeMismatch:
		return []string{"The local file is larger than the remote video, remove it and download again"}
	default:
		return nil
	}
}

var errStalled = errors.New("no data received within timeout")

var statusTable = map[int]Class{
	http.StatusForbidden:           ClassAccessDenied,
	http.StatusNotFound:            ClassNotFound,
	http.StatusTooManyRequests:     ClassTransientServer,
	http.StatusInternalServerError: ClassTransientServer,
	http.StatusBadGateway:          ClassTransientServer,
	http.StatusServiceUnavailable:  ClassTransientServer,
	http.StatusGatewayTimeout:      ClassTransientServer,
}

// RetryPolicy is the single source of retry decisions: a classification table and one
// backoff function. Nothing below it retries on its own.
type RetryPolicy struct {
	MaxAttempts int
	Unit        time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Unit: time.Second}
}

// ClassifyStatus maps a non-success HTTP status to a failure class.
func (p RetryPolicy) ClassifyStatus(code int) Class {
	if class, ok := statusTable[code]; ok {
		return class
	}
	return ClassTransientServer
}

// ClassifyError maps a transport error to a failure class. cause is the attempt context's
// cancellation cause, if any.
func (p RetryPolicy) ClassifyError(err, cause error) Class {
	if errors.Is(cause, errStalled) {
		return ClassTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ClassCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTimeout
	}
	return ClassNetwork
}

func (p RetryPolicy) Retryable(c Class) bool {
	return c == ClassTransientServer || c == ClassTimeout || c == ClassNetwork
}

// Backoff is Unit * 2^attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return p.Unit * time.Duration(1<<uint(attempt))
}
