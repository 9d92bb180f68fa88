package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/driveloader/internal/utils"
)

const DefaultTimeout = 60 * time.Second

// Transport is the HTTP surface the engine needs. utils.DriveHTTPClient satisfies it.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
	SetCookies(rawURL string, cookies map[string]string) error
}

type Config struct {
	Policy   RetryPolicy
	Timeout  time.Duration // inactivity limit for headers and each body read
	Observer Observer
	Sleep    func(ctx context.Context, d time.Duration) error
}

// Engine performs one resumable single-stream transfer per Run call.
type Engine struct {
	client   Transport
	policy   RetryPolicy
	timeout  time.Duration
	observer safeObserver
	sleep    func(ctx context.Context, d time.Duration) error
}

type attemptResult struct {
	class  Class
	status int
	err    error
}

var completed = attemptResult{class: ClassNone}

func New(client Transport, cfg Config) *Engine {
	if cfg.Policy.MaxAttempts <= 0 {
		cfg.Policy = DefaultRetryPolicy()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	return &Engine{
		client:   client,
		policy:   cfg.Policy,
		timeout:  cfg.Timeout,
		observer: safeObserver{inner: cfg.Observer},
		sleep:    cfg.Sleep,
	}
}

// NewWithClientConfig builds the engine on a DriveHTTPClient, reusing its timeout.
func NewWithClientConfig(cfg utils.HTTPClientConfig, observer Observer) *Engine {
	client := utils.NewDriveHTTPClient(cfg)
	return New(client, Config{Timeout: client.Timeout(), Observer: observer})
}

// Run drives task to a terminal state. It returns nil on COMPLETE and a *DownloadError
// otherwise. Bytes flushed before a failure stay on disk for the next Run.
func (e *Engine) Run(ctx context.Context, task *Task) error {
	parsed, err := url.Parse(task.SourceURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("invalid source URL %q", task.SourceURL)
	}
	if task.DestinationPath == "" {
		return errors.New("destination path is required")
	}
	task.Status = StatusPending
	if err := e.client.SetCookies(task.SourceURL, task.AuthCookies); err != nil {
		return err
	}
	if dir := filepath.Dir(task.DestinationPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return e.finish(task, attemptResult{class: ClassLocalIO, err: err}, 0)
		}
	}

	requests := 0
	for {
		if ctx.Err() != nil {
			return e.finish(task, attemptResult{class: ClassCanceled, err: ctx.Err()}, requests)
		}
		task.Status = StatusRequesting
		requests++
		res := e.attempt(ctx, task)
		if res.class == ClassNone {
			return e.finish(task, res, requests)
		}
		if !e.policy.Retryable(res.class) {
			return e.finish(task, res, requests)
		}

		task.AttemptCount++
		if task.AttemptCount >= e.policy.MaxAttempts {
			res.err = fmt.Errorf("%w: %v", ErrExhausted, res.err)
			task.Status = StatusFailedExhausted
			return e.finish(task, res, requests)
		}
		wait := e.policy.Backoff(task.AttemptCount)
		log.Warn().Str("op", "engine/engine").Err(res.err).Msgf("attempt %d/%d for %s failed (%s), retrying in %s",
			task.AttemptCount, e.policy.MaxAttempts, task.DestinationPath, res.class, wait)
		if err := e.sleep(ctx, wait); err != nil {
			return e.finish(task, attemptResult{class: ClassCanceled, err: err}, requests)
		}
	}
}

func (e *Engine) finish(task *Task, res attemptResult, requests int) error {
	if res.class == ClassNone {
		task.Status = StatusComplete
		log.Info().Str("op", "engine/engine").Msgf("download complete for %s (%d bytes)", task.DestinationPath, task.BytesOnDisk)
		return nil
	}
	if task.Status != StatusFailedExhausted {
		task.Status = StatusFailedTerminal
	}
	log.Error().Str("op", "engine/engine").Err(res.err).Msgf("download of %s ended as %s (%s)", task.DestinationPath, task.Status, res.class)
	return &DownloadError{Class: res.class, Attempts: requests, StatusCode: res.status, Err: res.err}
}

// attempt is one REQUESTING (and possibly STREAMING) pass. The destination handle is
// released before it returns.
func (e *Engine) attempt(ctx context.Context, task *Task) attemptResult {
	offset, err := ComputeOffset(task.DestinationPath)
	if err != nil {
		return attemptResult{class: ClassLocalIO, err: err}
	}
	if offset < task.BytesOnDisk {
		log.Warn().Str("op", "engine/engine").Msgf("destination shrank from %d to %d bytes outside the engine", task.BytesOnDisk, offset)
	}
	task.BytesOnDisk = offset

	attemptCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	watchdog := time.AfterFunc(e.timeout, func() { cancel(errStalled) })
	defer watchdog.Stop()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, task.SourceURL, nil)
	if err != nil {
		return attemptResult{class: ClassNetwork, err: fmt.Errorf("error creating GET request: %w", err)}
	}
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	if rangeHeader := RangeHeader(offset); rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
		log.Debug().Str("op", "engine/engine").Msgf("resuming %s from byte %d", task.DestinationPath, offset)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return e.transportFailure(ctx, attemptCtx, fmt.Errorf("error executing GET request: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusPartialContent:
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable && rangeAlreadySatisfied(resp, offset):
		log.Info().Str("op", "engine/engine").Msgf("%s already holds all %d bytes", task.DestinationPath, offset)
		task.TotalSize = offset
		e.observer.offset(offset)
		e.observer.total(offset)
		return completed
	default:
		class := e.policy.ClassifyStatus(resp.StatusCode)
		return attemptResult{class: class, status: resp.StatusCode, err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	total, skip, res := e.accountResponse(task, resp, offset)
	if res != nil {
		return *res
	}
	if task.TotalSize >= 0 && total != task.TotalSize {
		log.Warn().Str("op", "engine/engine").Msgf("server now reports %d total bytes (was %d), following the newest response", total, task.TotalSize)
	}
	task.TotalSize = total
	task.Status = StatusStreaming
	e.observer.offset(offset)
	e.observer.total(total)

	chunkSize := SelectChunkSize(total, task.RequestedChunkSize)
	log.Debug().Str("op", "engine/engine").Msgf("streaming %s with %d byte chunks (total %d)", task.DestinationPath, chunkSize, total)
	body := &watchdogReader{r: resp.Body, timer: watchdog, timeout: e.timeout}
	if res := e.stream(ctx, attemptCtx, task, body, offset, skip, chunkSize); res.class != ClassNone {
		return res
	}

	finalSize, err := ComputeOffset(task.DestinationPath)
	if err != nil {
		return attemptResult{class: ClassLocalIO, err: err}
	}
	task.BytesOnDisk = finalSize
	if total >= 0 && finalSize < total {
		return attemptResult{class: ClassNetwork, err: fmt.Errorf("body ended early: have %d of %d bytes", finalSize, total)}
	}
	if total >= 0 && finalSize > total {
		return attemptResult{class: ClassSizeMismatch, err: fmt.Errorf("%w: have %d of %d bytes", ErrSizeMismatch, finalSize, total)}
	}
	return completed
}

// accountResponse derives the total size and the number of leading body bytes to discard.
// A server that ignores Range answers 200 with the whole body; the bytes already on disk are
// skipped so the file is never rewritten.
func (e *Engine) accountResponse(task *Task, resp *http.Response, offset int64) (int64, int64, *attemptResult) {
	if resp.StatusCode == http.StatusOK {
		if offset == 0 {
			return resp.ContentLength, 0, nil
		}
		log.Warn().Str("op", "engine/engine").Msgf("server ignored range request for %s, skipping %d bytes", task.DestinationPath, offset)
		if resp.ContentLength >= 0 && offset > resp.ContentLength {
			return 0, 0, &attemptResult{class: ClassSizeMismatch, err: fmt.Errorf("%w: have %d, remote has %d bytes", ErrSizeMismatch, offset, resp.ContentLength)}
		}
		return resp.ContentLength, offset, nil
	}

	total := int64(-1)
	if resp.ContentLength >= 0 {
		total = resp.ContentLength + offset
	}
	if cr := resp.Header.Get("Content-Range"); cr != "" {
		start, _, crTotal, err := parseContentRange(cr)
		if err != nil {
			return 0, 0, &attemptResult{class: ClassTransientServer, status: resp.StatusCode, err: err}
		}
		if start != offset {
			return 0, 0, &attemptResult{class: ClassTransientServer, status: resp.StatusCode,
				err: fmt.Errorf("server resumed at byte %d, expected %d", start, offset)}
		}
		if total < 0 {
			total = crTotal
		}
	}
	return total, 0, nil
}

func (e *Engine) stream(ctx, attemptCtx context.Context, task *Task, body io.Reader, offset, skip, chunkSize int64) (res attemptResult) {
	file, err := os.OpenFile(task.DestinationPath, OpenFlags(offset), 0644)
	if err != nil {
		return attemptResult{class: ClassLocalIO, err: fmt.Errorf("error opening destination: %w", err)}
	}
	defer func() {
		syncErr := file.Sync()
		closeErr := file.Close()
		if res.class == ClassNone {
			if err := errors.Join(syncErr, closeErr); err != nil {
				res = attemptResult{class: ClassLocalIO, err: fmt.Errorf("error flushing destination: %w", err)}
			}
		}
	}()

	if skip > 0 {
		if _, err := io.CopyN(io.Discard, body, skip); err != nil {
			return e.transportFailure(ctx, attemptCtx, fmt.Errorf("error skipping already downloaded bytes: %w", err))
		}
	}

	buffer := make([]byte, chunkSize)
	for {
		if ctx.Err() != nil {
			return attemptResult{class: ClassCanceled, err: ctx.Err()}
		}
		n, readErr := body.Read(buffer)
		if n > 0 {
			if _, err := file.Write(buffer[:n]); err != nil {
				return attemptResult{class: ClassLocalIO, err: fmt.Errorf("error writing to destination: %w", err)}
			}
			task.BytesOnDisk += int64(n)
			e.observer.bytes(int64(n))
		}
		if readErr == io.EOF {
			return completed
		}
		if readErr != nil {
			return e.transportFailure(ctx, attemptCtx, fmt.Errorf("error reading response body: %w", readErr))
		}
	}
}

func (e *Engine) transportFailure(ctx, attemptCtx context.Context, err error) attemptResult {
	if ctx.Err() != nil {
		return attemptResult{class: ClassCanceled, err: ctx.Err()}
	}
	cause := context.Cause(attemptCtx)
	class := e.policy.ClassifyError(err, cause)
	if class == ClassCanceled {
		// the attempt context was cancelled without the caller asking for it
		class = ClassNetwork
	}
	if cause != nil && !errors.Is(err, cause) {
		err = fmt.Errorf("%w (%v)", err, cause)
	}
	return attemptResult{class: class, err: err}
}
