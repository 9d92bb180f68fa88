package utils

import (
	"context"
	"time"
)

type Downloader interface {
	Download(ctx context.Context, job *DriveJob) error
	BuildJob(ctx context.Context, job *DriveJob) error
	ValidateJob(job *DriveJob) error
}

// ProgressObserver mirrors the engine's observer so jobs can carry one without an import cycle.
type ProgressObserver interface {
	OnTotalKnown(total int64)
	OnBytesTransferred(delta int64)
}

type DriveJob struct {
	ID               string
	JobType          string
	URL              string
	OutputPath       string
	CookieFile       string
	ChunkSize        int64 // zero selects adaptive sizing
	ProgressFunc     func(downloaded, total int64)
	Observer         ProgressObserver // takes precedence over ProgressFunc
	Metadata         map[string]any
	HTTPClientConfig HTTPClientConfig
}

type HTTPClientConfig struct {
	Timeout       time.Duration
	KATimeout     time.Duration
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string
	UserAgent     string
	Headers       map[string]string
}

type BatchEntry struct {
	Link       string `yaml:"link"`
	OutputPath string `yaml:"op,omitempty"`
	ChunkSize  int64  `yaml:"chunk_size,omitempty"`
	CookieFile string `yaml:"cookies,omitempty"`
}
