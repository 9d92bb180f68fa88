package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/driveloader/internal/output"
	"github.com/tanq16/driveloader/internal/utils"
)

// pathLocks serializes jobs that resolve to the same destination file.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (p *pathLocks) lock(path string) func() {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}
	p.mu.Lock()
	if p.locks == nil {
		p.locks = make(map[string]*sync.Mutex)
	}
	l, ok := p.locks[key]
	if !ok {
		l = &sync.Mutex{}
		p.locks[key] = l
	}
	p.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Run executes jobs on numWorkers workers and returns an error when any job failed.
// In debug mode the live display is skipped so log lines stay readable.
func Run(ctx context.Context, jobs []utils.DriveJob, numWorkers int) error {
	outputMgr := output.NewManager()
	if !utils.GlobalDebugFlag {
		outputMgr.StartDisplay()
		defer outputMgr.StopDisplay()
	} else {
		defer outputMgr.ShowSummary()
	}
	failed := runJobs(ctx, jobs, numWorkers, outputMgr)
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(jobs))
	}
	return nil
}

func runJobs(ctx context.Context, jobs []utils.DriveJob, numWorkers int, outputMgr *output.Manager) int {
	numWorkers = max(1, min(numWorkers, len(jobs)))
	jobCh := make(chan utils.DriveJob, len(jobs))
	for _, job := range jobs {
		if job.ID == "" {
			job.ID = uuid.NewString()
		}
		jobCh <- job
	}
	close(jobCh)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
		locks  pathLocks
	)
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := processJobs(ctx, jobCh, outputMgr, &locks)
			mu.Lock()
			failed += n
			mu.Unlock()
		}()
	}
	wg.Wait()
	return failed
}

func processJobs(ctx context.Context, jobCh <-chan utils.DriveJob, outputMgr *output.Manager, locks *pathLocks) int {
	failed := 0
	for job := range jobCh {
		if err := processJob(ctx, &job, outputMgr, locks); err != nil {
			failed++
		}
	}
	return failed
}

func processJob(ctx context.Context, job *utils.DriveJob, outputMgr *output.Manager, locks *pathLocks) error {
	jobID := outputMgr.RegisterJob(job.URL)
	fail := func(stage string, err error) error {
		log.Error().Str("op", "scheduler/scheduler").Str("job", job.ID).Err(err).Msgf("%s failed", stage)
		outputMgr.ReportError(jobID, fmt.Errorf("%s failed: %w", stage, err))
		outputMgr.SetMessage(jobID, fmt.Sprintf("%s failed for %s", stage, job.URL))
		return err
	}

	downloader, exists := downloaderRegistry[job.JobType]
	if !exists {
		return fail("lookup", fmt.Errorf("unknown job type: %s", job.JobType))
	}
	if job.Metadata == nil {
		job.Metadata = make(map[string]any)
	}

	outputMgr.SetStatus(jobID, "pending")
	outputMgr.SetMessage(jobID, fmt.Sprintf("Validating %s", job.URL))
	if err := downloader.ValidateJob(job); err != nil {
		return fail("validation", err)
	}

	outputMgr.SetMessage(jobID, fmt.Sprintf("Resolving %s", job.URL))
	if err := downloader.BuildJob(ctx, job); err != nil {
		return fail("metadata", err)
	}

	unlock := locks.lock(job.OutputPath)
	defer unlock()
	outputMgr.SetMessage(jobID, fmt.Sprintf("Downloading %s", job.OutputPath))
	tracker := output.NewProgressTracker(outputMgr, jobID)
	job.Observer = tracker
	if err := downloader.Download(ctx, job); err != nil {
		return fail("download", err)
	}

	done, _, _ := tracker.Snapshot()
	outputMgr.Complete(jobID, fmt.Sprintf("Downloaded %s (%s)", job.OutputPath, output.FormatBytes(uint64(max(0, done)))))
	log.Info().Str("op", "scheduler/scheduler").Str("job", job.ID).Msgf("job complete for %s", job.OutputPath)
	return nil
}
