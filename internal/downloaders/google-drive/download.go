package gdrive

import (
	"context"
	"fmt"

	"github.com/tanq16/driveloader/internal/engine"
	"github.com/tanq16/driveloader/internal/utils"
)

func (d *GDriveDownloader) Download(ctx context.Context, job *utils.DriveJob) error {
	videoURL, _ := job.Metadata["videoURL"].(string)
	if videoURL == "" {
		return fmt.Errorf("job has not been built")
	}
	cookies, _ := job.Metadata["cookies"].(map[string]string)

	var observer engine.Observer = engine.NopObserver{}
	if job.Observer != nil {
		observer = job.Observer
	} else if job.ProgressFunc != nil {
		observer = &engine.FuncObserver{Fn: job.ProgressFunc}
	}
	task := engine.NewTask(videoURL, job.OutputPath, cookies, job.ChunkSize)
	return engine.NewWithClientConfig(job.HTTPClientConfig, observer).Run(ctx, task)
}
