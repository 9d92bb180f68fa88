package scheduler

import (
	gdrive "github.com/tanq16/driveloader/internal/downloaders/google-drive"
	"github.com/tanq16/driveloader/internal/utils"
)

// downloaderRegistry maps job types to their downloader implementations.
var downloaderRegistry = map[string]utils.Downloader{
	"google-drive": &gdrive.GDriveDownloader{},
}

func Register(jobType string, d utils.Downloader) {
	downloaderRegistry[jobType] = d
}
