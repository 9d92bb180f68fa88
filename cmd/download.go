package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tanq16/driveloader/internal/scheduler"
	"github.com/tanq16/driveloader/internal/utils"
)

func newDownloadCmd() *cobra.Command {
	var outputPath string
	var chunkSize int64

	cmd := &cobra.Command{
		Use:     "download [VIDEO_ID|URL] [--output OUTPUT_PATH] [--chunk-size BYTES]",
		Short:   "Download a Google Drive video, resuming any partial file",
		Aliases: []string{"dl", "get"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("chunk-size") {
				chunkSize = 0
			} else if chunkSize <= 0 {
				return fmt.Errorf("--chunk-size must be positive, got %d", chunkSize)
			}
			job := utils.DriveJob{
				JobType:          "google-drive",
				URL:              args[0],
				OutputPath:       outputPath,
				CookieFile:       globalConfig.CookieFile,
				ChunkSize:        chunkSize,
				HTTPClientConfig: globalHTTPConfig,
				Metadata:         make(map[string]any),
			}
			ctx, stop := signalContext()
			defer stop()
			return scheduler.Run(ctx, []utils.DriveJob{job}, 1)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (defaults to the video title)")
	cmd.Flags().Int64VarP(&chunkSize, "chunk-size", "c", 0, "Read buffer size in bytes (adaptive when not set)")
	return cmd
}
