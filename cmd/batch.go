package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanq16/driveloader/internal/scheduler"
	"github.com/tanq16/driveloader/internal/utils"
	"gopkg.in/yaml.v3"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE] [OPTIONS]",
		Short: "Download multiple videos listed in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("error reading YAML file: %w", err)
			}
			entries, err := parseBatchFile(data)
			if err != nil {
				return err
			}
			jobs := buildJobsFromBatch(entries, globalConfig.CookieFile, globalHTTPConfig)
			if len(jobs) == 0 {
				return fmt.Errorf("no valid jobs found in the batch file")
			}
			ctx, stop := signalContext()
			defer stop()
			return scheduler.Run(ctx, jobs, globalConfig.Workers)
		},
	}
	return cmd
}

func parseBatchFile(data []byte) ([]utils.BatchEntry, error) {
	var entries []utils.BatchEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("error parsing YAML file: %w", err)
	}
	return entries, nil
}

func buildJobsFromBatch(entries []utils.BatchEntry, cookieFile string, httpConfig utils.HTTPClientConfig) []utils.DriveJob {
	var jobs []utils.DriveJob
	for i, entry := range entries {
		if entry.Link == "" {
			log.Warn().Str("op", "cmd/batch").Msgf("entry %d has no link, skipping", i+1)
			continue
		}
		if entry.ChunkSize < 0 {
			log.Warn().Str("op", "cmd/batch").Msgf("entry %d has a negative chunk size, using adaptive sizing", i+1)
			entry.ChunkSize = 0
		}
		job := utils.DriveJob{
			JobType:          "google-drive",
			URL:              entry.Link,
			OutputPath:       entry.OutputPath,
			CookieFile:       cookieFile,
			ChunkSize:        entry.ChunkSize,
			HTTPClientConfig: httpConfig,
			Metadata:         make(map[string]any),
		}
		if entry.CookieFile != "" {
			job.CookieFile = entry.CookieFile
		}
		jobs = append(jobs, job)
	}
	return jobs
}
