package cmd

import (
	"testing"

	"github.com/tanq16/driveloader/internal/utils"
)

func TestBuildJobsFromBatch(t *testing.T) {
	data := []byte(`
- link: https://drive.google.com/file/d/abc/view
  op: lecture.mp4
  chunk_size: 65536
- link: xyz
  cookies: other.json
- op: orphan.mp4
- link: neg
  chunk_size: -5
`)
	entries, err := parseBatchFile(data)
	if err != nil {
		t.Fatalf("parseBatchFile: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(entries))
	}
	hc := utils.HTTPClientConfig{UserAgent: "ua"}
	jobs := buildJobsFromBatch(entries, "default.json", hc)
	if len(jobs) != 3 {
		t.Fatalf("jobs = %d, want 3", len(jobs))
	}
	if jobs[0].OutputPath != "lecture.mp4" || jobs[0].ChunkSize != 65536 || jobs[0].CookieFile != "default.json" {
		t.Errorf("first job = %+v", jobs[0])
	}
	if jobs[1].CookieFile != "other.json" || jobs[1].ChunkSize != 0 {
		t.Errorf("second job = %+v", jobs[1])
	}
	if jobs[2].ChunkSize != 0 {
		t.Errorf("negative chunk size should fall back to adaptive, got %d", jobs[2].ChunkSize)
	}
	for _, job := range jobs {
		if job.JobType != "google-drive" || job.HTTPClientConfig.UserAgent != "ua" || job.Metadata == nil {
			t.Errorf("job not fully populated: %+v", job)
		}
	}
}

func TestParseBatchFileRejectsMapping(t *testing.T) {
	if _, err := parseBatchFile([]byte("google-drive:\n  - link: abc\n")); err == nil {
		t.Error("expected error for a non-list batch file")
	}
}
