package output

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type hinted struct{ hints []string }

func (h *hinted) Error() string   { return "denied" }
func (h *hinted) Hints() []string { return h.hints }

func TestReportErrorCollectsHints(t *testing.T) {
	m := NewManager()
	id := m.RegisterJob("video-1")
	err := fmt.Errorf("download failed: %w", &hinted{hints: []string{"refresh cookies"}})
	m.ReportError(id, err)

	if got := m.GetStatus(id); got != "error" {
		t.Errorf("status = %q, want error", got)
	}
	reports := m.Errors()
	if len(reports) != 1 {
		t.Fatalf("errors = %d, want 1", len(reports))
	}
	if reports[0].Label != "video-1" || len(reports[0].Hints) != 1 || reports[0].Hints[0] != "refresh cookies" {
		t.Errorf("report = %+v", reports[0])
	}

	plain := m.RegisterJob("video-2")
	m.ReportError(plain, errors.New("boom"))
	if hints := m.Errors()[1].Hints; hints != nil {
		t.Errorf("plain error hints = %v, want nil", hints)
	}
}

func TestProgressTracker(t *testing.T) {
	m := NewManager()
	id := m.RegisterJob("video")
	tracker := NewProgressTracker(m, id)
	tracker.OnOffset(100)
	tracker.OnTotalKnown(1000)
	tracker.OnBytesTransferred(50)
	tracker.OnBytesTransferred(25)

	done, total, transferred := tracker.Snapshot()
	if done != 175 || total != 1000 || transferred != 75 {
		t.Errorf("snapshot = %d/%d (%d transferred), want 175/1000 (75)", done, total, transferred)
	}
	m.mutex.RLock()
	lines := m.outputs[id].StreamLines
	m.mutex.RUnlock()
	if len(lines) != 1 || !strings.Contains(lines[0], "17.5%") {
		t.Errorf("stream lines = %q", lines)
	}
}

func TestRenderOrdersJobs(t *testing.T) {
	m := NewManager()
	done := m.RegisterJob("a")
	active := m.RegisterJob("b")
	m.RegisterJob("c")
	m.Complete(done, "")
	m.SetMessage(active, "Downloading b")
	m.AddStreamLine(active, "line")

	var b strings.Builder
	n := m.render(&b, 50)
	if n != 4 {
		t.Errorf("rendered %d lines, want 4", n)
	}
	out := b.String()
	if !(strings.Index(out, "Downloading b") < strings.Index(out, "Waiting...") &&
		strings.Index(out, "Waiting...") < strings.Index(out, "Completed a")) {
		t.Errorf("unexpected order:\n%s", out)
	}
	if got := m.render(&strings.Builder{}, 2); got != 2 {
		t.Errorf("render ignored the line limit: %d", got)
	}
}

func TestFormatting(t *testing.T) {
	if got := FormatBytes(1536); got != "1.50 KB" {
		t.Errorf("FormatBytes = %q", got)
	}
	if got := FormatSpeed(2048, 2); got != "1.00 KB/s" {
		t.Errorf("FormatSpeed = %q", got)
	}
	if got := FormatETA(50, 100, 50, 5); got != "5s" {
		t.Errorf("FormatETA = %q", got)
	}
	if got := FormatETA(10, -1, 10, 1); got != "--" {
		t.Errorf("FormatETA unknown total = %q", got)
	}
	if got := ProgressBar(5, 10, 10); !strings.HasSuffix(got, "50.0%") {
		t.Errorf("ProgressBar = %q", got)
	}
}
