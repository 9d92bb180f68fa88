package output

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type JobOutput struct {
	ID          int
	Label       string
	Status      string
	Message     string
	StreamLines []string
	Complete    bool
	StartTime   time.Time
	LastUpdated time.Time
	Error       error
	Hints       []string
}

type ErrorReport struct {
	Label string
	Error error
	Hints []string
	Time  time.Time
}

// HintedError is satisfied by errors that carry user-facing follow-up suggestions.
type HintedError interface {
	error
	Hints() []string
}

type Manager struct {
	outputs     map[int]*JobOutput
	mutex       sync.RWMutex
	numLines    int
	maxStreams  int
	errors      []ErrorReport
	doneCh      chan struct{}
	displayTick time.Duration
	jobCount    int
	displayWg   sync.WaitGroup
	live        bool
}

func NewManager() *Manager {
	return &Manager{
		outputs:     make(map[int]*JobOutput),
		errors:      []ErrorReport{},
		maxStreams:  5,
		doneCh:      make(chan struct{}),
		displayTick: 300 * time.Millisecond,
	}
}

func (m *Manager) RegisterJob(label string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.jobCount++
	m.outputs[m.jobCount] = &JobOutput{
		ID:          m.jobCount,
		Label:       label,
		Status:      "pending",
		StreamLines: []string{},
		StartTime:   time.Now(),
		LastUpdated: time.Now(),
	}
	return m.jobCount
}

func (m *Manager) SetMessage(id int, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.Message = message
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) SetStatus(id int, status string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.Status = status
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) GetStatus(id int) string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if info, exists := m.outputs[id]; exists {
		return info.Status
	}
	return "unknown"
}

func (m *Manager) Complete(id int, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.StreamLines = []string{}
		if message == "" {
			info.Message = fmt.Sprintf("Completed %s", info.Label)
		} else {
			info.Message = message
		}
		info.Complete = true
		info.Status = "success"
		info.LastUpdated = time.Now()
	}
}

// ReportError marks the job failed. Hints are taken from the first error in the chain
// that carries them.
func (m *Manager) ReportError(id int, err error) {
	var hints []string
	var hinted HintedError
	if errors.As(err, &hinted) {
		hints = hinted.Hints()
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.Complete = true
		info.Status = "error"
		info.Error = err
		info.Hints = hints
		info.LastUpdated = time.Now()
		m.errors = append(m.errors, ErrorReport{
			Label: info.Label,
			Error: err,
			Hints: hints,
			Time:  time.Now(),
		})
	}
}

func (m *Manager) Errors() []ErrorReport {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]ErrorReport(nil), m.errors...)
}

func (m *Manager) AddStreamLine(id int, line string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.StreamLines = append(info.StreamLines, line)
		if len(info.StreamLines) > m.maxStreams {
			info.StreamLines = info.StreamLines[len(info.StreamLines)-m.maxStreams:]
		}
		info.LastUpdated = time.Now()
	}
}

// AddProgressBarToStream replaces the job's stream with a progress line. transferred is the
// byte count moved by this run, used for speed and ETA so a resumed file does not inflate them.
func (m *Manager) AddProgressBarToStream(id int, done, total, transferred int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		elapsed := time.Since(info.StartTime).Seconds()
		var display string
		if total > 0 {
			display = fmt.Sprintf("%s %s %s %s %s %s",
				ProgressBar(done, total, 30),
				debugStyle.Render(fmt.Sprintf("%s / %s", FormatBytes(uint64(max(0, done))), FormatBytes(uint64(total)))),
				StyleSymbols["bullet"], debugStyle.Render(FormatSpeed(transferred, elapsed)),
				StyleSymbols["bullet"], debugStyle.Render("ETA "+FormatETA(done, total, transferred, elapsed)))
		} else {
			display = fmt.Sprintf("%s %s %s",
				debugStyle.Render(FormatBytes(uint64(max(0, done)))),
				StyleSymbols["bullet"], debugStyle.Render(FormatSpeed(transferred, elapsed)))
		}
		info.StreamLines = []string{display}
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) ClearAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for id := range m.outputs {
		m.outputs[id].StreamLines = []string{}
	}
}

func (m *Manager) GetStatusIndicator(status string) string {
	switch status {
	case "success", "pass":
		return successStyle.Render(StyleSymbols["pass"])
	case "error", "fail":
		return errorStyle.Render(StyleSymbols["fail"])
	case "warning":
		return warningStyle.Render(StyleSymbols["warning"])
	case "pending":
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}

func styleMessage(status, message string) string {
	switch status {
	case "success":
		return successStyle.Render(message)
	case "error":
		return errorStyle.Render(message)
	case "warning":
		return warningStyle.Render(message)
	default:
		return pendingStyle.Render(message)
	}
}

func (m *Manager) sortJobs() (active, pending, completed []*JobOutput) {
	var all []*JobOutput
	for _, info := range m.outputs {
		all = append(all, info)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID < all[j].ID
	})
	for _, j := range all {
		if j.Complete {
			completed = append(completed, j)
		} else if j.Status == "pending" && j.Message == "" {
			pending = append(pending, j)
		} else {
			active = append(active, j)
		}
	}
	return active, pending, completed
}

// render writes the current frame into b and returns the number of lines written.
func (m *Manager) render(b *strings.Builder, availableLines int) int {
	lineCount := 0
	activeJobs, pendingJobs, completedJobs := m.sortJobs()

	totalNeeded := len(completedJobs)
	for _, j := range activeJobs {
		totalNeeded += 1 + len(j.StreamLines)
	}
	totalNeeded += len(pendingJobs)
	if totalNeeded > availableLines {
		maxCompleted := max(0, availableLines-(totalNeeded-len(completedJobs)))
		if len(completedJobs) > maxCompleted {
			completedJobs = completedJobs[len(completedJobs)-maxCompleted:]
		}
	}

	writeStreams := func(j *JobOutput) {
		indent := strings.Repeat(" ", 2+4)
		for _, line := range j.StreamLines {
			if lineCount >= availableLines {
				return
			}
			fmt.Fprintf(b, "%s%s\n", indent, streamStyle.Render(line))
			lineCount++
		}
	}

	for _, j := range activeJobs {
		if lineCount >= availableLines {
			break
		}
		elapsed := time.Since(j.StartTime).Round(time.Second)
		fmt.Fprintf(b, "  %s %s %s\n", m.GetStatusIndicator(j.Status), debugStyle.Render(elapsed.String()), styleMessage(j.Status, j.Message))
		lineCount++
		writeStreams(j)
	}
	for range pendingJobs {
		if lineCount >= availableLines {
			break
		}
		fmt.Fprintf(b, "  %s %s\n", m.GetStatusIndicator("pending"), pendingStyle.Render("Waiting..."))
		lineCount++
	}
	if len(completedJobs) > 10 && lineCount < availableLines {
		fmt.Fprintln(b, infoStyle.Render(fmt.Sprintf("  %d jobs completed with varying hidden status ...", len(completedJobs)-8)))
		completedJobs = completedJobs[len(completedJobs)-8:]
		lineCount++
	}
	for _, j := range completedJobs {
		if lineCount >= availableLines {
			break
		}
		totalTime := j.LastUpdated.Sub(j.StartTime).Round(time.Second)
		fmt.Fprintf(b, "  %s %s %s\n", m.GetStatusIndicator(j.Status), debugStyle.Render(totalTime.String()), styleMessage(j.Status, j.Message))
		lineCount++
		writeStreams(j)
	}
	return lineCount
}

func (m *Manager) updateDisplay() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	var b strings.Builder
	if m.numLines > 0 {
		fmt.Fprintf(&b, "\033[%dA\033[J", m.numLines)
	}
	m.numLines = m.render(&b, getTerminalHeight()-3)
	fmt.Print(b.String())
}

// StartDisplay begins redrawing the job table. Without it the manager only collects state
// and ShowSummary prints the outcome, which is how debug runs keep log lines readable.
func (m *Manager) StartDisplay() {
	m.live = true
	m.displayWg.Add(1)
	go func() {
		defer m.displayWg.Done()
		ticker := time.NewTicker(m.displayTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.updateDisplay()
			case <-m.doneCh:
				m.ClearAll()
				m.updateDisplay()
				return
			}
		}
	}()
}

func (m *Manager) StopDisplay() {
	close(m.doneCh)
	m.displayWg.Wait()
	m.ShowSummary()
}

func (m *Manager) displayErrors() {
	if len(m.errors) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("  " + errorStyle.Bold(true).Render("Errors:"))
	for i, report := range m.errors {
		fmt.Printf("    %s %s %s\n",
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", report.Time.Format("15:04:05"))),
			errorStyle.Render(report.Label))
		fmt.Printf("      %s\n", errorStyle.Render(fmt.Sprintf("Error: %v", report.Error)))
		for _, hint := range report.Hints {
			fmt.Printf("      %s %s\n", debugStyle.Render(StyleSymbols["arrow"]), warningStyle.Render(hint))
		}
	}
}

func (m *Manager) ShowSummary() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if !m.live {
		for _, j := range m.sortedOutputs() {
			fmt.Printf("  %s %s\n", m.GetStatusIndicator(j.Status), styleMessage(j.Status, j.Message))
		}
	}
	fmt.Println()
	var success, failures int
	for _, info := range m.outputs {
		if info.Status == "success" {
			success++
		} else if info.Status == "error" {
			failures++
		}
	}
	fmt.Println("  " + success2Style.Render(fmt.Sprintf("Completed %d of %d", success, len(m.outputs))))
	if failures > 0 {
		fmt.Println("  " + errorStyle.Render(fmt.Sprintf("Failed %d of %d", failures, len(m.outputs))))
	}
	m.displayErrors()
	fmt.Println()
}

func (m *Manager) sortedOutputs() []*JobOutput {
	all := make([]*JobOutput, 0, len(m.outputs))
	for _, info := range m.outputs {
		all = append(all, info)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}
