package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func FormatSpeed(bytes int64, elapsed float64) string {
	if elapsed <= 0 || bytes <= 0 {
		return "0 B/s"
	}
	bps := float64(bytes) / elapsed
	return FormatBytes(uint64(bps)) + "/s"
}

// FormatETA estimates the remaining time from the current rate; unknown totals give "--".
func FormatETA(done, total, transferred int64, elapsed float64) string {
	if total <= 0 || transferred <= 0 || elapsed <= 0 || done >= total {
		return "--"
	}
	rate := float64(transferred) / elapsed
	remaining := time.Duration(float64(total-done) / rate * float64(time.Second))
	return remaining.Round(time.Second).String()
}

func ProgressBar(current, total int64, width int) string {
	if width <= 0 {
		width = 30
	}
	if total <= 0 {
		total = 1
	}
	current = max(0, min(current, total))
	percent := float64(current) / float64(total)
	filled := max(0, min(int(percent*float64(width)), width))
	bar := StyleSymbols["bullet"]
	bar += strings.Repeat(StyleSymbols["hline"], filled)
	bar += strings.Repeat(" ", width-filled)
	bar += StyleSymbols["bullet"]
	return fmt.Sprintf("%s %.1f%%", bar, percent*100)
}

func getTerminalHeight() int {
	_, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || height <= 0 {
		return 24
	}
	return height
}
