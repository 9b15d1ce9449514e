// Package progress provides a terminal progress bar for dashboard exports.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Manager handles the progress display
type Manager struct {
	enabled   bool
	total     int
	completed int
	passed    int
	failed    int
	mu        sync.Mutex
	bar       *progressbar.ProgressBar
	out       io.Writer
	startTime time.Time
}

// NewManager creates a progress manager that renders to w
func NewManager(total int, enabled bool, w io.Writer) *Manager {
	m := &Manager{
		enabled:   enabled,
		total:     total,
		out:       w,
		startTime: time.Now(),
	}

	if enabled {
		m.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Exporting"),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("steps"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerHead:    "█",
				SaucerPadding: "░",
				BarStart:      "|",
				BarEnd:        "|",
			}),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionSetElapsedTime(true),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprintln(w)
			}),
		)
	}

	return m
}

// Start marks a step as running
func (m *Manager) Start(name string) {
	if !m.enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.bar.Describe(fmt.Sprintf("%-28s", truncate(name, 28)))
}

// Complete marks a step as done
func (m *Manager) Complete(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.completed++
	if err == nil {
		m.passed++
	} else {
		m.failed++
	}

	if m.enabled {
		_ = m.bar.Add(1)
	}
}

// Counts returns the number of completed, passed and failed steps.
func (m *Manager) Counts() (completed, passed, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completed, m.passed, m.failed
}

// Finish closes the bar and prints a one-line summary
func (m *Manager) Finish() {
	if !m.enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_ = m.bar.Finish()
	_, _ = fmt.Fprintf(m.out, "Export finished in %s: %d ok, %d failed\n",
		formatDuration(time.Since(m.startTime)), m.passed, m.failed)
}

// IsEnabled returns whether progress display is enabled
func (m *Manager) IsEnabled() bool {
	return m.enabled
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}

// truncate shortens s to maxLen runes, ending in an ellipsis
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
