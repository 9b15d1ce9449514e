// Package debug records dashboard callback invocations for troubleshooting.
package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger collects callback invocations for one dashboard session
type Logger struct {
	mu         sync.Mutex
	enabled    bool
	session    *Session
	outputPath string
}

// Session represents the entire debug session
type Session struct {
	ID         string                 `json:"id"`
	StartTime  time.Time              `json:"start_time"`
	EndTime    *time.Time             `json:"end_time,omitempty"`
	DataSource string                 `json:"data_source,omitempty"`
	Callbacks  []CallbackLog          `json:"callbacks"`
	Outputs    map[string]int         `json:"outputs"`
	SystemInfo map[string]interface{} `json:"system_info"`
}

// CallbackLog captures one callback invocation
type CallbackLog struct {
	Timestamp time.Time     `json:"timestamp"`
	Output    string        `json:"output"`
	Site      string        `json:"site"`
	Low       float64       `json:"low"`
	High      float64       `json:"high"`
	Duration  time.Duration `json:"duration"`
	Points    int           `json:"points"`
	Error     string        `json:"error,omitempty"`
}

// NewLogger creates a new debug logger writing under outputDir/debug
func NewLogger(enabled bool, outputDir string) *Logger {
	logger := &Logger{
		enabled: enabled,
		session: &Session{
			ID:        uuid.NewString(),
			StartTime: time.Now(),
			Callbacks: []CallbackLog{},
			Outputs:   make(map[string]int),
			SystemInfo: map[string]interface{}{
				"go_version": runtime.Version(),
				"os":         runtime.GOOS,
				"arch":       runtime.GOARCH,
			},
		},
	}

	if enabled {
		logger.outputPath = filepath.Join(outputDir, "debug")
	}

	return logger
}

// IsEnabled returns whether debug logging is enabled
func (l *Logger) IsEnabled() bool {
	return l != nil && l.enabled
}

// SessionID returns the identifier of this session.
func (l *Logger) SessionID() string {
	return l.session.ID
}

// SetDataSource records the dataset path the session serves.
func (l *Logger) SetDataSource(path string) {
	if !l.IsEnabled() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.session.DataSource = path
}

// LogCallback records one callback invocation
func (l *Logger) LogCallback(entry CallbackLog) {
	if !l.IsEnabled() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	l.session.Callbacks = append(l.session.Callbacks, entry)
	l.session.Outputs[entry.Output]++
}

// Snapshot returns a copy of the recorded invocations.
func (l *Logger) Snapshot() []CallbackLog {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]CallbackLog, len(l.session.Callbacks))
	copy(out, l.session.Callbacks)
	return out
}

// Finalize completes the debug session and writes session.json
func (l *Logger) Finalize() error {
	if !l.IsEnabled() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.session.EndTime = &now

	if err := os.MkdirAll(l.outputPath, 0750); err != nil {
		return fmt.Errorf("failed to create debug output directory: %w", err)
	}

	data, err := json.MarshalIndent(l.session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}
	if err := os.WriteFile(l.GetSessionPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// GetOutputPath returns the path where debug data will be written (debug directory)
func (l *Logger) GetOutputPath() string {
	return l.outputPath
}

// GetSessionPath returns the path to the session.json file
func (l *Logger) GetSessionPath() string {
	if !l.IsEnabled() {
		return ""
	}
	return filepath.Join(l.outputPath, "session.json")
}
