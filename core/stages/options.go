package stages

import (
	"log/slog"
	"time"
)

// Logger is the minimal structured logger stage handlers report through
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options carries the settings shared by every stage handler. The clock is
// injected so job names and record keys are deterministic in tests; nothing
// is computed once per process.
type Options struct {
	// Project is the storage prefix the pipeline keeps its data under,
	// e.g. "wine-quality-project".
	Project string
	// JobPrefix is the base of every generated job and model name,
	// e.g. "wine-quality".
	JobPrefix string
	// Clock supplies the per-invocation timestamp. Defaults to time.Now.
	Clock func() time.Time
	// Log defaults to slog.Default.
	Log Logger
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}
	return o
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func durationSeconds(start, end *time.Time) float64 {
	if start == nil || end == nil {
		return 0
	}
	return end.Sub(*start).Seconds()
}
