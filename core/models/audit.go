package models

import "time"

// StageInvocation is one recorded call into a pipeline stage operation
type StageInvocation struct {
	ID         string            `json:"id"`
	Stage      string            `json:"stage"`
	Operation  string            `json:"operation"`
	JobName    string            `json:"job_name,omitempty"`
	Debug      bool              `json:"debug"`
	Outcome    string            `json:"outcome"`
	Error      string            `json:"error,omitempty"`
	DurationMS int64             `json:"duration_ms"`
	Meta       map[string]string `json:"meta,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Invocation outcomes
const (
	InvocationOK     = "ok"
	InvocationFailed = "failed"
)
