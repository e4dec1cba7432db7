package models

import "time"

const (
	EventDiagnosticCompleted = "diagnostic.completed"
	EventDiagnosticFailed    = "diagnostic.failed"
)

// DiagnosticEvent describes one report generation. It never carries patient attributes.
type DiagnosticEvent struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	RequestID   string     `json:"request_id,omitempty"`
	Mode        string     `json:"mode"` // invoke, stream
	Provider    string     `json:"provider"`
	Model       string     `json:"model"`
	HasDiabetes bool       `json:"has_diabetes"`
	Confidence  Confidence `json:"confidence"`
	Chunks      int        `json:"chunks,omitempty"`
	LatencyMs   int64      `json:"latency_ms"`
	Error       string     `json:"error,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}
