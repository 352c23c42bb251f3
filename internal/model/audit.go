package model

import (
	"time"
)

// AuditLog is one webhook invocation as recorded by the audit trail.
type AuditLog struct {
	ID        string `json:"id"` // unique request ID (UUID)
	Method    string `json:"method"`
	Path      string `json:"path"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`

	// Request/response bodies are stored after redaction.
	RequestBody  string `json:"request_body"`
	StatusCode   int    `json:"status_code"`
	ResponseBody string `json:"response_body"`
	LatencyMs    int64  `json:"latency_ms"`

	// Business context filled in by handlers (resolved token, upstream
	// errors, computed fills).
	Context map[string]interface{} `json:"context"`

	CreatedAt time.Time `json:"created_at"`
}
