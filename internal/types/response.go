package types

import "time"

// Response is the envelope of every JSON response.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
	RetryAfter *int        `json:"retryAfter,omitempty"`
}

// ErrorBody describes a failure. Stack and Details are only set outside
// production.
type ErrorBody struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Path      string                 `json:"path"`
	Method    string                 `json:"method"`
	RequestID string                 `json:"requestId,omitempty"`
	Stack     string                 `json:"stack,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
