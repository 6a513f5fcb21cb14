package models

// RequestInfo carries the HTTP request context attached to log entries
// produced by the API middleware.
type RequestInfo struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	RemoteAddr string `json:"remote_addr"`
	UserAgent  string `json:"user_agent"`
}

// ErrorInfo is the structured error payload attached to error-level logs.
type ErrorInfo struct {
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"`        // e.g. "store_error", "lookup_error"
	StatusCode int    `json:"status_code,omitempty"` // related HTTP status, if any
}
