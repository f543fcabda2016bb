package model

import (
	"fmt"
	"net/http"
)

// APIError is an error response from the platform. The platform reports
// failures as an optional "msg" string in the body; when the body carries
// no message a generic one is substituted at the call site.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"msg"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("platform error: HTTP %d: %s", e.StatusCode, e.Message)
}

// UserMessage returns the platform-provided message, or a generic
// fallback when the error body had none.
func (e *APIError) UserMessage() string {
	if e.Message == "" {
		return "Request failed"
	}
	return e.Message
}

// IsAuthError reports whether the platform rejected the call for
// authentication or authorization reasons.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
