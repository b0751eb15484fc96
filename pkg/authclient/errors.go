package authclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for the authclient package.
var (
	// ErrNoBaseURL indicates the client was built without a service URL.
	ErrNoBaseURL = errors.New("authclient: base URL required")

	// ErrBadResponse indicates the service answered with a body the
	// client could not interpret.
	ErrBadResponse = errors.New("authclient: malformed response")
)

// APIError represents a non-success response from the auth service.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Detail is the message extracted from the error payload, or a
	// generic fallback when none was present.
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("authclient: API error %d: %s", e.StatusCode, e.Detail)
}

// IsNoFace reports whether the service flagged a frame with no
// detectable face. Surfaced to the user with distinct text.
func (e *APIError) IsNoFace() bool {
	return e.Detail == detailNoFace
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

const detailNoFace = "NoFaceDetected"

// errorPayload mirrors the service's structured error body. Detail is a
// plain string, an array of {msg} objects, or an arbitrary object.
type errorPayload struct {
	Detail json.RawMessage `json:"detail"`
}

// extractDetail pulls a single descriptive message out of an error body.
// Falls back to the provided generic message.
func extractDetail(body []byte, fallback string) string {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return fallback
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil && s != "" {
		return s
	}

	var msgs []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &msgs); err == nil && len(msgs) > 0 && msgs[0].Msg != "" {
		return msgs[0].Msg
	}

	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload.Detail, &obj); err == nil && obj.Error != "" {
		return obj.Error
	}

	return fallback
}
