package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
//
// The scraper assigns codes at the point of failure; the retry layer and the
// API layer switch on codes, never on message text.
const (
	// ErrCodeLaunch: the browser process could not be started.
	ErrCodeLaunch = "BROWSER_LAUNCH_FAILED"

	// ErrCodeConnection: browser/process/protocol-level fault (target closed,
	// connection closed, protocol error). Retried after a session teardown.
	ErrCodeConnection = "BROWSER_CONNECTION_LOST"

	// ErrCodeSessionReset: the shared session was torn down by a concurrent
	// caller while this scrape was in flight. Retried without a second
	// teardown.
	ErrCodeSessionReset = "SESSION_RESET"

	ErrCodeTimeout  = "SCRAPE_TIMEOUT"
	ErrCodeHTTP     = "UPSTREAM_HTTP_ERROR"
	ErrCodeParse    = "UPSTREAM_PARSE_ERROR"
	ErrCodeUpstream = "UPSTREAM_API_ERROR"

	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrProfileNotFound reports that the upstream confirmed no such user. It is
// a terminal, non-retryable condition, distinct from every ScrapeError:
// callers map it to a "check the username" response, not a fault.
var ErrProfileNotFound = errors.New("leetcode profile not found")

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// ErrCode extracts the error code from err, or ErrCodeInternal when err does
// not carry one.
func ErrCode(err error) string {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// AsScrapeError returns err as a *ScrapeError, wrapping foreign errors with
// ErrCodeInternal so every failure reaching the API layer has a code.
func AsScrapeError(err error) *ScrapeError {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se
	}
	return NewScrapeError(ErrCodeInternal, err.Error(), err)
}
