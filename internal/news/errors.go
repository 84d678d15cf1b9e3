package news

import (
	"fmt"
)

type UpstreamErrorCause string

const (
	ErrCauseNetworkFailure UpstreamErrorCause = "network issues"
	ErrCauseBadStatus      UpstreamErrorCause = "unexpected HTTP status"
	ErrCauseDecode         UpstreamErrorCause = "malformed response"
	ErrCauseAPI            UpstreamErrorCause = "api returned an error"
)

// UpstreamError describes why a call to the news API produced no articles.
// The service logs it and falls back; it never reaches handlers.
type UpstreamError struct {
	Endpoint   Endpoint
	Cause      UpstreamErrorCause
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("news api %s: %s", e.Endpoint, e.Cause)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (%d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
