package slackapi

import (
	"errors"
	"fmt"

	"github.com/slack-go/slack"
)

// ErrNotAuthorized is returned when Slack rejects the access token. The
// caller is expected to drop the token and ask the user to re-authorize.
var ErrNotAuthorized = errors.New("slack: not authorized")

// authErrorCodes are the envelope error codes that mean the token is unusable.
var authErrorCodes = map[string]bool{
	"not_authed":   true,
	"invalid_auth": true,
	"invalid_code": true,
}

// APICallFailedError reports a failed Slack Web API call: either a non-200
// HTTP status or an envelope with ok=false and a non-auth error code.
type APICallFailedError struct {
	Method     string
	Code       string // envelope error code, empty for transport failures
	StatusCode int    // HTTP status, zero for envelope failures
	Err        error
}

func (e *APICallFailedError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("API call failed: %s: HTTP %d", e.Method, e.StatusCode)
	case e.Code != "":
		return fmt.Sprintf("API call failed: %s: %s", e.Method, e.Code)
	case e.Err != nil:
		return fmt.Sprintf("API call failed: %s: %v", e.Method, e.Err)
	default:
		return fmt.Sprintf("API call failed: %s", e.Method)
	}
}

func (e *APICallFailedError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether the failure was a non-200 HTTP response.
func (e *APICallFailedError) IsTransport() bool {
	return e.StatusCode != 0
}

// classify maps a slack-go error onto this package's error taxonomy.
func classify(method string, err error) error {
	if err == nil {
		return nil
	}

	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) {
		return &APICallFailedError{Method: method, StatusCode: statusErr.Code, Err: err}
	}

	var rateErr *slack.RateLimitedError
	if errors.As(err, &rateErr) {
		return &APICallFailedError{Method: method, StatusCode: 429, Err: err}
	}

	code := ""
	var envelopeErr slack.SlackErrorResponse
	if errors.As(err, &envelopeErr) {
		code = envelopeErr.Err
	} else if authErrorCodes[err.Error()] {
		code = err.Error()
	}

	if authErrorCodes[code] {
		return fmt.Errorf("%s: %s: %w", method, code, ErrNotAuthorized)
	}
	return &APICallFailedError{Method: method, Code: code, Err: err}
}

// ErrorCode extracts the envelope error code from err, if any.
func ErrorCode(err error) string {
	var apiErr *APICallFailedError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var envelopeErr slack.SlackErrorResponse
	if errors.As(err, &envelopeErr) {
		return envelopeErr.Err
	}
	return ""
}
