package rexster

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ConfigError reports an empty or invalid argument. It is always returned
// before any network activity.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RequestFailedError is returned by the *Custom methods when the server
// answered but reported an error or returned nothing.
type RequestFailedError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *RequestFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s failed (status %d): empty response", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s failed (status %d): %s", e.Method, e.URL, e.StatusCode, e.Message)
}

// TransportError reports an HTTP exchange that could not be completed.
// StatusCode is the last status the Client saw, which may belong to an
// earlier request.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Payload    []byte
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "%s request to %s failed. Response code: %d. Error: %v", e.Method, e.URL, e.StatusCode, e.Err)
	if len(e.Header) > 0 {
		keys := make([]string, 0, len(e.Header))
		for k := range e.Header {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(". Headers:")
		for _, k := range keys {
			_, _ = fmt.Fprintf(&b, " %s=%s;", k, strings.Join(e.Header[k], ","))
		}
	}
	if len(e.Payload) > 0 {
		_, _ = fmt.Fprintf(&b, " Payload: %s", e.Payload)
	}
	return b.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsConfigError checks if the error is a configuration error.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// IsRequestFailed checks if the error is an application-level failure.
func IsRequestFailed(err error) bool {
	var e *RequestFailedError
	return errors.As(err, &e)
}

// IsTransportError checks if the error is a transport failure.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}
