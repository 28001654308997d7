package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rexster-go/rexster-cli/internal/config"
	"github.com/rexster-go/rexster-cli/pkg/rexster"
)

// HandleError renders err with suggestions for the terminal.
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var cfgErr *rexster.ConfigError
	var failed *rexster.RequestFailedError
	var transport *rexster.TransportError

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		msg.WriteString("No Rexster endpoint configured.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Pass --base-url and --graph\n")
		msg.WriteString("  - Set REXSTER_BASE_URL and REXSTER_GRAPH\n")
		msg.WriteString("  - Run: rexster profile save <name> --base-url <url> --graph <graph>\n")

	case errors.Is(err, config.ErrProfileNotFound):
		fmt.Fprintf(&msg, "Error: %s\n\n", err)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: rexster profile list\n")

	case errors.As(err, &cfgErr):
		fmt.Fprintf(&msg, "Invalid configuration: %s\n", cfgErr.Error())

	case errors.As(err, &failed):
		fmt.Fprintf(&msg, "Request failed (HTTP %d): %s\n\n", failed.StatusCode, failureText(failed))
		msg.WriteString(suggestionsForFailure(failed))

	case errors.As(err, &transport):
		fmt.Fprintf(&msg, "Could not complete %s %s: %v\n\n", transport.Method, transport.URL, transport.Err)
		msg.WriteString(suggestionsForTransport(transport))

	case errors.Is(err, rexster.ErrClientClosed):
		msg.WriteString("Error: client already closed\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func failureText(e *rexster.RequestFailedError) string {
	if e.Message == "" {
		return "empty response"
	}
	return e.Message
}

func suggestionsForFailure(e *rexster.RequestFailedError) string {
	var s strings.Builder
	s.WriteString("Suggestions:\n")
	lower := strings.ToLower(e.Message)

	switch {
	case e.Message == "":
		s.WriteString("  - The server returned no results\n")
		s.WriteString("  - Check --offset-start/--offset-end and --return-keys\n")
	case strings.Contains(lower, "graph") && strings.Contains(lower, "could not be found"):
		s.WriteString("  - The graph name is not known to the server\n")
		s.WriteString("  - Run: rexster graphs\n")
	case e.StatusCode == 404:
		s.WriteString("  - The element or extension does not exist\n")
		s.WriteString("  - Check the path and element id\n")
	case e.StatusCode == 400:
		s.WriteString("  - Check the request fields\n")
		s.WriteString("  - Use --debug to see the full request\n")
	case e.StatusCode >= 500:
		s.WriteString("  - The server failed while handling the request\n")
		s.WriteString("  - Check the Rexster server log\n")
	default:
		s.WriteString("  - Use --debug for more details\n")
	}
	return s.String()
}

func suggestionsForTransport(e *rexster.TransportError) string {
	var s strings.Builder
	s.WriteString("Suggestions:\n")
	text := strings.ToLower(e.Error())

	switch {
	case strings.Contains(text, "connection refused"):
		s.WriteString("  - Check that the Rexster server is running\n")
		s.WriteString("  - Verify --base-url (default port is 8182)\n")
	case strings.Contains(text, "no such host"):
		s.WriteString("  - Check the host name in --base-url\n")
	case strings.Contains(text, "certificate"):
		s.WriteString("  - Verify the server's TLS certificate\n")
	case strings.Contains(text, "deadline exceeded") || strings.Contains(text, "timeout"):
		s.WriteString("  - Increase --timeout\n")
	default:
		s.WriteString("  - Use --debug for more details\n")
	}
	return s.String()
}

type errorBody struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	StatusCode int    `json:"status,omitempty"`
	URL        string `json:"url,omitempty"`
}

// errorPayload is the JSON form of err written to stderr in JSON modes.
func errorPayload(err error) map[string]errorBody {
	body := errorBody{Type: "error", Message: err.Error()}

	var cfgErr *rexster.ConfigError
	var failed *rexster.RequestFailedError
	var transport *rexster.TransportError
	switch {
	case errors.As(err, &cfgErr), errors.Is(err, config.ErrNotConfigured), errors.Is(err, config.ErrProfileNotFound):
		body.Type = "config"
	case errors.As(err, &failed):
		body.Type = "application_failure"
		body.Message = failureText(failed)
		body.StatusCode = failed.StatusCode
		body.URL = failed.URL
	case errors.As(err, &transport):
		body.Type = "transport"
		body.StatusCode = transport.StatusCode
		body.URL = transport.URL
	}
	return map[string]errorBody{"error": body}
}
