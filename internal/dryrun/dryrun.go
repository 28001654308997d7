// Package dryrun previews requests without sending them. A client built
// with Transport records each request and fails it with ErrDryRun before
// anything reaches the network.
package dryrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// ErrDryRun is returned by Transport for every request.
var ErrDryRun = errors.New("dry run: request not sent")

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Transport returns a RoundTripper that rejects every request with ErrDryRun.
func Transport() http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.Body != nil {
			_ = r.Body.Close()
		}
		return nil, ErrDryRun
	})
}

// Preview describes a request that would have been sent.
type Preview struct {
	Method string            `json:"method"`
	URL    string            `json:"url"`
	Header map[string]string `json:"headers,omitempty"`
	Body   string            `json:"body,omitempty"`
}

// NewPreview builds a Preview. Multi-valued headers are joined with ", ".
func NewPreview(method, url string, header http.Header, body []byte) *Preview {
	p := &Preview{Method: method, URL: url, Body: string(body)}
	if len(header) > 0 {
		p.Header = make(map[string]string, len(header))
		for k, v := range header {
			p.Header[k] = strings.Join(v, ", ")
		}
	}
	return p
}

// Write outputs the preview to the writer
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "[DRY-RUN] Would send %s %s\n", p.Method, p.URL)

	keys := make([]string, 0, len(p.Header))
	for k := range p.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", k, p.Header[k])
	}
	if p.Body != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", p.Body)
	}
	_, _ = fmt.Fprintln(w, "No request sent (dry-run mode)")
}
