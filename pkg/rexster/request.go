package rexster

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rexster-go/rexster-cli/internal/debug"
)

// Outcome classifies a completed exchange.
type Outcome int

const (
	// Success means the server returned a non-empty, non-error payload.
	Success Outcome = iota
	// ApplicationFailure means the server answered but reported an error
	// (a "message" or "error" field) or returned an empty result.
	ApplicationFailure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case ApplicationFailure:
		return "application_failure"
	default:
		return "unknown"
	}
}

// Response is the result of MakeRequest. Transport failures and invalid
// arguments are reported through the error return instead.
type Response struct {
	Outcome    Outcome
	StatusCode int
	// Message holds the concatenated "message" and "error" fields of an
	// error body. It is empty for successes and for empty results.
	Message string
	Payload any
}

// OK reports whether the exchange succeeded at the application level.
func (r *Response) OK() bool {
	return r != nil && r.Outcome == Success
}

// RequestRecord describes the last request the Client executed.
type RequestRecord struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

func (r RequestRecord) clone() RequestRecord {
	out := RequestRecord{Method: r.Method, URL: r.URL}
	if r.Header != nil {
		out.Header = r.Header.Clone()
	}
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return out
}

// ResponseState reflects the most recent call only.
type ResponseState struct {
	StatusCode int
	Message    string
}

type requestOptions struct {
	contentType string
	accept      string
}

// RequestOption adjusts a single MakeRequest call.
type RequestOption func(*requestOptions)

// WithContentType sets the Content-Type of POST and PUT bodies. GET always
// uses application/x-www-form-urlencoded and DELETE sends none.
func WithContentType(ct string) RequestOption {
	return func(o *requestOptions) { o.contentType = ct }
}

// WithAccept sets the Accept header.
func WithAccept(accept string) RequestOption {
	return func(o *requestOptions) { o.accept = accept }
}

// graphURL returns {base}/graphs/{graph} with path appended when non-empty.
func (c *Client) graphURL(path string) string {
	u := c.baseURL + "/" + c.graphName
	if path != "" {
		if trimmed := strings.Trim(path, "/"); trimmed != "" {
			u += "/" + trimmed
		}
	}
	return u
}

// MakeRequest issues method against {base}/graphs/{graph}/{path}.
//
// For POST and PUT, data is sent as a JSON body with nil values removed. For
// GET and DELETE it is encoded into the query string, and GET requests also
// carry the configured rexster.offset.start, rexster.offset.end and
// rexster.returnKeys parameters, in that order, after the data parameters.
//
// A nil error means the exchange completed; check Response.Outcome to tell a
// success from an application failure. Errors are *ConfigError for an empty
// method, *TransportError when the exchange itself failed, and
// ErrClientClosed after Close.
func (c *Client) MakeRequest(ctx context.Context, method, path string, data Data, opts ...RequestOption) (*Response, error) {
	if strings.TrimSpace(method) == "" {
		return nil, &ConfigError{Field: "request method", Reason: "must not be empty"}
	}
	method = strings.ToUpper(strings.TrimSpace(method))

	o := requestOptions{contentType: ContentTypeJSON, accept: ContentTypeJSON}
	for _, opt := range opts {
		opt(&o)
	}

	return c.execute(ctx, method, c.graphURL(path), data, o, true)
}

func (c *Client) execute(ctx context.Context, method, reqURL string, data Data, o requestOptions, paging bool) (*Response, error) {
	header := http.Header{}
	header.Set("Accept", o.accept)
	if c.userAgent != "" {
		header.Set("User-Agent", c.userAgent)
	}

	var body []byte
	contentType := o.contentType

	switch method {
	case http.MethodPost, http.MethodPut:
		if len(data) > 0 {
			var err error
			body, err = encodeBody(data)
			if err != nil {
				return nil, err
			}
			header.Set("Content-Length", strconv.Itoa(len(body)))
		}
	case http.MethodGet:
		contentType = ContentTypeFormURLEncoded
		if len(data) > 0 {
			reqURL += "?" + encodeQuery(data)
		}
		if filters := c.pagingQuery(); paging && filters != "" {
			if strings.Contains(reqURL, "?") {
				reqURL += "&" + filters
			} else {
				reqURL += "?" + filters
			}
		}
	case http.MethodDelete:
		contentType = ""
		if len(data) > 0 {
			reqURL += "?" + encodeQuery(data)
		}
	}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}

	c.lastRequest = RequestRecord{Method: method, URL: reqURL, Header: header, Body: body}

	previousStatus := c.response.StatusCode
	c.response = ResponseState{}

	transportErr := func(err error) error {
		return &TransportError{
			Method:     method,
			URL:        reqURL,
			StatusCode: previousStatus,
			Header:     header.Clone(),
			Payload:    body,
			Err:        err,
		}
	}

	hc, err := c.handle()
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, transportErr(fmt.Errorf("failed to create request: %w", err))
	}
	for k, v := range header {
		if k == "Content-Length" {
			continue // derived from the body by net/http
		}
		req.Header[k] = v
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "method", method, "url", reqURL, "error", err)
		}
		return nil, transportErr(err)
	}
	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, transportErr(fmt.Errorf("failed to read response: %w", err))
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "method", method, "url", reqURL, "status", resp.StatusCode, "bytes", len(respBody), "duration", time.Since(start))
	}

	c.response.StatusCode = resp.StatusCode
	result := c.classify(decodeBody(respBody))
	return result, nil
}

// classify applies the response rules to a decoded body and updates the
// stored response state.
func (c *Client) classify(decoded any) *Response {
	resp := &Response{StatusCode: c.response.StatusCode}

	if m, ok := decoded.(map[string]any); ok {
		msg, hasMsg := m["message"]
		errVal, hasErr := m["error"]
		if (hasMsg && msg != nil) || (hasErr && errVal != nil) {
			var b strings.Builder
			if !isEmpty(msg) {
				b.WriteString(stringify(msg))
			}
			if !isEmpty(errVal) {
				b.WriteString(stringify(errVal))
			}
			c.response.Message = b.String()
			resp.Outcome = ApplicationFailure
			resp.Message = c.response.Message
			return resp
		}
	}

	if isEmpty(decoded) {
		resp.Outcome = ApplicationFailure
		return resp
	}

	resp.Outcome = Success
	resp.Payload = decoded
	return resp
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if b, err := jsonAPI.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}
