// Package rexster is a client for the Rexster graph server REST API.
//
// A Client is bound to one graph on one server. It builds request URLs of the
// form {base}/graphs/{graph}/{path}, encodes payloads per HTTP method, attaches
// the rexster.offset.* and rexster.returnKeys paging parameters to GET
// requests and classifies every response as a success, an application
// failure or a transport failure.
//
// A Client is not safe for concurrent use. Callers issuing requests in
// parallel should use one Client per goroutine.
package rexster

import (
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// Content types understood by Rexster.
const (
	ContentTypeJSON           = "application/json"
	ContentTypeRexsterJSON    = "application/vnd.rexster-v1+json"
	ContentTypeRexsterTyped   = "application/vnd.rexster-typed-v1+json"
	ContentTypeFormURLEncoded = "application/x-www-form-urlencoded"
)

const (
	// DefaultTimeout bounds a whole exchange. Graph traversals can run for a
	// long time, so it is deliberately generous.
	DefaultTimeout = time.Hour

	graphsSuffix = "/graphs"
)

// ErrClientClosed is returned by requests issued after Close.
var ErrClientClosed = errors.New("rexster: client is closed")

// Client is the Rexster API client.
//
// The underlying *http.Client is created on the first request and reused by
// every later request on the same Client. Close releases it.
type Client struct {
	baseURL   string
	graphName string

	offsetStart    int
	offsetStartSet bool
	offsetEnd      int
	returnKeys     []string

	userAgent string
	timeout   time.Duration
	transport http.RoundTripper
	factory   ResultFactory

	http       *http.Client
	httpShared bool // supplied by the caller, never released by Close
	closed     bool

	lastRequest RequestRecord
	response    ResponseState
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithHTTPClient makes the Client use hc instead of creating its own handle.
// Close does not release a caller-supplied client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
		c.httpShared = hc != nil
	}
}

// WithTransport sets the RoundTripper used by the lazily created handle.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithTimeout overrides DefaultTimeout. Zero disables the timeout entirely.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithResultFactory replaces GenericResult as the converter used by the
// *Custom convenience methods.
func WithResultFactory(f ResultFactory) Option {
	return func(c *Client) {
		if f != nil {
			c.factory = f
		}
	}
}

// New creates a Client for graphName served under baseURL.
func New(baseURL, graphName string, opts ...Option) (*Client, error) {
	c := &Client{
		timeout: DefaultTimeout,
		factory: GenericResult,
	}
	if err := c.SetGraphBaseURL(baseURL); err != nil {
		return nil, err
	}
	if err := c.SetGraphName(graphName); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetGraphName sets the graph every request is addressed to.
// A blank name is rejected and the previous name is kept.
func (c *Client) SetGraphName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ConfigError{Field: "graph name", Reason: "must not be empty"}
	}
	c.graphName = name
	return nil
}

// GraphName returns the configured graph name.
func (c *Client) GraphName() string {
	return c.graphName
}

// SetGraphBaseURL sets the server URL. Trailing slashes are stripped and
// "/graphs" is appended, so "http://host:8182/" becomes
// "http://host:8182/graphs". A blank URL is rejected and the previous value
// is kept.
func (c *Client) SetGraphBaseURL(baseURL string) error {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return &ConfigError{Field: "base url", Reason: "must not be empty"}
	}
	c.baseURL = strings.TrimRight(baseURL, "/") + graphsSuffix
	return nil
}

// GraphBaseURL returns the server URL including the "/graphs" suffix.
func (c *Client) GraphBaseURL() string {
	return c.baseURL
}

// SetReturnKeys limits the element properties returned by GET requests.
// Element meta-data is always returned. No keys means all properties.
func (c *Client) SetReturnKeys(keys ...string) *Client {
	c.returnKeys = append([]string(nil), keys...)
	return c
}

// ReturnKeys returns the configured rexster.returnKeys list.
func (c *Client) ReturnKeys() []string {
	return append([]string(nil), c.returnKeys...)
}

// SetOffsetStart sets rexster.offset.start for GET requests. Zero is a valid
// start and is sent.
func (c *Client) SetOffsetStart(n int) *Client {
	c.offsetStart = n
	c.offsetStartSet = true
	return c
}

// ClearOffsetStart stops sending rexster.offset.start.
func (c *Client) ClearOffsetStart() *Client {
	c.offsetStart = 0
	c.offsetStartSet = false
	return c
}

// OffsetStart returns the configured start offset and whether one is set.
func (c *Client) OffsetStart() (int, bool) {
	return c.offsetStart, c.offsetStartSet
}

// SetOffsetEnd sets rexster.offset.end for GET requests. Values <= 0 are
// not sent.
func (c *Client) SetOffsetEnd(n int) *Client {
	c.offsetEnd = n
	return c
}

// OffsetEnd returns the configured end offset.
func (c *Client) OffsetEnd() int {
	return c.offsetEnd
}

// LastRequest returns a copy of the most recently executed request.
func (c *Client) LastRequest() RequestRecord {
	return c.lastRequest.clone()
}

// ResponseCode returns the HTTP status of the most recent exchange, or 0
// when it did not produce one.
func (c *Client) ResponseCode() int {
	return c.response.StatusCode
}

// ResponseMessage returns the error text reported by the server on the most
// recent call. It is empty unless that call was an application failure.
func (c *Client) ResponseMessage() string {
	return c.response.Message
}

// LastErrorMessage is an alias of ResponseMessage.
func (c *Client) LastErrorMessage() string {
	return c.ResponseMessage()
}

// Close releases the HTTP handle. It is safe to call on a Client that never
// issued a request and safe to call more than once.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.http != nil && !c.httpShared {
		c.http.CloseIdleConnections()
	}
	c.http = nil
	return nil
}

// handle returns the reusable HTTP client, creating it on first use.
func (c *Client) handle() (*http.Client, error) {
	if c.closed {
		return nil, ErrClientClosed
	}
	if c.http == nil {
		c.http = &http.Client{
			Timeout:   c.timeout,
			Transport: c.newTransport(),
		}
	}
	return c.http, nil
}

func (c *Client) newTransport() http.RoundTripper {
	if c.transport != nil {
		return c.transport
	}
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	// No connect timeout; the overall client timeout is the only bound.
	transport.DialContext = (&net.Dialer{KeepAlive: 30 * time.Second}).DialContext
	return transport
}
