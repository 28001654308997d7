// Package urlparse splits full Rexster resource URLs, as copied from a
// browser or a server log, into endpoint, graph and resource path.
package urlparse

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ParsedURL is a Rexster URL broken into the parts the client is built from.
type ParsedURL struct {
	BaseURL string // scheme, host and any prefix before /graphs
	Graph   string
	Path    string // resource path below the graph, without slashes at the ends
	Query   url.Values
}

// urlPattern matches paths of the form [/prefix]/graphs/{graph}[/{path}].
var urlPattern = regexp.MustCompile(`^(.*?)/graphs/([^/]+)(?:/(.*))?$`)

// IsURL reports whether s looks like an absolute http(s) URL rather than a
// resource path.
func IsURL(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Parse extracts endpoint information from a Rexster URL such as
// http://localhost:8182/graphs/tinkergraph/vertices/1/out?_label=knows.
func Parse(rawURL string) (*ParsedURL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" {
		return nil, fmt.Errorf("invalid URL: missing scheme (expected http://...)")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme %q: expected http or https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL: missing host")
	}

	matches := urlPattern.FindStringSubmatch(parsed.Path)
	if matches == nil {
		return nil, fmt.Errorf("invalid Rexster URL format: expected [/prefix]/graphs/{graph}[/{path}]")
	}

	graph, err := url.PathUnescape(matches[2])
	if err != nil {
		return nil, fmt.Errorf("invalid graph name: %w", err)
	}

	return &ParsedURL{
		BaseURL: fmt.Sprintf("%s://%s%s", parsed.Scheme, parsed.Host, strings.TrimRight(matches[1], "/")),
		Graph:   graph,
		Path:    strings.Trim(matches[3], "/"),
		Query:   parsed.Query(),
	}, nil
}

// Data returns the query parameters other than the rexster.* paging
// parameters. Single values become strings, repeated keys string slices.
func (p *ParsedURL) Data() map[string]any {
	data := map[string]any{}
	for k, v := range p.Query {
		if strings.HasPrefix(k, "rexster.") || len(v) == 0 {
			continue
		}
		if len(v) == 1 {
			data[k] = v[0]
		} else {
			data[k] = append([]string(nil), v...)
		}
	}
	if len(data) == 0 {
		return nil
	}
	return data
}
