package rexster

import "fmt"

// ResultFactory turns a decoded success payload into a Result. The *Custom
// methods call it with the Client that issued the request.
type ResultFactory func(c *Client, payload any) (*Result, error)

// Result wraps a decoded Rexster response.
type Result struct {
	client  *Client
	payload any
}

// GenericResult is the default ResultFactory. It wraps the payload as is.
func GenericResult(c *Client, payload any) (*Result, error) {
	if payload == nil {
		return nil, fmt.Errorf("rexster: cannot build a result from an empty payload")
	}
	return &Result{client: c, payload: payload}, nil
}

// Client returns the Client that produced the result.
func (r *Result) Client() *Client {
	return r.client
}

// Payload returns the decoded JSON value unchanged.
func (r *Result) Payload() any {
	return r.payload
}

// Map returns the payload as a JSON object, if it is one.
func (r *Result) Map() (map[string]any, bool) {
	m, ok := r.payload.(map[string]any)
	return m, ok
}

// Results returns the "results" member of an object payload. A single
// element result is returned as a one-element slice.
func (r *Result) Results() []any {
	m, ok := r.Map()
	if !ok {
		if list, ok := r.payload.([]any); ok {
			return list
		}
		return nil
	}
	switch v := m["results"].(type) {
	case []any:
		return v
	case nil:
		return nil
	default:
		return []any{v}
	}
}

// Decode re-marshals the payload into v.
func (r *Result) Decode(v any) error {
	data, err := jsonAPI.Marshal(r.payload)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := jsonAPI.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}

// ServerInfo is the graph listing served at {base}/graphs.
type ServerInfo struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Graphs    []string `json:"graphs"`
	UpTime    string   `json:"upTime,omitempty"`
	QueryTime float64  `json:"queryTime,omitempty"`
}
