package rexster

import (
	"context"
	"net/http"
)

// GetCustom performs a GET against {graph}/{path} and converts the payload
// with the Client's ResultFactory.
func (c *Client) GetCustom(ctx context.Context, path string, data Data) (*Result, error) {
	return c.custom(ctx, http.MethodGet, path, data)
}

// PostCustom performs a POST against {graph}/{path}.
func (c *Client) PostCustom(ctx context.Context, path string, data Data) (*Result, error) {
	return c.custom(ctx, http.MethodPost, path, data)
}

// PutCustom performs a PUT against {graph}/{path}.
func (c *Client) PutCustom(ctx context.Context, path string, data Data) (*Result, error) {
	return c.custom(ctx, http.MethodPut, path, data)
}

// DeleteCustom performs a DELETE against {graph}/{path}.
func (c *Client) DeleteCustom(ctx context.Context, path string, data Data) (*Result, error) {
	return c.custom(ctx, http.MethodDelete, path, data)
}

func (c *Client) custom(ctx context.Context, method, path string, data Data) (*Result, error) {
	if path == "" {
		return nil, &ConfigError{Field: "url", Reason: "path must not be empty"}
	}
	resp, err := c.MakeRequest(ctx, method, "/"+path, data)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &RequestFailedError{
			Method:     method,
			URL:        c.lastRequest.URL,
			StatusCode: resp.StatusCode,
			Message:    c.LastErrorMessage(),
		}
	}
	return c.factory(c, resp.Payload)
}

// ServerInfo fetches the server name, version and graph list from the
// graphs endpoint. Paging parameters are not applied.
func (c *Client) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	resp, err := c.execute(ctx, http.MethodGet, c.baseURL, nil, requestOptions{accept: ContentTypeJSON}, false)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &RequestFailedError{
			Method:     http.MethodGet,
			URL:        c.baseURL,
			StatusCode: resp.StatusCode,
			Message:    resp.Message,
		}
	}
	var info ServerInfo
	if err := (&Result{payload: resp.Payload}).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Graphs returns the names of the graphs the server hosts.
func (c *Client) Graphs(ctx context.Context) ([]string, error) {
	info, err := c.ServerInfo(ctx)
	if err != nil {
		return nil, err
	}
	return info.Graphs, nil
}
