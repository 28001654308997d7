package cmd

import (
	"fmt"
	"time"

	"github.com/rexster-go/rexster-cli/internal/config"
	"github.com/rexster-go/rexster-cli/internal/dryrun"
	"github.com/rexster-go/rexster-cli/internal/validation"
	"github.com/rexster-go/rexster-cli/pkg/rexster"
)

// serverScope stands in for the graph name on clients that only call
// server level endpoints; those never put the graph name on the wire.
const serverScope = "_server"

type clientFactory struct {
	timeout   time.Duration
	userAgent string
	dryRun    bool
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		timeout:   flags.Timeout,
		userAgent: fmt.Sprintf("rexster-cli/%s", version),
		dryRun:    flags.DryRun,
	}
}

func (f *clientFactory) overrides(allowMissingGraph bool) config.Overrides {
	return config.Overrides{
		BaseURL:           flags.BaseURL,
		Graph:             flags.Graph,
		Profile:           flags.Profile,
		AllowMissingGraph: allowMissingGraph,
	}
}

// endpoint resolves and validates the endpoint for graph commands.
func (f *clientFactory) endpoint() (config.Endpoint, error) {
	ep, err := config.ResolveEndpoint(f.overrides(false))
	if err != nil {
		return config.Endpoint{}, err
	}
	if err := validation.ValidateBaseURL(ep.BaseURL); err != nil {
		return config.Endpoint{}, fmt.Errorf("invalid base URL %q: %w", ep.BaseURL, err)
	}
	if err := validation.ValidateGraphName(ep.Graph); err != nil {
		return config.Endpoint{}, err
	}
	return ep, nil
}

// graph returns a client bound to the configured graph.
func (f *clientFactory) graph() (*rexster.Client, config.Endpoint, error) {
	ep, err := f.endpoint()
	if err != nil {
		return nil, config.Endpoint{}, err
	}
	client, err := f.newClient(ep)
	if err != nil {
		return nil, config.Endpoint{}, err
	}
	return client, ep, nil
}

// server returns a client for server level calls. The graph may be unset.
// Server calls are read only and ignore --dry-run.
func (f *clientFactory) server() (*rexster.Client, config.Endpoint, error) {
	ep, err := config.ResolveEndpoint(f.overrides(true))
	if err != nil {
		return nil, config.Endpoint{}, err
	}
	if err := validation.ValidateBaseURL(ep.BaseURL); err != nil {
		return nil, config.Endpoint{}, fmt.Errorf("invalid base URL %q: %w", ep.BaseURL, err)
	}
	scoped := ep
	if scoped.Graph == "" {
		scoped.Graph = serverScope
	}
	live := *f
	live.dryRun = false
	client, err := live.newClient(scoped)
	if err != nil {
		return nil, config.Endpoint{}, err
	}
	return client, ep, nil
}

// newClient builds a client for ep with the paging flags applied. Flags
// override the return keys stored in a profile. In dry-run mode the client
// records requests without sending them.
func (f *clientFactory) newClient(ep config.Endpoint) (*rexster.Client, error) {
	opts := []rexster.Option{
		rexster.WithTimeout(f.timeout),
		rexster.WithUserAgent(f.userAgent),
	}
	if f.dryRun {
		opts = append(opts, rexster.WithTransport(dryrun.Transport()))
	}
	client, err := rexster.New(ep.BaseURL, ep.Graph, opts...)
	if err != nil {
		return nil, err
	}

	keys := ep.ReturnKeys
	if len(flags.ReturnKeys) > 0 {
		keys = flags.ReturnKeys
	}
	if len(keys) > 0 {
		client.SetReturnKeys(keys...)
	}
	if flags.OffsetStartSet {
		client.SetOffsetStart(flags.OffsetStart)
	}
	if flags.OffsetEnd > 0 {
		client.SetOffsetEnd(flags.OffsetEnd)
	}
	return client, nil
}

// requestOptions returns the per-request header overrides. A content type
// stored in the profile applies when --content-type is not given.
func requestOptions(ep config.Endpoint) []rexster.RequestOption {
	var opts []rexster.RequestOption
	contentType := flags.ContentType
	if contentType == "" {
		contentType = ep.ContentType
	}
	if contentType != "" {
		opts = append(opts, rexster.WithContentType(contentType))
	}
	if flags.Accept != "" {
		opts = append(opts, rexster.WithAccept(flags.Accept))
	}
	return opts
}
