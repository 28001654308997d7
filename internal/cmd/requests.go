package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rexster-go/rexster-cli/internal/config"
	"github.com/rexster-go/rexster-cli/internal/dryrun"
	"github.com/rexster-go/rexster-cli/internal/iocontext"
	"github.com/rexster-go/rexster-cli/internal/outfmt"
	"github.com/rexster-go/rexster-cli/internal/payload"
	"github.com/rexster-go/rexster-cli/internal/urlparse"
	"github.com/rexster-go/rexster-cli/internal/validation"
	"github.com/rexster-go/rexster-cli/pkg/rexster"
)

// payloadFlags are the request data flags shared by the request commands.
type payloadFlags struct {
	opts payload.Options
}

func (p *payloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&p.opts.Fields, "field", "f", nil, "Request field as key=value (string)")
	cmd.Flags().StringArrayVarP(&p.opts.RawFields, "raw-field", "F", nil, "Request field as key=value (JSON parsed)")
	cmd.Flags().StringVarP(&p.opts.InputFile, "input", "i", "", "Read request data from a JSON or YAML file (use - for stdin)")
	cmd.Flags().StringVarP(&p.opts.Body, "body", "d", "", "Request data as an inline JSON object")
}

func (p *payloadFlags) build(cmd *cobra.Command) (rexster.Data, error) {
	body, err := payload.Build(iocontext.From(cmd.Context()).In, p.opts)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request data: %w", err)
	}
	if err := validation.ValidatePayloadSize(len(encoded)); err != nil {
		return nil, err
	}
	return rexster.Data(body), nil
}

func newGetCmd() *cobra.Command {
	return newMethodCmd(http.MethodGet, "get [path]", "GET a graph resource", cobra.MaximumNArgs(1),
		`  rexster get                        # graph information
  rexster get vertices --offset-end 10
  rexster get vertices -f key=name -f value=marko
  rexster get vertices/1/out --return-keys name
  rexster get edges/7 --accept application/vnd.rexster-typed-v1+json
  rexster get 'http://localhost:8182/graphs/tinkergraph/vertices?key=name&value=marko'`)
}

func newPostCmd() *cobra.Command {
	return newMethodCmd(http.MethodPost, "post <path>", "POST to a graph resource", cobra.ExactArgs(1),
		`  rexster post vertices -f name=marko -F age=29
  rexster post edges -f _outV=1 -f _inV=2 -f _label=knows
  rexster post vertices -i vertex.yaml`)
}

func newPutCmd() *cobra.Command {
	return newMethodCmd(http.MethodPut, "put <path>", "PUT to a graph resource", cobra.ExactArgs(1),
		`  rexster put vertices/1 -F age=30
  echo '{"name":"vadas"}' | rexster put vertices/2 -i -`)
}

func newDeleteCmd() *cobra.Command {
	return newMethodCmd(http.MethodDelete, "delete <path>", "DELETE a graph resource", cobra.ExactArgs(1),
		`  rexster delete vertices/1
  rexster delete vertices/1 -f name= -f age=`)
}

func newMethodCmd(method, use, short string, args cobra.PositionalArgs, example string) *cobra.Command {
	var data payloadFlags

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: example,
		Args:    args,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			body, err := data.build(cmd)
			if err != nil {
				return err
			}
			path := ""
			if len(args) > 0 {
				if path, body, err = resolveTarget(args[0], body); err != nil {
					return err
				}
			}

			client, ep, err := newClientFactory().graph()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			result, err := sendRequest(cmd.Context(), client, ep, method, path, body)
			if previewed, err := previewDryRun(cmd, client, err); previewed {
				return err
			}
			if err != nil {
				return err
			}
			return renderPayload(cmd, result)
		}),
	}
	data.register(cmd)
	return cmd
}

// resolveTarget returns the resource path named by arg. A full Rexster URL
// also sets the endpoint and graph, its rexster.* parameters fill paging
// flags that were not given, and its other parameters are merged under body.
func resolveTarget(arg string, body rexster.Data) (string, rexster.Data, error) {
	if !urlparse.IsURL(arg) {
		return strings.Trim(arg, "/"), body, nil
	}
	u, err := urlparse.Parse(arg)
	if err != nil {
		return "", nil, err
	}
	flags.BaseURL = u.BaseURL
	flags.Graph = u.Graph

	if v := u.Query.Get("rexster.offset.start"); v != "" && !flags.OffsetStartSet {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return "", nil, fmt.Errorf("rexster.offset.start must be a non-negative integer, got %q", v)
		}
		flags.OffsetStart, flags.OffsetStartSet = n, true
	}
	if v := u.Query.Get("rexster.offset.end"); v != "" && flags.OffsetEnd == 0 {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return "", nil, fmt.Errorf("rexster.offset.end must be a non-negative integer, got %q", v)
		}
		flags.OffsetEnd = n
	}
	if v := u.Query.Get("rexster.returnKeys"); v != "" && len(flags.ReturnKeys) == 0 {
		flags.ReturnKeys = strings.Split(v, ",")
	}

	if extra := u.Data(); len(extra) > 0 {
		if body == nil {
			body = rexster.Data{}
		}
		for k, v := range extra {
			if _, ok := body[k]; !ok {
				body[k] = v
			}
		}
	}
	return u.Path, body, nil
}

// sendRequest issues one request and returns the decoded success payload.
// Without header overrides it goes through the *Custom convenience methods;
// otherwise through MakeRequest, with an application failure turned into a
// *rexster.RequestFailedError either way.
func sendRequest(ctx context.Context, client *rexster.Client, ep config.Endpoint, method, path string, body rexster.Data) (any, error) {
	opts := requestOptions(ep)
	if len(opts) == 0 && path != "" {
		var (
			result *rexster.Result
			err    error
		)
		switch method {
		case http.MethodGet:
			result, err = client.GetCustom(ctx, path, body)
		case http.MethodPost:
			result, err = client.PostCustom(ctx, path, body)
		case http.MethodPut:
			result, err = client.PutCustom(ctx, path, body)
		case http.MethodDelete:
			result, err = client.DeleteCustom(ctx, path, body)
		default:
			return nil, fmt.Errorf("unsupported method %s", method)
		}
		if err != nil {
			return nil, err
		}
		return result.Payload(), nil
	}

	resp, err := client.MakeRequest(ctx, method, path, body, opts...)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &rexster.RequestFailedError{
			Method:     method,
			URL:        client.LastRequest().URL,
			StatusCode: resp.StatusCode,
			Message:    client.LastErrorMessage(),
		}
	}
	return resp.Payload, nil
}

// previewDryRun prints the request a dry-run client refused to send. It
// reports false when err is not a dry-run refusal.
func previewDryRun(cmd *cobra.Command, client *rexster.Client, err error) (bool, error) {
	if !errors.Is(err, dryrun.ErrDryRun) {
		return false, nil
	}
	last := client.LastRequest()
	preview := dryrun.NewPreview(last.Method, last.URL, last.Header, last.Body)

	f := newFormatter(cmd)
	if handled, err := f.Output(preview); handled {
		return true, err
	}
	preview.Write(iocontext.From(cmd.Context()).Out)
	return true, nil
}

// renderPayload prints a decoded response. Text mode prints each element of
// a "results" list as one JSON line followed by a summary on stderr.
func renderPayload(cmd *cobra.Command, v any) error {
	f := newFormatter(cmd)
	if handled, err := f.Output(v); handled {
		return err
	}

	m, ok := v.(map[string]any)
	if !ok {
		return f.Value(v)
	}
	results, ok := m["results"].([]any)
	if !ok {
		return f.Value(v)
	}
	out := iocontext.From(cmd.Context()).Out
	for _, item := range results {
		if err := outfmt.WriteJSON(out, item, true); err != nil {
			return err
		}
	}
	summary := fmt.Sprintf("%d result(s)", len(results))
	if total, ok := m["totalSize"].(float64); ok {
		summary = fmt.Sprintf("%d of %d result(s)", len(results), int64(total))
	}
	if qt, ok := m["queryTime"].(float64); ok {
		summary += fmt.Sprintf(" in %.2fms", qt)
	}
	f.Notice("%s", summary)
	return nil
}

func newRequestCmd() *cobra.Command {
	var data payloadFlags

	cmd := &cobra.Command{
		Use:   "request <METHOD> [path]",
		Short: "Issue a raw request and print its outcome",
		Long: `Issue a raw request against the graph and print the outcome, status code,
error message and payload. An application failure (an error message or an
empty result) is printed rather than treated as a command failure.`,
		Example: `  rexster request GET vertices/1
  rexster request POST vertices -f name=lop --content-type application/json
  rexster request DELETE vertices/99 -o json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			body, err := data.build(cmd)
			if err != nil {
				return err
			}
			path := ""
			if len(args) > 1 {
				if path, body, err = resolveTarget(args[1], body); err != nil {
					return err
				}
			}

			client, ep, err := newClientFactory().graph()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			resp, err := client.MakeRequest(cmd.Context(), args[0], path, body, requestOptions(ep)...)
			if previewed, err := previewDryRun(cmd, client, err); previewed {
				return err
			}
			if err != nil {
				return err
			}

			last := client.LastRequest()
			out := map[string]any{
				"outcome": resp.Outcome.String(),
				"status":  resp.StatusCode,
				"message": resp.Message,
				"payload": resp.Payload,
				"method":  last.Method,
				"url":     last.URL,
			}
			return newFormatter(cmd).Value(out)
		}),
	}
	data.register(cmd)
	return cmd
}
