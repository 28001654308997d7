package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/rexster-go/rexster-cli/internal/config"
	"github.com/rexster-go/rexster-cli/internal/dryrun"
)

// DefaultConcurrency is the default number of concurrent workers
const DefaultConcurrency = 5

// BulkResult is the outcome of one request of a bulk run.
type BulkResult struct {
	Index   int    `json:"-"`
	Path    string `json:"path"`
	Success bool   `json:"success"`
	Error   error  `json:"-"`
	Payload any    `json:"payload,omitempty"`
}

// runBulkOperation runs operation for every path with at most concurrency
// calls in flight. Results are returned in input order.
func runBulkOperation(
	ctx context.Context,
	paths []string,
	concurrency int64,
	progress bool,
	errOut io.Writer,
	operation func(ctx context.Context, path string) (any, error),
) []BulkResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if errOut == nil {
		errOut = io.Discard
	}

	sem := semaphore.NewWeighted(concurrency)
	var mu sync.Mutex
	results := make([]BulkResult, 0, len(paths))
	total := len(paths)
	var done int64

	g, ctx := errgroup.WithContext(ctx)

	for i, path := range paths {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			if ctx.Err() != nil {
				return nil
			}

			data, err := operation(ctx, path)

			mu.Lock()
			results = append(results, BulkResult{
				Index:   i,
				Path:    path,
				Success: err == nil,
				Error:   err,
				Payload: data,
			})
			mu.Unlock()

			if progress && total > 0 {
				current := atomic.AddInt64(&done, 1)
				mu.Lock()
				_, _ = fmt.Fprintf(errOut, "\rFetched %d/%d", current, total)
				mu.Unlock()
			}
			// Individual failures are reported per result, not by the group.
			return nil
		})
	}

	_ = g.Wait()

	if progress && total > 0 {
		_, _ = fmt.Fprintf(errOut, "\rFetched %d/%d\n", atomic.LoadInt64(&done), total)
	}

	sort.Slice(results, func(a, b int) bool { return results[a].Index < results[b].Index })
	return results
}

// countResults returns success and failure counts from bulk results
func countResults(results []BulkResult) (success, failure int) {
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failure++
		}
	}
	return
}

type bulkOutputItem struct {
	Path    string `json:"path"`
	Success bool   `json:"success"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newBulkCmd() *cobra.Command {
	var concurrency int64
	var progress bool

	cmd := &cobra.Command{
		Use:   "bulk <path>...",
		Short: "GET several graph resources concurrently",
		Long: `GET several graph resources concurrently. Each request uses its own client,
so paging flags apply to every path. The command fails when any request
fails; successful results are still printed.`,
		Example: `  rexster bulk vertices/1 vertices/2 vertices/3
  rexster bulk vertices/1/out vertices/2/out --concurrency 2 -o jsonl`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			factory := newClientFactory()
			ep, err := factory.endpoint()
			if err != nil {
				return err
			}

			paths := make([]string, len(args))
			for i, a := range args {
				paths[i] = strings.Trim(a, "/")
				if paths[i] == "" {
					return fmt.Errorf("path %d must not be empty", i+1)
				}
			}

			f := newFormatter(cmd)
			showProgress := progress && !isJSON(cmd) && !flags.Quiet
			results := runBulkOperation(cmd.Context(), paths, concurrency, showProgress, cmd.ErrOrStderr(),
				func(ctx context.Context, path string) (any, error) {
					return fetchOne(ctx, factory, ep, path)
				})

			items := make([]bulkOutputItem, len(results))
			var firstErr error
			for i, r := range results {
				items[i] = bulkOutputItem{Path: r.Path, Success: r.Success, Payload: r.Payload}
				if r.Error != nil {
					items[i].Error = r.Error.Error()
					if firstErr == nil {
						firstErr = r.Error
					}
				}
			}

			if handled, err := f.Output(items); handled {
				if err != nil {
					return err
				}
			} else {
				f.StartTable("PATH", "RESULT")
				for _, item := range items {
					if item.Success {
						f.Row(item.Path, "ok")
					} else {
						f.Row(item.Path, item.Error)
					}
				}
				if err := f.EndTable(); err != nil {
					return err
				}
			}

			success, failure := countResults(results)
			f.Notice("%d succeeded, %d failed", success, failure)
			if firstErr != nil {
				return fmt.Errorf("%d of %d requests failed: %w", failure, len(results), firstErr)
			}
			return nil
		}),
	}

	cmd.Flags().Int64VarP(&concurrency, "concurrency", "c", DefaultConcurrency, "Maximum requests in flight")
	cmd.Flags().BoolVar(&progress, "progress", false, "Show progress on stderr")
	return cmd
}

// fetchOne issues a single GET on a client of its own. Clients are not safe
// for concurrent use. In dry-run mode the payload is the request preview.
func fetchOne(ctx context.Context, factory *clientFactory, ep config.Endpoint, path string) (any, error) {
	client, err := factory.newClient(ep)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	payload, err := sendRequest(ctx, client, ep, http.MethodGet, path, nil)
	if errors.Is(err, dryrun.ErrDryRun) {
		last := client.LastRequest()
		return dryrun.NewPreview(last.Method, last.URL, last.Header, last.Body), nil
	}
	return payload, err
}
