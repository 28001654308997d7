package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rexster-go/rexster-cli/internal/cache"
	"github.com/rexster-go/rexster-cli/internal/suggest"
	"github.com/rexster-go/rexster-cli/pkg/rexster"
)

func newGraphsCmd() *cobra.Command {
	var match string
	var refresh, clearCache bool

	cmd := &cobra.Command{
		Use:     "graphs",
		Aliases: []string{"ls"},
		Short:   "List the graphs the server hosts",
		Long: `List the graphs the server hosts. The list is cached for a few minutes
and --match resolves names against the cached list unless --refresh is given.`,
		Example: `  rexster graphs
  rexster graphs --match tinker
  rexster graphs --clear-cache
  rexster graphs -o json -q '.[0]'`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			f := newFormatter(cmd)
			if clearCache {
				dir, err := cache.DefaultDir()
				if err != nil {
					return err
				}
				removed, err := cache.ClearAll(dir)
				if err != nil {
					return err
				}
				f.Notice("Removed %d cached graph list(s)", removed)
				return nil
			}

			client, ep, err := newClientFactory().server()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			graphs, err := graphNames(cmd.Context(), client, ep.BaseURL, match == "" || refresh)
			if err != nil {
				return err
			}

			if match != "" {
				name, err := suggest.Graph(match, graphs)
				if err != nil {
					return err
				}
				return f.Value(name)
			}

			if ep.Graph != "" && !suggest.Contains(graphs, ep.Graph) {
				if similar := suggest.Similar(ep.Graph, graphs, 3); len(similar) > 0 {
					f.Notice("Warning: graph %q is not hosted by the server. Did you mean: %s?", ep.Graph, strings.Join(similar, ", "))
				} else {
					f.Notice("Warning: graph %q is not hosted by the server.", ep.Graph)
				}
			}

			if handled, err := f.Output(graphs); handled {
				return err
			}
			if len(graphs) == 0 {
				f.Notice("No graphs found")
				return nil
			}
			f.StartTable("GRAPH", "CURRENT")
			for _, g := range graphs {
				current := ""
				if g == ep.Graph {
					current = "*"
				}
				f.Row(g, current)
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().StringVarP(&match, "match", "m", "", "Print the hosted graph best matching this name")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cached graph list")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Remove all cached graph lists and exit")
	return cmd
}

// graphNames returns the server's graphs, from the cache unless live is set.
// Live results refresh the cache.
func graphNames(ctx context.Context, client *rexster.Client, baseURL string, live bool) ([]string, error) {
	var store *cache.Store
	if dir, err := cache.DefaultDir(); err == nil {
		store = cache.NewStore(dir, baseURL)
	}
	if store != nil && !live {
		if graphs, ok := store.Graphs(); ok {
			return graphs, nil
		}
	}

	graphs, err := client.Graphs(ctx)
	if err != nil {
		return nil, err
	}
	if store != nil {
		store.Put(graphs)
	}
	return graphs, nil
}
