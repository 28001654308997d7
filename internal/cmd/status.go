package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rexster-go/rexster-cli/internal/cache"
	"github.com/rexster-go/rexster-cli/internal/compat"
)

type statusOutput struct {
	BaseURL        string   `json:"base_url"`
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	UpTime         string   `json:"up_time,omitempty"`
	Graphs         []string `json:"graphs"`
	MinimumVersion string   `json:"minimum_version"`
	Supported      bool     `json:"supported"`
}

func newStatusCmd() *cobra.Command {
	var minVersion string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server name, version and graphs",
		Long: `Show the server name, version, uptime and hosted graphs, and check the
server version against the minimum this client supports. The command fails
when the server is older than --min-version.`,
		Example: `  rexster status
  rexster status --min-version 2.5.0 -o json`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, ep, err := newClientFactory().server()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			info, err := client.ServerInfo(cmd.Context())
			if err != nil {
				return err
			}
			if dir, err := cache.DefaultDir(); err == nil {
				cache.NewStore(dir, ep.BaseURL).Put(info.Graphs)
			}
			check := compat.Check(info.Version, minVersion)

			out := statusOutput{
				BaseURL:        ep.BaseURL,
				Name:           info.Name,
				Version:        info.Version,
				UpTime:         info.UpTime,
				Graphs:         info.Graphs,
				MinimumVersion: check.MinimumVersion,
				Supported:      check.Supported,
			}
			if out.Graphs == nil {
				out.Graphs = []string{}
			}

			f := newFormatter(cmd)
			if handled, err := f.Output(out); !handled {
				f.Row("SERVER", out.BaseURL)
				f.Row("NAME", out.Name)
				f.Row("VERSION", out.Version)
				if out.UpTime != "" {
					f.Row("UPTIME", out.UpTime)
				}
				f.Row("GRAPHS", strings.Join(out.Graphs, ", "))
				if err := f.EndTable(); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			switch {
			case !check.Valid:
				f.Notice("Warning: cannot compare server version %q with minimum %s", info.Version, check.MinimumVersion)
			case !check.Supported:
				return fmt.Errorf("server version %s is older than the minimum supported version %s", info.Version, check.MinimumVersion)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&minVersion, "min-version", compat.MinimumServerVersion, "Minimum server version required")
	return cmd
}
