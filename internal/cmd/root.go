package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rexster-go/rexster-cli/internal/config"
	"github.com/rexster-go/rexster-cli/internal/debug"
	"github.com/rexster-go/rexster-cli/internal/dryrun"
	"github.com/rexster-go/rexster-cli/internal/iocontext"
	"github.com/rexster-go/rexster-cli/internal/outfmt"
	"github.com/rexster-go/rexster-cli/pkg/rexster"
)

const envOutput = "REXSTER_OUTPUT"

// rootFlags holds global CLI flags
type rootFlags struct {
	Output  string
	JSON    bool
	Query   string
	JQ      string
	Compact bool
	Debug   bool
	Quiet   bool
	DryRun  bool
	Timeout time.Duration

	BaseURL string
	Graph   string
	Profile string

	OffsetStart    int
	OffsetStartSet bool
	OffsetEnd      int
	ReturnKeys     []string
	Accept         string
	ContentType    string
}

// flags holds the global command flags. It is package-level mutable state
// and MUST be reset at the start of every Execute() call; tests rely on the
// reset for isolation.
var flags = defaultFlags()

func defaultFlags() rootFlags {
	return rootFlags{
		Output:  defaultOutput(),
		Timeout: rexster.DefaultTimeout,
	}
}

func defaultOutput() string {
	if value := strings.TrimSpace(os.Getenv(envOutput)); value != "" {
		return normalizeOutputFormat(value)
	}
	return "text"
}

func normalizeOutputFormat(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "ndjson" {
		return "jsonl"
	}
	return value
}

// getJQQuery returns the jq query from --jq or --query. --jq wins.
func getJQQuery() string {
	if flags.JQ != "" {
		return flags.JQ
	}
	return flags.Query
}

// Execute runs the root command. Streams stored in ctx with
// iocontext.WithStreams are used instead of the process stdio.
func Execute(ctx context.Context, args []string) error {
	// .env is loaded before the flag reset so REXSTER_OUTPUT from the file
	// is picked up as a default.
	if wd, err := os.Getwd(); err == nil {
		if err := config.LoadDotEnv(wd); err != nil {
			_, _ = fmt.Fprintln(iocontext.From(ctx).ErrOut, "Warning:", err)
		}
	}

	flags = defaultFlags()

	root := &cobra.Command{
		Use:           "rexster",
		Short:         "Command line client for the Rexster graph server REST API",
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupCommandContext(cmd)
		},
	}

	streams := iocontext.From(ctx)
	root.SetContext(ctx)
	root.SetArgs(args)
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.ErrOut)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.BaseURL, "base-url", "", "Rexster server URL, e.g. http://localhost:8182 (env "+config.EnvBaseURL+")")
	pf.StringVarP(&flags.Graph, "graph", "g", "", "Graph name (env "+config.EnvGraph+")")
	pf.StringVar(&flags.Profile, "profile", "", "Stored endpoint profile to use (env "+config.EnvProfile+")")
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl|ndjson (env "+envOutput+")")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVarP(&flags.Query, "query", "q", "", "jq expression to filter JSON output")
	pf.StringVar(&flags.JQ, "jq", "", "Alias for --query")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.Debug, "debug", false, "Log requests and responses to stderr")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress informational output")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Print graph requests instead of sending them")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Request timeout (0 disables it)")
	pf.IntVar(&flags.OffsetStart, "offset-start", 0, "rexster.offset.start for GET requests")
	pf.IntVar(&flags.OffsetEnd, "offset-end", 0, "rexster.offset.end for GET requests (0 omits it)")
	pf.StringSliceVar(&flags.ReturnKeys, "return-keys", nil, "Element properties to return (rexster.returnKeys)")
	pf.StringVar(&flags.Accept, "accept", "", "Accept header, e.g. "+rexster.ContentTypeRexsterTyped)
	pf.StringVar(&flags.ContentType, "content-type", "", "Content-Type of POST and PUT bodies")

	flagAlias(pf, "base-url", "url")
	flagAlias(pf, "output", "out")
	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "return-keys", "rk")
	flagAlias(pf, "offset-start", "start")
	flagAlias(pf, "offset-end", "end")
	flagAlias(pf, "debug", "dbg")
	flagAlias(pf, "timeout", "to")

	root.AddCommand(newGetCmd())
	root.AddCommand(newPostCmd())
	root.AddCommand(newPutCmd())
	root.AddCommand(newDeleteCmd())
	root.AddCommand(newRequestCmd())
	root.AddCommand(newGraphsCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newBulkCmd())
	root.AddCommand(newProfileCmd())
	root.AddCommand(newVersionCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		}
		return err
	}
	return nil
}

// setupCommandContext turns the parsed global flags into context values.
func setupCommandContext(cmd *cobra.Command) error {
	ctx := cmd.Context()

	flags.Output = normalizeOutputFormat(flags.Output)
	if flags.JSON {
		if flagOrAliasChanged(cmd, "output") && flags.Output != "json" {
			return fmt.Errorf("--json conflicts with --output %s", flags.Output)
		}
		flags.Output = "json"
	}
	query := getJQQuery()
	if query != "" && flags.Output == "text" {
		if flagOrAliasChanged(cmd, "output") {
			return fmt.Errorf("--query/--jq require --output json or jsonl (or --json)")
		}
		flags.Output = "json"
	}

	mode, err := outfmt.Parse(flags.Output)
	if err != nil {
		return err
	}
	ctx = outfmt.WithMode(ctx, mode)
	ctx = outfmt.WithCompact(ctx, flags.Compact)
	ctx = outfmt.WithQuiet(ctx, flags.Quiet)
	if query != "" {
		ctx = outfmt.WithQuery(ctx, query)
	}

	flags.OffsetStartSet = flagOrAliasChanged(cmd, "offset-start")
	if flags.OffsetStartSet && flags.OffsetStart < 0 {
		return fmt.Errorf("--offset-start must be >= 0")
	}
	if flags.OffsetEnd < 0 {
		return fmt.Errorf("--offset-end must be >= 0")
	}
	if flags.Timeout < 0 {
		return fmt.Errorf("--timeout must be >= 0")
	}

	streams := iocontext.From(ctx)
	ctx = iocontext.WithStreams(ctx, streams)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.ErrOut)

	debug.SetupLogger(streams.ErrOut, flags.Debug)
	ctx = debug.WithDebug(ctx, flags.Debug)
	ctx = dryrun.WithDryRun(ctx, flags.DryRun)

	cmd.SetContext(ctx)
	return nil
}

const rootLong = `Command line client for the Rexster graph server REST API.

Requests are addressed to {base-url}/graphs/{graph}/{path}. The endpoint is
taken, from highest to lowest precedence, from --base-url/--graph, the
REXSTER_BASE_URL/REXSTER_GRAPH environment variables, and the current stored
profile (see 'rexster profile').

Examples:
  rexster --base-url http://localhost:8182 --graph tinkergraph get vertices
  rexster get vertices --offset-start 0 --offset-end 10 --return-keys name,age
  rexster post vertices -f name=marko -F age=29
  rexster delete vertices/1
  rexster delete vertices/1 --dry-run
  rexster get vertices -q '.results[].name'`
