package cmd

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/rexster-go/rexster-cli/internal/config"
	"github.com/rexster-go/rexster-cli/pkg/rexster"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "not configured",
			err:      config.ErrNotConfigured,
			contains: []string{"No Rexster endpoint configured", "REXSTER_BASE_URL"},
		},
		{
			name:     "profile not found",
			err:      fmt.Errorf("%w: ghost", config.ErrProfileNotFound),
			contains: []string{"profile not found: ghost", "rexster profile list"},
		},
		{
			name:     "config",
			err:      &rexster.ConfigError{Field: "url", Reason: "path must not be empty"},
			contains: []string{"Invalid configuration: invalid url: path must not be empty"},
		},
		{
			name:     "unknown graph",
			err:      &rexster.RequestFailedError{Method: "GET", StatusCode: 500, Message: "Graph [nope] could not be found"},
			contains: []string{"Request failed (HTTP 500)", "rexster graphs"},
		},
		{
			name:     "missing element",
			err:      &rexster.RequestFailedError{Method: "GET", StatusCode: 404, Message: "Vertex with [9] cannot be found."},
			contains: []string{"Request failed (HTTP 404)", "element id"},
		},
		{
			name:     "empty result",
			err:      &rexster.RequestFailedError{Method: "GET", StatusCode: 200},
			contains: []string{"empty response", "--offset-start"},
		},
		{
			name:     "connection refused",
			err:      &rexster.TransportError{Method: "GET", URL: "http://localhost:8182/graphs", Err: errors.New("dial tcp: connection refused")},
			contains: []string{"Could not complete GET http://localhost:8182/graphs", "default port is 8182"},
		},
		{
			name:     "timeout",
			err:      &rexster.TransportError{Method: "POST", URL: "http://x/graphs/g", Err: errors.New("context deadline exceeded")},
			contains: []string{"Increase --timeout"},
		},
		{
			name:     "closed",
			err:      rexster.ErrClientClosed,
			contains: []string{"client already closed"},
		},
		{
			name:     "generic",
			err:      errors.New("boom"),
			contains: []string{"Error: boom"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := HandleError(tc.err)
			for _, want := range tc.contains {
				if !strings.Contains(got, want) {
					t.Errorf("HandleError() = %q, missing %q", got, want)
				}
			}
		})
	}

	if HandleError(nil) != "" {
		t.Error("HandleError(nil) should be empty")
	}
}

func TestErrorPayload(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		typ    string
		status int
	}{
		{"config", config.ErrNotConfigured, "config", 0},
		{"failure", &rexster.RequestFailedError{Method: "GET", URL: "http://x/graphs/g/vertices/9", StatusCode: 404, Message: "gone"}, "application_failure", 404},
		{"transport", &rexster.TransportError{Method: "GET", URL: "http://x", StatusCode: 200, Err: errors.New("reset")}, "transport", 200},
		{"generic", errors.New("boom"), "error", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := errorPayload(tc.err)["error"]
			if body.Type != tc.typ || body.StatusCode != tc.status {
				t.Errorf("errorPayload() = %+v", body)
			}
			if body.Message == "" {
				t.Error("message should not be empty")
			}
		})
	}
}

func TestFlagAlias(t *testing.T) {
	var value string
	var keys []string
	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	cmd.Flags().StringVar(&value, "base-url", "", "")
	cmd.Flags().StringSliceVar(&keys, "return-keys", nil, "")
	flagAlias(cmd.Flags(), "base-url", "url")
	flagAlias(cmd.Flags(), "return-keys", "rk")

	cmd.SetArgs([]string{"--url", "http://localhost:8182", "--rk", "name,age"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if value != "http://localhost:8182" {
		t.Errorf("value = %q", value)
	}
	if strings.Join(keys, ",") != "name,age" {
		t.Errorf("keys = %v", keys)
	}
	if !flagOrAliasChanged(cmd, "base-url") || !cmd.Flags().Changed("base-url") {
		t.Error("alias should mark the canonical flag as changed")
	}
	if alias := cmd.Flags().Lookup("url"); alias == nil || !alias.Hidden {
		t.Error("alias should be registered hidden")
	}
}

func TestFlagAliasPanicsOnUnknownFlag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	cmd := &cobra.Command{Use: "test"}
	flagAlias(cmd.Flags(), "missing", "m")
}

func TestVersionCommand(t *testing.T) {
	clearEndpointEnv(t)

	res := runCLI(t, "version")
	if res.err != nil {
		t.Fatalf("version failed: %v", res.err)
	}
	if strings.TrimSpace(res.stdout) != "rexster-cli version "+version {
		t.Errorf("stdout = %q", res.stdout)
	}
}
