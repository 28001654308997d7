package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rexster-go/rexster-cli/internal/config"
	"github.com/rexster-go/rexster-cli/internal/validation"
)

type profileOutput struct {
	Name        string   `json:"name"`
	Current     bool     `json:"current"`
	BaseURL     string   `json:"base_url"`
	Graph       string   `json:"graph"`
	ReturnKeys  []string `json:"return_keys,omitempty"`
	ContentType string   `json:"content_type,omitempty"`
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"pr"},
		Short:   "Manage stored endpoint profiles",
		Long: `Manage named Rexster endpoints stored in the OS keyring. The current
profile supplies the base URL and graph when neither flags nor environment
variables set them.`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			return runProfileList(cmd)
		}),
	}

	cmd.AddCommand(newProfileSaveCmd())
	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileUseCmd())
	cmd.AddCommand(newProfileDeleteCmd())
	cmd.AddCommand(newProfileShowCmd())
	return cmd
}

func newProfileSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name>",
		Short: "Save the given endpoint as a profile and make it current",
		Example: `  rexster profile save local --base-url http://localhost:8182 --graph tinkergraph
  rexster profile save typed --base-url http://localhost:8182 --graph gratefulgraph \
    --content-type application/vnd.rexster-typed-v1+json --return-keys name`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("profile name is required")
			}
			if flags.BaseURL == "" || flags.Graph == "" {
				return fmt.Errorf("--base-url and --graph are required")
			}
			if err := validation.ValidateBaseURL(flags.BaseURL); err != nil {
				return fmt.Errorf("invalid base URL %q: %w", flags.BaseURL, err)
			}
			if err := validation.ValidateGraphName(flags.Graph); err != nil {
				return err
			}

			profile := config.Profile{
				BaseURL:     strings.TrimSpace(flags.BaseURL),
				Graph:       strings.TrimSpace(flags.Graph),
				ReturnKeys:  flags.ReturnKeys,
				ContentType: flags.ContentType,
			}
			if err := config.SaveProfile(name, profile); err != nil {
				return err
			}

			f := newFormatter(cmd)
			if handled, err := f.Output(toProfileOutput(name, profile, true)); handled {
				return err
			}
			f.Notice("Saved profile %q (%s, graph %s)", name, profile.BaseURL, profile.Graph)
			return nil
		}),
	}
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored profiles",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			return runProfileList(cmd)
		}),
	}
}

func runProfileList(cmd *cobra.Command) error {
	names, err := config.ListProfiles()
	if err != nil {
		return err
	}
	current, _ := config.CurrentProfile()

	items := make([]profileOutput, 0, len(names))
	for _, name := range names {
		profile, err := config.LoadProfile(name)
		if err != nil {
			return err
		}
		items = append(items, toProfileOutput(name, profile, name == current))
	}

	f := newFormatter(cmd)
	if handled, err := f.Output(items); handled {
		return err
	}
	if len(items) == 0 {
		f.Notice("No profiles saved. Run: rexster profile save <name> --base-url <url> --graph <graph>")
		return nil
	}
	f.StartTable("NAME", "CURRENT", "BASE URL", "GRAPH")
	for _, item := range items {
		marker := ""
		if item.Current {
			marker = "*"
		}
		f.Row(item.Name, marker, item.BaseURL, item.Graph)
	}
	return f.EndTable()
}

func newProfileUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Make a stored profile current",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if _, err := config.LoadProfile(name); err != nil {
				return err
			}
			if err := config.SetCurrentProfile(name); err != nil {
				return err
			}
			newFormatter(cmd).Notice("Switched to profile %q", name)
			return nil
		}),
	}
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored profile",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if err := config.DeleteProfile(name); err != nil {
				return err
			}
			newFormatter(cmd).Notice("Deleted profile %q", name)
			return nil
		}),
	}
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show a stored profile (the current one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			current, err := config.CurrentProfile()
			if err != nil {
				return err
			}
			name := current
			if len(args) > 0 {
				name = strings.TrimSpace(args[0])
			}
			profile, err := config.LoadProfile(name)
			if err != nil {
				return err
			}

			out := toProfileOutput(name, profile, name == current)
			f := newFormatter(cmd)
			if handled, err := f.Output(out); handled {
				return err
			}
			f.Row("NAME", out.Name)
			f.Row("CURRENT", fmt.Sprint(out.Current))
			f.Row("BASE URL", out.BaseURL)
			f.Row("GRAPH", out.Graph)
			if len(out.ReturnKeys) > 0 {
				f.Row("RETURN KEYS", strings.Join(out.ReturnKeys, ","))
			}
			if out.ContentType != "" {
				f.Row("CONTENT TYPE", out.ContentType)
			}
			return f.EndTable()
		}),
	}
}

func toProfileOutput(name string, p config.Profile, current bool) profileOutput {
	return profileOutput{
		Name:        name,
		Current:     current,
		BaseURL:     p.BaseURL,
		Graph:       p.Graph,
		ReturnKeys:  p.ReturnKeys,
		ContentType: p.ContentType,
	}
}
