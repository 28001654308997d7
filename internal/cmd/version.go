package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			f := newFormatter(cmd)
			if handled, err := f.Output(map[string]string{
				"version": version,
				"go":      runtime.Version(),
			}); handled {
				return err
			}
			return f.Value("rexster-cli version " + version)
		}),
	}
}
