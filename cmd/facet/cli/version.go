package cli

import (
	"github.com/spf13/cobra"
)

func newVersionCmd(info VersionInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(map[string]string{
					"version": info.Version,
					"commit":  info.Commit,
				})
			}
			p.linef("facet version %s (commit: %s)", info.Version, info.Commit)
			return nil
		},
	}
}
