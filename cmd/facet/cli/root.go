// Package cli implements the facet command tree: evaluate scoped filters
// against a fixture dataset and manage the tag registry.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// VersionInfo is stamped at build time.
type VersionInfo struct {
	Version string
	Commit  string
}

// NewRootCommand builds the facet command with every subcommand attached.
func NewRootCommand(info VersionInfo) *cobra.Command {
	rt := &runtime{}

	cmd := &cobra.Command{
		Use:           "facet",
		Short:         "Scoped faceted filters for absence requests",
		Long:          "Evaluate a user's permission scopes and filter clauses against a record dataset, inspect field options, and manage custom tags.",
		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			rt.close()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&rt.configPath, "config", "", "config file (default is ./config.yaml)")
	pf.StringP("output", "o", "table", "output format: table or json")
	pf.String("tenant", "", "tenant id (defaults to the fixture's tenant)")
	pf.String("fixture", "", "YAML fixture with users, tags and records (defaults to the built-in sample)")
	pf.String("store", "memory", "store driver: memory or redis")
	pf.String("redis-url", "", "redis connection URL for the redis store")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.Bool("log-json", false, "emit logs as JSON")

	cmd.Version = fmt.Sprintf("%s (%s)", info.Version, info.Commit)

	cmd.AddCommand(
		newApplyCmd(rt),
		newOptionsCmd(rt),
		newFieldsCmd(rt),
		newUsersCmd(rt),
		newTagsCmd(rt),
		newConfigCmd(),
		newVersionCmd(info),
	)
	return cmd
}
