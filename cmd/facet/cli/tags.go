package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/xraph/facet/tag"
)

func newTagsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage custom tags",
	}
	cmd.AddCommand(
		newTagsListCmd(rt),
		newTagsCreateCmd(rt),
		newTagsDeleteCmd(rt),
	)
	return cmd
}

func newTagsListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List default and custom tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			tags, err := s.eng.ListTags(s.ctx)
			if err != nil {
				return err
			}
			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(tags)
			}
			p.table([]string{"KEY", "LABEL", "VALUES", "DEFAULT"}, tagRows(tags))
			return nil
		},
	}
}

func newTagsCreateCmd(rt *runtime) *cobra.Command {
	var (
		label  string
		values []string
	)
	cmd := &cobra.Command{
		Use:     "create <key>",
		Short:   "Create a custom tag",
		Example: `  facet tags create "Cost Type" --label "Cost type" --value Billable --value "Non billable"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if label == "" {
				label = args[0]
			}
			t, err := s.eng.CreateTag(s.ctx, args[0], label, values)
			if err != nil {
				return err
			}
			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(t)
			}
			p.linef("Created tag %s with %d value(s)", t.Key, len(t.Values))
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "display label (defaults to the key)")
	cmd.Flags().StringArrayVar(&values, "value", nil, "value label (repeatable)")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func newTagsDeleteCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a custom tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.eng.DeleteTag(s.ctx, args[0]); err != nil {
				return err
			}
			newPrinter(cmd).linef("Deleted tag %s", args[0])
			return nil
		},
	}
}

func tagRows(tags []*tag.Tag) [][]string {
	rows := make([][]string, 0, len(tags))
	for _, t := range tags {
		vals := make([]string, len(t.Values))
		for i, v := range t.Values {
			vals[i] = v.Value
		}
		rows = append(rows, []string{t.Key, t.Label, strings.Join(vals, ","), yesNo(t.IsDefault)})
	}
	return rows
}
