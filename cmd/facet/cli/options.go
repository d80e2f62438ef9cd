package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xraph/facet"
	"github.com/xraph/facet/clause"
)

func newOptionsCmd(rt *runtime) *cobra.Command {
	var userID, scopeID, field, tagKey string
	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the selectable values of a field within a scope",
		Long: `List every value of a field in one of the user's scopes. Values outside a
restriction are listed but marked as not allowed; a locked field shows its
single locked value.`,
		Example: `  facet options --user user-manager --scope scope-eng --field status
  facet options --user user-admin --scope scope-all --field custom_tag --tag-key project`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			u, err := s.eng.GetUser(s.ctx, userID)
			if err != nil {
				return err
			}
			if scopeID == "" {
				scopeID = u.Scopes[0].ID
			}
			f := clause.Field(field)
			if !f.Known() {
				return fmt.Errorf("%w: unknown field %q", facet.ErrInvalidClause, field)
			}
			opts, err := s.eng.Options(s.ctx, u, scopeID, f, tagKey)
			if err != nil {
				return err
			}
			sc, _ := u.Scope(scopeID)
			policy := facet.PolicyFor(sc, f, tagKey)

			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(map[string]any{
					"field":   f,
					"tag_key": tagKey,
					"access":  policy.Access,
					"options": opts,
				})
			}
			p.linef("%s in %s: %s", f.Label(), sc.Name, policy.Access)
			rows := make([][]string, 0, len(opts))
			for _, o := range opts {
				rows = append(rows, []string{o.Value, o.Label, yesNo(o.Allowed)})
			}
			p.table([]string{"VALUE", "LABEL", "ALLOWED"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (required)")
	cmd.Flags().StringVarP(&scopeID, "scope", "s", "", "scope id (defaults to the user's first scope)")
	cmd.Flags().StringVar(&field, "field", "", "field name (required)")
	cmd.Flags().StringVar(&tagKey, "tag-key", "", "custom tag key, for --field custom_tag")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func newFieldsCmd(rt *runtime) *cobra.Command {
	var userID, scopeID string
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the fields a new clause may use within a scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			sess, err := s.eng.NewSession(s.ctx, userID)
			if err != nil {
				return err
			}
			if scopeID == "" {
				scopeID = sess.User().Scopes[0].ID
			}
			fields, tagKeys, err := sess.AddableFields(s.ctx, scopeID)
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(map[string]any{"fields": fields, "tag_keys": tagKeys})
			}
			rows := make([][]string, 0, len(fields))
			for _, f := range fields {
				detail := ""
				if f == clause.FieldCustomTag {
					detail = strings.Join(tagKeys, ", ")
				}
				rows = append(rows, []string{string(f), f.Label(), detail})
			}
			p.table([]string{"FIELD", "LABEL", "TAG KEYS"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (required)")
	cmd.Flags().StringVarP(&scopeID, "scope", "s", "", "scope id (defaults to the user's first scope)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
