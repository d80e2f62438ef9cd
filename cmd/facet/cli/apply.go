package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xraph/facet"
	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/record"
	"github.com/xraph/facet/scope"
)

func newApplyCmd(rt *runtime) *cobra.Command {
	var (
		userID  string
		filters []string
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Evaluate a user's scopes and print the matching records",
		Long: `Evaluate every permission scope of a user against the dataset and print
the merged records, newest first.

Filters are written as [scope-id=]field:operator:value. Without a scope id
the clause goes to the user's default (first) scope. Several clauses may be
joined with "|" in one flag.`,
		Example: `  facet apply --user user-manager
  facet apply --user user-hr --filter scope-hr=status:is_any_of:pending,approved
  facet apply --user user-admin --filter 'start_date:between:2025-01-01,2025-03-31'`,
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
			clauses, err := parseFilters(u, filters)
			if err != nil {
				return err
			}
			for scopeID, cs := range clauses {
				for _, c := range cs {
					if err := clause.Validate(c); err != nil {
						return fmt.Errorf("scope %s: %w", scopeID, err)
					}
				}
			}

			res, err := s.eng.ApplyClauses(s.ctx, u, clauses)
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(res)
			}
			printClauses(p, s, u, clauses)
			p.table(recordHeader, recordRows(res.Records))
			p.linef("")
			p.linef("%d record(s)%s", res.Total, truncatedNote(res))
			for _, sr := range res.Scopes {
				p.linef("  %s: %d matched", sr.ScopeID, sr.Matched)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (required)")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter clause [scope-id=]field:operator:value (repeatable)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// parseFilters groups --filter values by scope id.
func parseFilters(u *scope.User, filters []string) (map[string][]clause.Clause, error) {
	out := make(map[string][]clause.Clause)
	for _, f := range filters {
		scopeID, params := u.Scopes[0].ID, f
		if before, after, ok := strings.Cut(f, "="); ok {
			scopeID, params = before, after
		}
		if _, ok := u.Scope(scopeID); !ok {
			return nil, fmt.Errorf("%w: %s", facet.ErrScopeNotFound, scopeID)
		}
		cs, err := clause.ParseParams(params)
		if err != nil {
			return nil, err
		}
		out[scopeID] = append(out[scopeID], cs...)
	}
	return out, nil
}

func printClauses(p *printer, s *session, u *scope.User, clauses map[string][]clause.Clause) {
	for _, sc := range u.Scopes {
		set := facet.Compose(&sc, clauses[sc.ID])
		if len(set) == 0 {
			p.linef("%s: all records", sc.Name)
			continue
		}
		parts := make([]string, 0, len(set))
		for _, c := range set {
			labels := map[string]string{}
			if opts, err := s.eng.Options(s.ctx, u, sc.ID, c.Field, c.TagKey); err == nil {
				labels = facet.Labels(opts)
			}
			text := clause.Summary(c, labels)
			if c.Locked {
				text += " (locked)"
			}
			parts = append(parts, text)
		}
		p.linef("%s: %s", sc.Name, strings.Join(parts, " and "))
	}
	p.linef("")
}

var recordHeader = []string{"ID", "EMPLOYEE", "STATUS", "START", "END", "DEPARTMENT", "LOCATION"}

func recordRows(records []*record.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.ID,
			r.Employee,
			r.Status.Label(),
			r.StartDate.Format("2006-01-02"),
			r.EndDate.Format("2006-01-02"),
			r.Department.Label,
			r.Location.Label,
		})
	}
	return rows
}

func truncatedNote(res *facet.ApplyResult) string {
	if !res.Truncated {
		return ""
	}
	return fmt.Sprintf(", showing first %d", len(res.Records))
}
