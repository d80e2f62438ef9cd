package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xraph/facet/scope"
)

func newUsersCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect the user directory",
	}
	cmd.AddCommand(newUsersListCmd(rt))
	return cmd
}

func newUsersListCmd(rt *runtime) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users and their scopes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			users, err := s.eng.ListUsers(s.ctx, &scope.ListFilter{Search: search})
			if err != nil {
				return err
			}
			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(users)
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{u.ID, u.Name, u.Role, strconv.Itoa(len(u.Scopes)), strings.Join(u.ScopeIDs(), ",")})
			}
			p.table([]string{"ID", "NAME", "ROLE", "SCOPES", "SCOPE IDS"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name, id or email")
	return cmd
}
