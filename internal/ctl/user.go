package ctl

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/colisso/internal/common"
	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/spf13/cobra"
)

const userCreateExample = `  colissoctl user create --email admin@colisso.fr --name Admin --role ADMIN
  echo "$PW" | colissoctl user create --email ops@colisso.fr --name Ops --password-stdin`

func (a *App) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage operator accounts",
	}

	var (
		name, email, role string
		passwordStdin     bool
	)
	create := &cobra.Command{
		Use:     "create",
		Short:   "Create an operator account with any role",
		Example: userCreateExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := models.Role(strings.ToUpper(role))
			if !r.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}

			var err error
			if email == "" {
				if email, err = GetSimpleText(a.in, "Email", a.out); err != nil {
					return err
				}
			}
			if name == "" {
				if name, err = GetSimpleText(a.in, "Name", a.out); err != nil {
					return err
				}
			}

			var pw []byte
			if passwordStdin {
				line, err := a.in.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				pw = []byte(strings.TrimRight(line, "\r\n"))
			} else if pw, err = GetPassword(a.out, "Password: "); err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			ctx := cmd.Context()
			return a.withDB(ctx, func(db *sql.DB) error {
				u, err := a.newUsers(db, a.repos, a.cfg).CreateUser(ctx, name, email, string(pw), r)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "created %s %s (%s)\n", u.Role, u.Email, u.ID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&email, "email", "", "login email")
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&role, "role", string(models.RoleUser), "USER, MANAGER or ADMIN")
	create.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from the first line of stdin")

	cmd.AddCommand(create)
	return cmd
}
