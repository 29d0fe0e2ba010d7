package ctl

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/colisso/internal/common"
	"github.com/dmitrijs2005/colisso/internal/server/auth"
	"github.com/dmitrijs2005/colisso/internal/session"
	"github.com/spf13/cobra"
)

func (a *App) sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect access tokens",
	}

	var (
		token    string
		interval time.Duration
	)
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print the remaining lifetime of an access token until it expires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				return fmt.Errorf("--token is required")
			}
			claims, err := auth.ParseToken(token, []byte(a.cfg.SecretKey))
			if err != nil {
				if errors.Is(err, common.ErrTokenExpired) {
					fmt.Fprintln(a.out, "session expired")
				}
				return err
			}

			fmt.Fprintf(a.out, "user %s (%s), expires %s\n", claims.UserID, claims.Role, claims.Expiry().UTC().Format(time.RFC3339))
			for st := range session.Watch(cmd.Context(), claims.Expiry(), interval) {
				fmt.Fprintln(a.out, describe(st))
			}
			return nil
		},
	}
	watch.Flags().StringVar(&token, "token", "", "access token")
	watch.Flags().DurationVar(&interval, "interval", session.DefaultCheckInterval, "check interval")

	cmd.AddCommand(watch)
	return cmd
}

func describe(st session.Status) string {
	switch {
	case st.Expired:
		return "session expired"
	case st.Critical:
		return fmt.Sprintf("%ds left, critical", st.RemainingSeconds())
	case st.Warning:
		return fmt.Sprintf("%ds left, expiring soon", st.RemainingSeconds())
	}
	return fmt.Sprintf("%ds left", st.RemainingSeconds())
}
