package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dimasma0305/edmcli/internal/log"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the admin account the configuration signs in as",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, cancel := commandContext()
		defer cancel()
		s := mustSession(ctx)

		user, err := s.client.CurrentUser(ctx)
		if err != nil {
			log.Fatal("Failed to fetch the current user: %v", err)
		}
		log.Info("Signed in to %s as %s", s.conf.Url, user.Username)
		if user.RealName != "" {
			log.InfoH2("Name:  %s", user.RealName)
		}
		if len(user.Roles) > 0 {
			log.InfoH2("Roles: %s", strings.Join(user.Roles, ", "))
		}
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
