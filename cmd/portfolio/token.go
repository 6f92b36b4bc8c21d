package main

import (
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/authapp"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
)

var adminTokenCmd = &cobra.Command{
	Use:   "admin-token",
	Short: "Mint a bearer token for the admin routes",
	Long: `Mint an HS256 token signed with admin.secret. It is valid for
admin.token_ttl and is sent as "Authorization: Bearer <token>" to
POST /admin/snapshots/:name.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		authorizer := &authapp.Authorizer{
			Secret:         cfg.Admin.Secret,
			AccessTokenTTL: cfg.Admin.TokenTTL,
		}
		token, err := authorizer.GenerateAccessToken(tokenSubject)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	adminTokenCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "token subject")
	rootCmd.AddCommand(adminTokenCmd)
}
