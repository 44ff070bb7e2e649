package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zklr-network/zklr/api"
)

const flagTTL = "ttl"

// TokenCmd returns the command issuing API bearer tokens. The daemon must be
// configured with the same api.jwt-secret.
func TokenCmd(cctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token [address]",
		Short: "Issue an API token for an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := cctx.config.API.JWTSecret
			if secret == "" {
				return errors.New("api.jwt-secret is not configured")
			}
			ttl, _ := cmd.Flags().GetDuration(flagTTL)

			token, err := api.NewAuthService([]byte(secret)).GenerateToken(args[0], ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().Duration(flagTTL, 24*time.Hour, "token lifetime")
	cmd.Flags().String(flagAPIJWTSecret, "", "HMAC secret for API tokens")
	return cmd
}
