// Command issue-token prints a bearer token for the review history API,
// signed with JWT_SECRET from the same configuration the server reads.
//
//	go run ./cmd/issue-token --sub reviewer@example.com --name "Jordan Lee"
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/artem13815/brandreview/pkg/config"
	"github.com/artem13815/brandreview/pkg/security/jwt"
)

func main() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(load func() config.Config) *cobra.Command {
	var (
		subject string
		name    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:          "issue-token",
		Short:        "Issue a reviewer bearer token for /api/v1/reviews",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := load()
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			if ttl <= 0 {
				ttl = time.Duration(cfg.JWTTTLMinutes) * time.Minute
			}
			token, err := jwt.NewGenerator(cfg.JWTSecret, cfg.JWTIssuer, ttl).Generate(subject, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "token subject (reviewer id or e-mail)")
	cmd.Flags().StringVar(&name, "name", "", "display name stored in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default JWT_TTL_MINUTES)")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}
