package cli

import (
	"fmt"

	"github.com/phrazzld/srsforge/internal/config"
	"github.com/phrazzld/srsforge/internal/platform/postgres"
	"github.com/phrazzld/srsforge/internal/service"
	"github.com/spf13/cobra"
)

// NewClientCmd returns the API client command group.
func NewClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage API clients",
	}
	cmd.AddCommand(newClientCreateCmd())
	return cmd
}

func newClientCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Register an API client and print its secret",
		Long: `Registers a client allowed to request access tokens. The secret is
printed once; only its bcrypt hash is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(func(c *config.Config) []any { return []any{c.Database} })
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			log := newLogger(cmd.ErrOrStderr(), cfg.Server.LogLevel)

			db, err := postgres.Open(ctx, cfg.Database.URL, 0, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			svc, err := service.NewClientService(postgres.NewPostgresClientStore(db, log), 0, log)
			if err != nil {
				return err
			}
			client, secret, err := svc.CreateClient(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "client_id:     %s\n", client.ID)
			fmt.Fprintf(out, "client_secret: %s\n", secret)
			fmt.Fprintln(out, "Store the secret now; it cannot be shown again.")
			return nil
		},
	}
}
