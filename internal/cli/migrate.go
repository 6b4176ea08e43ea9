package cli

import (
	"github.com/phrazzld/srsforge/internal/config"
	"github.com/phrazzld/srsforge/internal/platform/postgres"
	"github.com/spf13/cobra"
)

// NewMigrateCmd returns the command that applies the embedded migrations.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <up|down|status|version>",
		Short: "Apply or inspect database migrations",
		ValidArgs: []string{
			postgres.MigrateUp,
			postgres.MigrateDown,
			postgres.MigrateStatus,
			postgres.MigrateVersion,
		},
		Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(func(c *config.Config) []any { return []any{c.Database} })
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), cfg.Server.LogLevel)
			db, err := postgres.Open(cmd.Context(), cfg.Database.URL, 0, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return postgres.Migrate(db, args[0], log)
		},
	}
}
