// Package cli implements the forge command line: local pipeline runs,
// manifest checks, client registration and database migrations.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/srsforge/internal/config"
	"github.com/phrazzld/srsforge/internal/platform/logger"
	"github.com/spf13/cobra"
)

// NewRootCmd returns the forge command tree. version is printed by
// `forge version`.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "forge",
		Short:         "Generate FastAPI projects from SRS documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(NewRunCmd())
	root.AddCommand(NewManifestCmd())
	root.AddCommand(NewClientCmd())
	root.AddCommand(NewMigrateCmd())
	root.AddCommand(NewVersionCmd(version))
	return root
}

// NewVersionCmd returns the version command.
func NewVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the forge version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "forge %s\n", version)
		},
	}
}

// loadConfig reads configuration and validates only the given sections.
func loadConfig(sections func(*config.Config) []any) (*config.Config, error) {
	cfg, err := config.LoadUnvalidated()
	if err != nil {
		return nil, err
	}
	for _, s := range sections(cfg) {
		if err := config.ValidateSection(s); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newLogger writes text logs to w at the configured level.
func newLogger(w io.Writer, level string) *slog.Logger {
	lvl, _ := logger.ParseLevel(level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
