package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/config"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/pipeline"
	"github.com/phrazzld/srsforge/internal/srs"
	"github.com/phrazzld/srsforge/internal/workflow"
	"github.com/spf13/cobra"
)

// ErrRunFailed is returned when the pipeline ended in its error handler.
var ErrRunFailed = errors.New("pipeline run failed")

// NewRunCmd returns the command that runs the pipeline locally.
func NewRunCmd() *cobra.Command {
	var project, workspace string

	cmd := &cobra.Command{
		Use:   "run <srs-file>",
		Short: "Generate a project from an SRS document",
		Long: `Runs the full pipeline for a .docx, .md or .txt SRS document and
prints the run log. The project is written to <workspace>/<run id>/<project>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			// Text documents are read up front; a .docx is loaded by the
			// SRS parser node so its failure shows up in the run log.
			var content string
			if srs.IsDocx(file) {
				if _, err := os.Stat(file); err != nil {
					return fmt.Errorf("failed to read SRS document: %w", err)
				}
			} else {
				var err error
				if content, err = srs.Load(file); err != nil {
					return err
				}
			}

			cfg, err := loadConfig(func(c *config.Config) []any { return []any{c.LLM, c.Pipeline} })
			if err != nil {
				return err
			}
			if project != "" {
				cfg.Pipeline.ProjectName = project
			}
			if workspace != "" {
				cfg.Pipeline.WorkspaceDir = workspace
			}

			ctx := cmd.Context()
			log := newLogger(cmd.ErrOrStderr(), cfg.Server.LogLevel)
			deps, shutdown, err := pipeline.DepsFromConfig(ctx, cfg, nil, nil, log)
			if err != nil {
				return err
			}
			defer func() { _ = shutdown(ctx) }()

			executor := pipeline.NewExecutor(pipeline.ExecutorConfigFrom(cfg.Pipeline), deps)
			run := &domain.Run{
				ID:          uuid.New(),
				SRSName:     filepath.Base(file),
				SRSContent:  content,
				ProjectName: cfg.Pipeline.ProjectName,
			}
			dir, err := executor.ProjectDir(run)
			if err != nil {
				return err
			}

			var (
				state  *workflow.State
				runErr error
			)
			if srs.IsDocx(file) {
				state, runErr = executor.ExecuteFile(ctx, run, file)
			} else {
				state, runErr = executor.Execute(ctx, run)
			}
			out := cmd.OutOrStdout()
			if state != nil {
				for _, line := range state.Logs {
					fmt.Fprintln(out, line)
				}
				for _, line := range state.Errors {
					fmt.Fprintln(out, "error:", line)
				}
			}
			if runErr != nil {
				return fmt.Errorf("run %s failed: %w", run.ID, runErr)
			}
			if state != nil && state.Failed() {
				return fmt.Errorf("%w: %s", ErrRunFailed, state.LastError())
			}
			fmt.Fprintf(out, "project written to %s\n", dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project directory name (overrides pipeline.project_name)")
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (overrides pipeline.workspace_dir)")
	return cmd
}
