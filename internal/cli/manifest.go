package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/phrazzld/srsforge/internal/manifest"
	"github.com/spf13/cobra"
)

// ErrInvalidManifest is returned by `manifest check` for manifests with
// malformed lines or conflicting pins.
var ErrInvalidManifest = errors.New("manifest is invalid")

// NewManifestCmd returns the manifest command group.
func NewManifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Check or create requirements manifests",
	}
	cmd.AddCommand(newManifestCheckCmd(), newManifestInitCmd())
	return cmd
}

func newManifestCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Report malformed lines and conflicting pins",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			out := cmd.OutOrStdout()
			m, err := manifest.Parse(f)
			if err != nil {
				var parseErr *manifest.ParseError
				if !errors.As(err, &parseErr) {
					return err
				}
				for _, l := range parseErr.Lines {
					fmt.Fprintf(out, "line %d: invalid requirement %q\n", l.Line, l.Text)
				}
				return ErrInvalidManifest
			}

			conflicts := m.Conflicts()
			for _, c := range conflicts {
				fmt.Fprintln(out, c.String())
			}
			if len(conflicts) > 0 {
				return ErrInvalidManifest
			}
			fmt.Fprintf(out, "%s: %d requirements, no conflicts\n", args[0], len(m.Requirements()))
			return nil
		},
	}
}

func newManifestInitCmd() *cobra.Command {
	var (
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default FastAPI requirements manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", output)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}
			if err := os.WriteFile(output, manifest.Render(manifest.Default()), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "requirements.txt", "File to write")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
