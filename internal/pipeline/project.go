package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Project-relative locations of a generated FastAPI project.
const (
	AppDir          = "app"
	RoutesDir       = "app/api/routes"
	ModelsDir       = "app/models"
	ServicesDir     = "app/services"
	TestsDir        = "tests"
	RouteTestsDir   = "tests/test_routes"
	ModelTestsDir   = "tests/test_models"
	DocsDir         = "docs"
	MainFile        = "app/main.py"
	RequirementsTxt = "requirements.txt"
	EnvFile         = ".env"
)

// ErrOutsideProject is returned for paths that escape the project root.
var ErrOutsideProject = errors.New("path is outside the project")

// Project is the directory a generated project is written to.
type Project struct {
	root string
}

// NewProject returns a Project rooted at root.
func NewProject(root string) Project {
	return Project{root: filepath.Clean(root)}
}

// Root returns the project directory.
func (p Project) Root() string { return p.root }

// Name returns the project directory's base name.
func (p Project) Name() string { return filepath.Base(p.root) }

// Path resolves a slash-separated project-relative path.
func (p Project) Path(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideProject, rel)
	}
	return filepath.Join(p.root, clean), nil
}

// Rel converts an absolute path inside the project to a slash-separated
// project-relative path.
func (p Project) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(p.root, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideProject, abs)
	}
	return filepath.ToSlash(rel), nil
}

// MkdirAll creates the given project-relative directories.
func (p Project) MkdirAll(dirs ...string) error {
	for _, d := range dirs {
		path, err := p.Path(d)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}
	return nil
}

// Write stores content at a project-relative path, creating parent
// directories as needed.
func (p Project) Write(rel, content string) error {
	path, err := p.Path(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

// Read returns the content of a project-relative file.
func (p Project) Read(rel string) (string, error) {
	path, err := p.Path(rel)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return string(data), nil
}
