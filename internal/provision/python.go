package provision

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
)

// VenvDirName is the name of the virtual environment directory created
// inside a generated project.
const VenvDirName = "venv"

// RequirementsFile is the manifest installed into the virtual environment.
const RequirementsFile = "requirements.txt"

// Python manages a project's virtual environment and test runs.
type Python struct {
	runner Runner
	bin    string
	goos   string
	logger *slog.Logger
}

// NewPython creates a Python helper using bin (e.g. "python" or "python3")
// to create virtual environments.
func NewPython(runner Runner, bin string, logger *slog.Logger) *Python {
	if bin == "" {
		bin = "python"
	}
	return &Python{
		runner: runner,
		bin:    bin,
		goos:   runtime.GOOS,
		logger: logger.With("component", "python"),
	}
}

// VenvExecutable returns the path of an executable inside venv, using the
// Scripts\*.exe layout on Windows and bin/* elsewhere.
func VenvExecutable(venv, name, goos string) string {
	if goos == "windows" {
		return filepath.Join(venv, "Scripts", name+".exe")
	}
	return filepath.Join(venv, "bin", name)
}

// CreateVenv runs `python -m venv <projectDir>/venv` and returns the
// virtual environment directory.
func (p *Python) CreateVenv(ctx context.Context, projectDir string) (string, error) {
	venv := filepath.Join(projectDir, VenvDirName)
	cmd := Command{Name: p.bin, Args: []string{"-m", "venv", venv}}

	p.logger.InfoContext(ctx, "creating virtual environment", "path", venv)
	if _, err := check(ctx, p.runner, cmd); err != nil {
		return "", fmt.Errorf("failed to create virtual environment: %w", err)
	}
	return venv, nil
}

// InstallRequirements installs the project's requirements.txt with the
// virtual environment's pip.
func (p *Python) InstallRequirements(ctx context.Context, projectDir string) error {
	pip := VenvExecutable(filepath.Join(projectDir, VenvDirName), "pip", p.goos)
	cmd := Command{
		Name: pip,
		Args: []string{"install", "-r", RequirementsFile},
		Dir:  projectDir,
	}

	p.logger.InfoContext(ctx, "installing requirements", "pip", pip)
	if _, err := check(ctx, p.runner, cmd); err != nil {
		return fmt.Errorf("failed to install requirements: %w", err)
	}
	return nil
}

// Setup creates the virtual environment and installs the requirements.
func (p *Python) Setup(ctx context.Context, projectDir string) error {
	if _, err := p.CreateVenv(ctx, projectDir); err != nil {
		return err
	}
	return p.InstallRequirements(ctx, projectDir)
}

// TestResult is the outcome of a pytest run.
type TestResult struct {
	Passed bool
	Output string
}

// RunTests runs `python -m pytest <testsDir> -v` from projectDir, using the
// project's virtual environment interpreter when one exists.
func (p *Python) RunTests(ctx context.Context, projectDir, testsDir string) (TestResult, error) {
	cmd := Command{
		Name: p.interpreter(projectDir),
		Args: []string{"-m", "pytest", testsDir, "-v"},
		Dir:  projectDir,
	}

	p.logger.DebugContext(ctx, "running tests", "command", cmd.String())
	res, err := p.runner.Run(ctx, cmd)
	if err != nil {
		return TestResult{}, fmt.Errorf("failed to run tests: %w", err)
	}
	return TestResult{Passed: res.ExitCode == 0, Output: res.Output()}, nil
}

func (p *Python) interpreter(projectDir string) string {
	venvPython := VenvExecutable(filepath.Join(projectDir, VenvDirName), "python", p.goos)
	if _, err := os.Stat(venvPython); err == nil {
		return venvPython
	}
	return p.bin
}
