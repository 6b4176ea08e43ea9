package provision

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/srsforge/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPython(r Runner) *Python {
	log, _ := logger.NewBufferLogger(slog.LevelDebug)
	p := NewPython(r, "python3", log)
	p.goos = "linux"
	return p
}

func TestVenvExecutable(t *testing.T) {
	assert.Equal(t, filepath.Join("proj", "venv", "bin", "pip"), VenvExecutable(filepath.Join("proj", "venv"), "pip", "linux"))
	assert.Equal(t, filepath.Join("proj", "venv", "Scripts", "pip.exe"), VenvExecutable(filepath.Join("proj", "venv"), "pip", "windows"))
}

func TestPythonSetup(t *testing.T) {
	r := &fakeRunner{}
	p := newTestPython(r)

	require.NoError(t, p.Setup(context.Background(), "proj"))

	require.Len(t, r.commands, 2)
	assert.Equal(t, "python3", r.commands[0].Name)
	assert.Equal(t, []string{"-m", "venv", filepath.Join("proj", "venv")}, r.commands[0].Args)

	assert.Equal(t, filepath.Join("proj", "venv", "bin", "pip"), r.commands[1].Name)
	assert.Equal(t, []string{"install", "-r", "requirements.txt"}, r.commands[1].Args)
	assert.Equal(t, "proj", r.commands[1].Dir)
}

func TestPythonSetupStopsOnVenvFailure(t *testing.T) {
	r := &fakeRunner{RunFn: func(Command) (Result, error) {
		return Result{ExitCode: 1, Stderr: "No module named venv"}, nil
	}}
	p := newTestPython(r)

	err := p.Setup(context.Background(), "proj")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.Contains(t, err.Error(), "No module named venv")
	assert.Len(t, r.commands, 1)
}

func TestPythonRunTests(t *testing.T) {
	t.Run("uses system interpreter without venv", func(t *testing.T) {
		r := &fakeRunner{RunFn: func(Command) (Result, error) {
			return Result{Stdout: "2 passed"}, nil
		}}
		p := newTestPython(r)
		dir := t.TempDir()

		res, err := p.RunTests(context.Background(), dir, filepath.Join(dir, "tests"))

		require.NoError(t, err)
		assert.True(t, res.Passed)
		assert.Equal(t, "2 passed", res.Output)
		require.Len(t, r.commands, 1)
		assert.Equal(t, "python3", r.commands[0].Name)
		assert.Equal(t, []string{"-m", "pytest", filepath.Join(dir, "tests"), "-v"}, r.commands[0].Args)
	})

	t.Run("uses venv interpreter when present", func(t *testing.T) {
		dir := t.TempDir()
		venvPython := filepath.Join(dir, "venv", "bin", "python")
		require.NoError(t, os.MkdirAll(filepath.Dir(venvPython), 0o755))
		require.NoError(t, os.WriteFile(venvPython, nil, 0o755))

		r := &fakeRunner{RunFn: func(Command) (Result, error) {
			return Result{Stdout: "FAILED tests/test_auth.py::test_login", Stderr: "1 failed", ExitCode: 1}, nil
		}}
		p := newTestPython(r)

		res, err := p.RunTests(context.Background(), dir, "tests")

		require.NoError(t, err)
		assert.False(t, res.Passed)
		assert.Equal(t, "FAILED tests/test_auth.py::test_login\n1 failed", res.Output)
		assert.Equal(t, venvPython, r.commands[0].Name)
	})

	t.Run("runner error", func(t *testing.T) {
		r := &fakeRunner{RunFn: func(Command) (Result, error) {
			return Result{}, errors.New("executable not found")
		}}
		_, err := newTestPython(r).RunTests(context.Background(), t.TempDir(), "tests")
		assert.ErrorContains(t, err, "executable not found")
	})
}

func TestExecRunner(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires /bin/sh")
	}
	r := ExecRunner{}

	res, err := r.Run(context.Background(), Command{Name: "/bin/sh", Args: []string{"-c", "echo out; echo err >&2; exit 3"}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)

	_, err = r.Run(context.Background(), Command{Name: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "python -m venv venv", Command{Name: "python", Args: []string{"-m", "venv", "venv"}}.String())
}
