package provision

import (
	"context"
	"sync"
)

// fakeRunner records commands and replies with scripted results.
type fakeRunner struct {
	mu       sync.Mutex
	commands []Command
	RunFn    func(cmd Command) (Result, error)
}

func (f *fakeRunner) Run(_ context.Context, cmd Command) (Result, error) {
	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	f.mu.Unlock()
	if f.RunFn != nil {
		return f.RunFn(cmd)
	}
	return Result{}, nil
}
