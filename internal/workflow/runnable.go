package workflow

import (
	"context"
	"fmt"
	"log/slog"
)

// Observer is notified around every node execution.
type Observer interface {
	// NodeStarted is called before a node runs. The returned context is
	// passed to the node and to NodeFinished.
	NodeStarted(ctx context.Context, node string, s *State) context.Context
	// NodeFinished is called after a node returns.
	NodeFinished(ctx context.Context, node string, s *State, next string, err error)
}

// Option configures a Runnable.
type Option func(*Runnable)

// WithMaxSteps overrides DefaultMaxSteps. Non-positive values are ignored.
func WithMaxSteps(n int) Option {
	return func(r *Runnable) {
		if n > 0 {
			r.maxSteps = n
		}
	}
}

// WithObserver adds an observer. Observers are called in the order added.
func WithObserver(o Observer) Option {
	return func(r *Runnable) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// WithLogger sets the logger used for run progress.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runnable) {
		if l != nil {
			r.logger = l
		}
	}
}

// Runnable is a compiled graph.
type Runnable struct {
	nodes     map[string]Node
	edges     map[string]map[string]bool
	entry     string
	maxSteps  int
	observers []Observer
	logger    *slog.Logger
}

// Invoke runs the graph from the entry point. Node failures are recorded in
// the state and end the run through ErrorHandler with a nil error. The
// returned error is non-nil only when the run could not be carried out:
// unknown successors, the step limit, or context cancellation.
func (r *Runnable) Invoke(ctx context.Context, s *State) (*State, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil state", ErrInvalidGraph)
	}
	logger := r.logger.With(slog.String("run_id", s.RunID.String()))

	current := r.entry
	for step := 0; ; step++ {
		switch current {
		case End:
			logger.InfoContext(ctx, "workflow completed", "steps", step)
			return s, nil
		case ErrorHandler:
			handleError(s)
			logger.WarnContext(ctx, "workflow failed", "steps", step, "error", s.LastError())
			return s, nil
		}

		if step >= r.maxSteps {
			return s, fmt.Errorf("%w: %d steps, last node %q", ErrStepLimit, r.maxSteps, current)
		}
		if err := ctx.Err(); err != nil {
			return s, fmt.Errorf("workflow cancelled before %q: %w", current, err)
		}

		node, ok := r.nodes[current]
		if !ok {
			return s, fmt.Errorf("%w: %q", ErrUnknownNode, current)
		}

		s.Visited = append(s.Visited, current)
		logger.DebugContext(ctx, "running node", "node", current, "step", step)

		nodeCtx := ctx
		for _, o := range r.observers {
			nodeCtx = o.NodeStarted(nodeCtx, current, s)
		}

		next, err := runNode(nodeCtx, node, s)
		if err != nil {
			s.Errors = append(s.Errors, err.Error())
			next = ErrorHandler
		}

		for _, o := range r.observers {
			o.NodeFinished(nodeCtx, current, s, next, err)
		}

		if allowed, declared := r.edges[current]; declared && !allowed[next] {
			return s, fmt.Errorf("%w: %q routed to undeclared successor %q", ErrUnknownNode, current, next)
		}
		current = next
	}
}

func runNode(ctx context.Context, n Node, s *State) (next string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("node %q panicked: %v", n.Name(), p)
		}
	}()
	return n.Run(ctx, s)
}

// handleError is the built-in ErrorHandler node.
func handleError(s *State) {
	last := s.LastError()
	if last == "" {
		last = "unknown error"
	}
	s.Logf("Workflow failed: %s", last)
}
