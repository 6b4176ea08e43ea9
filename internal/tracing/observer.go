package tracing

import (
	"context"

	"github.com/phrazzld/srsforge/internal/workflow"
)

// NodeObserver traces every workflow node as a child of the trace run
// carried by the invoking context.
type NodeObserver struct {
	recorder Recorder
}

// NewNodeObserver returns a workflow.Observer recording through r.
func NewNodeObserver(r Recorder) *NodeObserver {
	if r == nil {
		r = Nop{}
	}
	return &NodeObserver{recorder: r}
}

// NodeStarted implements workflow.Observer.
func (o *NodeObserver) NodeStarted(ctx context.Context, node string, s *workflow.State) context.Context {
	if RunID(ctx) != s.RunID {
		ctx = WithRunID(ctx, s.RunID)
	}
	_, ctx = o.recorder.StartRun(ctx, node, map[string]any{
		"step":        len(s.Visited),
		"errors_seen": len(s.Errors),
	})
	return ctx
}

// NodeFinished implements workflow.Observer.
func (o *NodeObserver) NodeFinished(ctx context.Context, node string, s *workflow.State, next string, err error) {
	tr, ok := FromContext(ctx)
	if !ok || tr.Name != node {
		return
	}
	outputs := map[string]any{
		"next":            next,
		"generated_files": len(s.GeneratedCode),
	}
	if last := s.LastError(); last != "" && next == workflow.ErrorHandler {
		outputs["last_error"] = last
	}
	o.recorder.EndRun(ctx, tr, outputs, err)
}

var _ workflow.Observer = (*NodeObserver)(nil)
