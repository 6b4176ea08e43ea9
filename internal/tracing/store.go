package tracing

import (
	"context"
	"log/slog"

	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/store"
)

// StoreRecorder persists trace runs through a store.TraceStore.
type StoreRecorder struct {
	store  store.TraceStore
	logger *slog.Logger
}

// NewStoreRecorder creates a StoreRecorder.
func NewStoreRecorder(s store.TraceStore, logger *slog.Logger) *StoreRecorder {
	return &StoreRecorder{
		store:  s,
		logger: logger.With("component", "trace_store_recorder"),
	}
}

// StartRun implements Recorder.
func (r *StoreRecorder) StartRun(ctx context.Context, name string, inputs map[string]any) (*domain.TraceRun, context.Context) {
	tr, ctx := begin(ctx, name, inputs)
	return tr, r.attach(ctx, tr)
}

// EndRun implements Recorder.
func (r *StoreRecorder) EndRun(ctx context.Context, tr *domain.TraceRun, outputs map[string]any, err error) {
	if tr == nil {
		return
	}
	tr.End(outputs, err)
	r.finish(ctx, tr)
}

func (r *StoreRecorder) attach(ctx context.Context, tr *domain.TraceRun) context.Context {
	if err := r.store.StartTraceRun(ctx, tr); err != nil {
		r.logger.WarnContext(ctx, "failed to record trace run start",
			"trace_run_id", tr.ID, "name", tr.Name, "error", err)
	}
	return ctx
}

func (r *StoreRecorder) finish(ctx context.Context, tr *domain.TraceRun) {
	// The pipeline context may already be cancelled; the record still needs
	// to be closed.
	ctx = context.WithoutCancel(ctx)
	if err := r.store.EndTraceRun(ctx, tr); err != nil {
		r.logger.WarnContext(ctx, "failed to record trace run end",
			"trace_run_id", tr.ID, "name", tr.Name, "error", err)
	}
}

var (
	_ Recorder = (*StoreRecorder)(nil)
	_ sink     = (*StoreRecorder)(nil)
)
