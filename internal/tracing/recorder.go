package tracing

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
)

// Recorder opens and closes trace runs.
type Recorder interface {
	// StartRun opens a trace run named name. The returned context carries the
	// new trace run so that runs started from it become its children.
	StartRun(ctx context.Context, name string, inputs map[string]any) (*domain.TraceRun, context.Context)

	// EndRun closes tr with the given outputs and error.
	EndRun(ctx context.Context, tr *domain.TraceRun, outputs map[string]any, err error)
}

// sink is implemented by recorders that can attach to a trace run created
// elsewhere, which lets Multi share one trace run between them.
type sink interface {
	attach(ctx context.Context, tr *domain.TraceRun) context.Context
	finish(ctx context.Context, tr *domain.TraceRun)
}

type ctxKey int

const (
	traceRunKey ctxKey = iota
	runIDKey
)

// WithRunID returns a context whose trace runs belong to the given pipeline run.
func WithRunID(ctx context.Context, runID uuid.UUID) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunID returns the pipeline run ID carried by ctx, or uuid.Nil.
func RunID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(runIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// FromContext returns the innermost open trace run carried by ctx, if any.
func FromContext(ctx context.Context) (*domain.TraceRun, bool) {
	tr, ok := ctx.Value(traceRunKey).(*domain.TraceRun)
	return tr, ok && tr != nil
}

// begin creates a trace run as a child of the one carried by ctx and
// returns a context carrying the new run.
func begin(ctx context.Context, name string, inputs map[string]any) (*domain.TraceRun, context.Context) {
	parent, _ := FromContext(ctx)
	runID := RunID(ctx)
	if runID == uuid.Nil && parent != nil {
		runID = parent.RunID
	}

	tr, err := domain.NewTraceRun(runID, parent, name, inputs)
	if err != nil {
		// Only an empty name fails validation.
		tr, _ = domain.NewTraceRun(runID, parent, "unnamed", inputs)
	}
	return tr, context.WithValue(ctx, traceRunKey, tr)
}

// Nop is a Recorder that only tracks nesting.
type Nop struct{}

// StartRun implements Recorder.
func (Nop) StartRun(ctx context.Context, name string, inputs map[string]any) (*domain.TraceRun, context.Context) {
	return begin(ctx, name, inputs)
}

// EndRun implements Recorder.
func (Nop) EndRun(_ context.Context, tr *domain.TraceRun, outputs map[string]any, err error) {
	if tr != nil {
		tr.End(outputs, err)
	}
}

func (Nop) attach(ctx context.Context, _ *domain.TraceRun) context.Context { return ctx }
func (Nop) finish(context.Context, *domain.TraceRun)                       {}

// multi fans trace runs out to several recorders.
type multi struct {
	sinks   []sink
	foreign []Recorder

	mu    sync.Mutex
	peers map[uuid.UUID][]*domain.TraceRun
}

// Multi returns a Recorder that records to every given recorder. Nil
// recorders are skipped; with none left it behaves like Nop.
func Multi(recorders ...Recorder) Recorder {
	m := &multi{peers: make(map[uuid.UUID][]*domain.TraceRun)}
	for _, r := range recorders {
		switch r := r.(type) {
		case nil:
		case sink:
			m.sinks = append(m.sinks, r)
		default:
			m.foreign = append(m.foreign, r)
		}
	}
	if len(m.sinks) == 0 && len(m.foreign) == 0 {
		return Nop{}
	}
	return m
}

func (m *multi) StartRun(ctx context.Context, name string, inputs map[string]any) (*domain.TraceRun, context.Context) {
	tr, ctx := begin(ctx, name, inputs)
	ctx = m.attach(ctx, tr)
	return tr, ctx
}

func (m *multi) EndRun(ctx context.Context, tr *domain.TraceRun, outputs map[string]any, err error) {
	if tr == nil {
		return
	}
	tr.End(outputs, err)
	m.finish(ctx, tr)

	m.mu.Lock()
	peers := m.peers[tr.ID]
	delete(m.peers, tr.ID)
	m.mu.Unlock()

	for i, r := range m.foreign {
		if i < len(peers) {
			r.EndRun(ctx, peers[i], outputs, err)
		}
	}
}

func (m *multi) attach(ctx context.Context, tr *domain.TraceRun) context.Context {
	for _, s := range m.sinks {
		ctx = s.attach(ctx, tr)
	}
	if len(m.foreign) == 0 {
		return ctx
	}

	peers := make([]*domain.TraceRun, 0, len(m.foreign))
	for _, r := range m.foreign {
		peer, _ := r.StartRun(ctx, tr.Name, tr.Inputs)
		peers = append(peers, peer)
	}
	m.mu.Lock()
	m.peers[tr.ID] = peers
	m.mu.Unlock()
	return ctx
}

func (m *multi) finish(ctx context.Context, tr *domain.TraceRun) {
	for _, s := range m.sinks {
		s.finish(ctx, tr)
	}
}

var (
	_ Recorder = Nop{}
	_ Recorder = (*multi)(nil)
	_ sink     = (*multi)(nil)
)
