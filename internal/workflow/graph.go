package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Reserved node names.
const (
	// End terminates a run successfully.
	End = "complete"
	// ErrorHandler terminates a run after a failure.
	ErrorHandler = "error_handler"
)

// DefaultMaxSteps bounds the number of nodes a single Invoke may run.
const DefaultMaxSteps = 32

var (
	// ErrInvalidGraph is returned by Compile for malformed graphs.
	ErrInvalidGraph = errors.New("invalid workflow graph")

	// ErrUnknownNode is returned when a node routes to a name that is not in the graph.
	ErrUnknownNode = errors.New("unknown workflow node")

	// ErrStepLimit is returned when a run exceeds its step budget.
	ErrStepLimit = errors.New("workflow step limit exceeded")
)

// Node is a single step of a workflow.
type Node interface {
	// Name identifies the node in the graph.
	Name() string
	// Run performs the step and returns the name of the next node. A
	// returned error routes the run to ErrorHandler.
	Run(ctx context.Context, s *State) (next string, err error)
}

type funcNode struct {
	name string
	fn   func(ctx context.Context, s *State) (string, error)
}

func (n funcNode) Name() string { return n.name }

func (n funcNode) Run(ctx context.Context, s *State) (string, error) { return n.fn(ctx, s) }

// NodeFunc adapts fn to a Node called name.
func NodeFunc(name string, fn func(ctx context.Context, s *State) (string, error)) Node {
	return funcNode{name: name, fn: fn}
}

// Graph collects nodes and edges before compilation.
type Graph struct {
	nodes map[string]Node
	order []string
	edges map[string][]string
	entry string
	errs  []error
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]Node),
		edges: make(map[string][]string),
	}
}

// AddNode registers n. Problems are reported by Compile.
func (g *Graph) AddNode(n Node) *Graph {
	name := n.Name()
	switch {
	case name == "":
		g.errs = append(g.errs, fmt.Errorf("%w: node with empty name", ErrInvalidGraph))
	case name == End || name == ErrorHandler:
		g.errs = append(g.errs, fmt.Errorf("%w: node name %q is reserved", ErrInvalidGraph, name))
	case g.nodes[name] != nil:
		g.errs = append(g.errs, fmt.Errorf("%w: duplicate node %q", ErrInvalidGraph, name))
	default:
		g.nodes[name] = n
		g.order = append(g.order, name)
	}
	return g
}

// AddEdge declares that from may route to to. Nodes without declared edges
// may route to any node; nodes with declared edges may only route to those
// successors or to ErrorHandler.
func (g *Graph) AddEdge(from, to string) *Graph {
	g.edges[from] = append(g.edges[from], to)
	return g
}

// SetEntryPoint names the first node of every run.
func (g *Graph) SetEntryPoint(name string) *Graph {
	g.entry = name
	return g
}

// Compile validates the graph and returns a Runnable.
func (g *Graph) Compile(opts ...Option) (*Runnable, error) {
	errs := append([]error(nil), g.errs...)

	if g.entry == "" {
		errs = append(errs, fmt.Errorf("%w: entry point not set", ErrInvalidGraph))
	} else if g.nodes[g.entry] == nil {
		errs = append(errs, fmt.Errorf("%w: entry point %q is not a node", ErrInvalidGraph, g.entry))
	}

	for from, tos := range g.edges {
		if g.nodes[from] == nil {
			errs = append(errs, fmt.Errorf("%w: edge from unknown node %q", ErrInvalidGraph, from))
		}
		for _, to := range tos {
			if to != End && to != ErrorHandler && g.nodes[to] == nil {
				errs = append(errs, fmt.Errorf("%w: edge %q -> %q references unknown node", ErrInvalidGraph, from, to))
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	r := &Runnable{
		nodes:    make(map[string]Node, len(g.nodes)),
		edges:    make(map[string]map[string]bool, len(g.edges)),
		entry:    g.entry,
		maxSteps: DefaultMaxSteps,
		logger:   slog.Default(),
	}
	for name, n := range g.nodes {
		r.nodes[name] = n
	}
	for from, tos := range g.edges {
		allowed := make(map[string]bool, len(tos)+1)
		for _, to := range tos {
			allowed[to] = true
		}
		allowed[ErrorHandler] = true
		r.edges[from] = allowed
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Nodes returns the node names in registration order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.order...)
}
