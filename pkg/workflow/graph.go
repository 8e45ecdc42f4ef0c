package workflow

import (
	"fmt"
	"strings"
)

// Graph is a mutable builder for execution graphs. Construct it in a
// single goroutine, chaining AddNode, AddEdge, AddConditionalEdge and
// SetEntry, then call Compile to obtain an immutable CompiledGraph that
// is safe to share.
//
//	g := workflow.NewGraph[State]().
//	    AddNode("classify", classify).
//	    AddConditionalEdge("classify", route).
//	    AddNode("answer", answer).
//	    AddEdge("answer", workflow.END).
//	    SetEntry("classify")
type Graph[S any] struct {
	nodes   map[string]NodeFunc[S]
	edges   map[string]string
	routers map[string]RouterFunc[S]
	entry   string
}

// NewGraph creates an empty graph builder for state type S.
func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{
		nodes:   make(map[string]NodeFunc[S]),
		edges:   make(map[string]string),
		routers: make(map[string]RouterFunc[S]),
	}
}

// AddNode registers a named node. Panics on an empty, reserved, or
// duplicate ID, on IDs containing whitespace, and on a nil function —
// these are programming errors, not runtime conditions.
func (g *Graph[S]) AddNode(id string, fn NodeFunc[S]) *Graph[S] {
	if id == "" {
		panic("workflow: node ID cannot be empty")
	}
	if lower := strings.ToLower(id); lower == "end" || lower == END {
		panic("workflow: node ID cannot be the reserved END marker")
	}
	if strings.ContainsAny(id, " \t\n\r") {
		panic("workflow: node ID cannot contain whitespace")
	}
	if fn == nil {
		panic("workflow: node function cannot be nil")
	}
	if _, exists := g.nodes[id]; exists {
		panic(fmt.Sprintf("workflow: duplicate node ID %q", id))
	}
	g.nodes[id] = fn
	return g
}

// AddEdge adds an unconditional edge. The target may be a node ID or END.
// Each node has at most one outgoing unconditional edge; fan-out across
// parallel branches goes through FanOut, not through multiple edges.
// Endpoint validation happens at Compile time.
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	if _, exists := g.edges[from]; exists {
		panic(fmt.Sprintf("workflow: node %q already has an outgoing edge", from))
	}
	g.edges[from] = to
	return g
}

// AddConditionalEdge attaches a router that picks the next node at
// runtime. A conditional edge takes precedence over an unconditional one
// on the same node.
func (g *Graph[S]) AddConditionalEdge(from string, router RouterFunc[S]) *Graph[S] {
	if router == nil {
		panic("workflow: router function cannot be nil")
	}
	g.routers[from] = router
	return g
}

// SetEntry designates the entry node. Must be called before Compile.
func (g *Graph[S]) SetEntry(id string) *Graph[S] {
	g.entry = id
	return g
}
