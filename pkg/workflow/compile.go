package workflow

import (
	"errors"
	"fmt"
)

// Compile validates the graph and returns an immutable CompiledGraph.
// Validation errors are joined so a broken graph reports every problem
// at once.
//
// Checks, in order: the entry point is set and exists, every edge
// endpoint references a known node or END, and END is reachable from the
// entry point.
func (g *Graph[S]) Compile() (*CompiledGraph[S], error) {
	var errs []error

	if g.entry == "" {
		errs = append(errs, ErrNoEntryPoint)
	} else if _, ok := g.nodes[g.entry]; !ok {
		errs = append(errs, fmt.Errorf("%w: %s", ErrEntryNotFound, g.entry))
	}

	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			if _, conditional := g.routers[from]; !conditional {
				errs = append(errs, fmt.Errorf("%w: edge source %q", ErrNodeNotFound, from))
			}
		}
		if to != END {
			if _, ok := g.nodes[to]; !ok {
				errs = append(errs, fmt.Errorf("%w: edge target %q", ErrNodeNotFound, to))
			}
		}
	}
	for from := range g.routers {
		if _, ok := g.nodes[from]; !ok {
			errs = append(errs, fmt.Errorf("%w: conditional edge source %q", ErrNodeNotFound, from))
		}
	}

	if g.entry != "" {
		if _, ok := g.nodes[g.entry]; ok && !g.endReachable() {
			errs = append(errs, ErrNoPathToEnd)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	nodes := make(map[string]NodeFunc[S], len(g.nodes))
	for id, fn := range g.nodes {
		nodes[id] = fn
	}
	edges := make(map[string]string, len(g.edges))
	for from, to := range g.edges {
		edges[from] = to
	}
	routers := make(map[string]RouterFunc[S], len(g.routers))
	for from, r := range g.routers {
		routers[from] = r
	}

	return &CompiledGraph[S]{
		nodes:   nodes,
		edges:   edges,
		routers: routers,
		entry:   g.entry,
	}, nil
}

// endReachable reports whether END can be reached from the entry point.
// Reachability propagates backwards from END; a node with a router is
// assumed able to reach END since routers may return it at runtime.
func (g *Graph[S]) endReachable() bool {
	reaches := map[string]bool{END: true}
	for from := range g.routers {
		reaches[from] = true
	}

	for changed := true; changed; {
		changed = false
		for from, to := range g.edges {
			if !reaches[from] && reaches[to] {
				reaches[from] = true
				changed = true
			}
		}
	}
	return reaches[g.entry]
}
