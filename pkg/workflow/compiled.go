package workflow

// CompiledGraph is an immutable, executable graph produced by Compile.
// It is safe for concurrent use: multiple Run calls may share one
// instance, each with its own state.
type CompiledGraph[S any] struct {
	nodes   map[string]NodeFunc[S]
	edges   map[string]string
	routers map[string]RouterFunc[S]
	entry   string
}

// EntryPoint returns the entry node ID.
func (cg *CompiledGraph[S]) EntryPoint() string {
	return cg.entry
}

// NodeIDs returns all node identifiers, in no particular order.
func (cg *CompiledGraph[S]) NodeIDs() []string {
	ids := make([]string, 0, len(cg.nodes))
	for id := range cg.nodes {
		ids = append(ids, id)
	}
	return ids
}

// HasNode reports whether a node with the given ID exists.
func (cg *CompiledGraph[S]) HasNode(id string) bool {
	_, ok := cg.nodes[id]
	return ok
}

// IsConditional reports whether the node routes through a RouterFunc.
func (cg *CompiledGraph[S]) IsConditional(id string) bool {
	_, ok := cg.routers[id]
	return ok
}

func (cg *CompiledGraph[S]) node(id string) (NodeFunc[S], bool) {
	fn, ok := cg.nodes[id]
	return fn, ok
}

func (cg *CompiledGraph[S]) router(id string) (RouterFunc[S], bool) {
	r, ok := cg.routers[id]
	return r, ok
}

func (cg *CompiledGraph[S]) edge(id string) (string, bool) {
	to, ok := cg.edges[id]
	return to, ok
}
