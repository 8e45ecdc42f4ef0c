package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGraph(t *testing.T) {
	g := NewGraph[Counter]()
	assert.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.NotNil(t, g.edges)
	assert.NotNil(t, g.routers)
	assert.Empty(t, g.entry)
}

func TestGraph_AddNode(t *testing.T) {
	g := NewGraph[Counter]().
		AddNode("a", increment).
		AddNode("b", increment)

	assert.Len(t, g.nodes, 2)
	assert.Contains(t, g.nodes, "a")
	assert.Contains(t, g.nodes, "b")
}

func TestGraph_AddNode_Chaining(t *testing.T) {
	g := NewGraph[Counter]()
	result := g.AddNode("a", increment)
	assert.Same(t, g, result)
}

func TestGraph_AddNode_EmptyID_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "workflow: node ID cannot be empty", func() {
		NewGraph[Counter]().AddNode("", increment)
	})
}

func TestGraph_AddNode_ReservedID_Panics(t *testing.T) {
	for _, id := range []string{"END", "end", "End", "__end__"} {
		t.Run(id, func(t *testing.T) {
			assert.PanicsWithValue(t, "workflow: node ID cannot be the reserved END marker", func() {
				NewGraph[Counter]().AddNode(id, increment)
			})
		})
	}
}

func TestGraph_AddNode_WhitespaceID_Panics(t *testing.T) {
	for _, id := range []string{"node a", "node\ta", "node\na", " node", "node "} {
		assert.PanicsWithValue(t, "workflow: node ID cannot contain whitespace", func() {
			NewGraph[Counter]().AddNode(id, increment)
		})
	}
}

func TestGraph_AddNode_NilFunc_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "workflow: node function cannot be nil", func() {
		NewGraph[Counter]().AddNode("a", nil)
	})
}

func TestGraph_AddNode_DuplicateID_Panics(t *testing.T) {
	assert.PanicsWithValue(t, `workflow: duplicate node ID "a"`, func() {
		NewGraph[Counter]().
			AddNode("a", increment).
			AddNode("a", increment)
	})
}

func TestGraph_AddEdge_DuplicateSource_Panics(t *testing.T) {
	assert.PanicsWithValue(t, `workflow: node "a" already has an outgoing edge`, func() {
		NewGraph[Counter]().
			AddNode("a", increment).
			AddEdge("a", END).
			AddEdge("a", END)
	})
}

func TestGraph_AddConditionalEdge_NilRouter_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "workflow: router function cannot be nil", func() {
		NewGraph[Counter]().
			AddNode("a", increment).
			AddConditionalEdge("a", nil)
	})
}

func TestGraph_SetEntry_Chaining(t *testing.T) {
	g := NewGraph[Counter]().AddNode("a", increment)
	assert.Same(t, g, g.SetEntry("a"))
	assert.Equal(t, "a", g.entry)
}
