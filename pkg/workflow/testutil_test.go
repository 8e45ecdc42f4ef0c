package workflow

import (
	"context"
	"fmt"
)

// Counter is the shared test state.
type Counter struct {
	Value int      `json:"value"`
	Path  []string `json:"path"`
}

func increment(_ Context, s Counter) (Counter, error) {
	s.Value++
	return s, nil
}

// visit records the node ID in the state's path.
func visit(id string) NodeFunc[Counter] {
	return func(_ Context, s Counter) (Counter, error) {
		s.Path = append(s.Path, id)
		return s, nil
	}
}

func failWith(err error) NodeFunc[Counter] {
	return func(_ Context, s Counter) (Counter, error) {
		return s, err
	}
}

func testContext(opts ...ContextOption) Context {
	return NewContext(context.Background(), opts...)
}

// linearGraph builds a -> b -> END.
func linearGraph() *CompiledGraph[Counter] {
	cg, err := NewGraph[Counter]().
		AddNode("a", visit("a")).
		AddNode("b", visit("b")).
		SetEntry("a").
		AddEdge("a", "b").
		AddEdge("b", END).
		Compile()
	if err != nil {
		panic(fmt.Sprintf("linearGraph: %v", err))
	}
	return cg
}
