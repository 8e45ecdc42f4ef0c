package workflow

// END is the terminal node identifier. Use it as an edge target to mark
// the end of a flow.
const END = "__end__"

// NodeFunc is the signature of every workflow step. A node receives the
// execution context and the current state and returns the updated state.
//
// State is passed by value; nodes must return the new state rather than
// rely on pointer mutation.
type NodeFunc[S any] func(ctx Context, state S) (S, error)

// RouterFunc selects the next node for a conditional edge based on the
// current state. It must return a node ID registered on the graph, or END.
type RouterFunc[S any] func(ctx Context, state S) string
