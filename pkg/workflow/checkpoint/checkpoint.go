package checkpoint

import (
	"encoding/json"
	"time"
)

// Version is the current checkpoint envelope version. Bump on breaking
// changes to the structure.
const Version = 1

// Checkpoint is a persisted snapshot of execution state plus the routing
// decision taken after it, so a resumed run knows where to continue.
type Checkpoint struct {
	Version   int       `json:"version"`
	RunID     string    `json:"run_id"`
	NodeID    string    `json:"node_id"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`

	State    json.RawMessage `json:"state"`
	NextNode string          `json:"next_node"`

	PrevNodeID string `json:"prev_node_id,omitempty"`
}

// New creates a checkpoint. State must already be JSON-encoded.
func New(runID, nodeID string, sequence int, state []byte, nextNode string) *Checkpoint {
	return &Checkpoint{
		Version:   Version,
		RunID:     runID,
		NodeID:    nodeID,
		Sequence:  sequence,
		Timestamp: time.Now().UTC(),
		State:     state,
		NextNode:  nextNode,
	}
}

// WithPrevNode records the preceding node for debugging.
func (c *Checkpoint) WithPrevNode(prev string) *Checkpoint {
	c.PrevNodeID = prev
	return c
}

// Marshal serializes the checkpoint to JSON.
func (c *Checkpoint) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Unmarshal decodes a checkpoint from JSON.
func Unmarshal(data []byte) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
