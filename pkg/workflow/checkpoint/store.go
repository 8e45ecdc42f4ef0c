// Package checkpoint persists workflow state between steps. The engine
// saves a checkpoint after every node; applications also use the store
// directly for conversation session persistence.
package checkpoint

import (
	"errors"
	"time"
)

// Store persists checkpoints keyed by (runID, nodeID).
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a checkpoint, overwriting any existing one for the
	// same (runID, nodeID) pair.
	Save(runID, nodeID string, data []byte) error

	// Load retrieves a checkpoint. Returns ErrNotFound if absent.
	Load(runID, nodeID string) ([]byte, error)

	// List returns checkpoint metadata for a run ordered by sequence.
	// A run with no checkpoints yields an empty slice, not an error.
	List(runID string) ([]Info, error)

	// Delete removes one checkpoint; nil if it does not exist.
	Delete(runID, nodeID string) error

	// DeleteRun removes every checkpoint of a run; nil if none exist.
	DeleteRun(runID string) error

	// Close releases underlying resources.
	Close() error
}

// Info is checkpoint metadata, available without decoding the state.
type Info struct {
	RunID     string
	NodeID    string
	Sequence  int
	Timestamp time.Time
	Size      int64
}

var (
	// ErrNotFound indicates the requested checkpoint does not exist.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")
)
