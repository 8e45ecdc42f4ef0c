package workflow

import (
	"errors"
	"sync"
	"time"
)

// Branch is one independent unit of work for FanOut: a compiled
// sub-graph run with its own private initial state.
type Branch[S any] struct {
	// ID names the branch in logs and errors. Must be unique per call.
	ID string

	// State is the branch's initial state. Branches never share state;
	// isolation is the concurrency-safety strategy, so no locking is
	// needed inside node functions.
	State S
}

// BranchResult is the outcome of one branch.
type BranchResult[S any] struct {
	ID       string
	State    S
	Err      error
	Duration time.Duration
}

// FanOutConfig configures parallel branch execution.
type FanOutConfig struct {
	// MaxConcurrency limits branches running at once; 0 means unlimited.
	MaxConcurrency int
}

// FanOutOption configures a FanOut call.
type FanOutOption func(*FanOutConfig)

// WithMaxConcurrency bounds the number of branches executing in parallel.
func WithMaxConcurrency(n int) FanOutOption {
	return func(c *FanOutConfig) { c.MaxConcurrency = n }
}

// FanOut runs the compiled sub-graph once per branch, concurrently, and
// joins all branches before returning. Results are in completion order,
// which is non-deterministic; callers that need a stable order must sort
// by a key carried in the branch state.
//
// All branches run to completion even when some fail. The returned error
// joins the per-branch failures; successful branch states are still
// available in the results.
func FanOut[S any](ctx Context, sub *CompiledGraph[S], branches []Branch[S], opts ...FanOutOption) ([]BranchResult[S], error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	cfg := FanOutConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var sem chan struct{}
	if cfg.MaxConcurrency > 0 {
		sem = make(chan struct{}, cfg.MaxConcurrency)
	}

	results := make(chan BranchResult[S], len(branches))
	var wg sync.WaitGroup

	for _, b := range branches {
		wg.Add(1)
		go func(b Branch[S]) {
			defer wg.Done()

			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					results <- BranchResult[S]{ID: b.ID, State: b.State, Err: ctx.Err()}
					return
				}
			}

			branchCtx := ctx
			if ec, ok := ctx.(*executionContext); ok {
				branchCtx = ec.withBranch(b.ID)
			}

			start := time.Now()
			state, err := sub.Run(branchCtx, b.State)
			if err != nil {
				err = &BranchError{Branch: b.ID, Err: err}
			}
			results <- BranchResult[S]{ID: b.ID, State: state, Err: err, Duration: time.Since(start)}
		}(b)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]BranchResult[S], 0, len(branches))
	var errs []error
	for r := range results {
		collected = append(collected, r)
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}

	ctx.Logger().Info("fan-out completed",
		"branches", len(branches),
		"failed", len(errs))

	return collected, errors.Join(errs...)
}
