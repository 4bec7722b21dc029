package executor

import (
	"context"
	"sync"
)

// ManualBackend records dispatches without running anything. The
// operator runs agents by hand and submits result envelopes through the
// result command, which re-enters the orchestrator as an agent_result
// intent. Execute never produces a result envelope itself.
type ManualBackend struct {
	mu         sync.Mutex
	dispatched []TaskEnvelope
}

// NewManualBackend builds the backend.
func NewManualBackend() *ManualBackend {
	return &ManualBackend{}
}

func (b *ManualBackend) Name() string { return string(BackendManual) }

// Execute records the envelope and returns ErrNoResult. The task stays
// in_progress until a result arrives out of band.
func (b *ManualBackend) Execute(ctx context.Context, env TaskEnvelope) (ResultEnvelope, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dispatched = append(b.dispatched, env)
	return ResultEnvelope{}, ErrNoResult
}

// Dispatched returns a copy of the envelopes recorded so far, in
// dispatch order.
func (b *ManualBackend) Dispatched() []TaskEnvelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]TaskEnvelope(nil), b.dispatched...)
}
