package devfft

import (
	"errors"
	"sync"
)

var errReleaseUnderflow = errors.New("devfft: engine release without matching acquire")

// EngineRef reference-counts the process-wide setup and teardown of one
// Engine. The first acquisition runs Setup, the last release runs Teardown.
// Sequential setup/teardown cycles are fine; overlapping cycles on the same
// engine are prevented by the count.
//
// An EngineRef is safe for concurrent use: plans may be constructed and
// closed from multiple goroutines against the same ref.
type EngineRef struct {
	mu     sync.Mutex
	engine Engine
	count  int
}

// NewEngineRef returns a ref managing the given engine. Plans constructed
// against the ref share one setup/teardown cycle.
func NewEngineRef(engine Engine) *EngineRef {
	return &EngineRef{engine: engine}
}

// Engine returns the managed engine.
func (r *EngineRef) Engine() Engine { return r.engine }

// acquire increments the count, running Engine.Setup on the 0->1 transition.
// On setup failure the count is left unchanged.
func (r *EngineRef) acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		if err := checkStatus("engine setup", r.engine.Setup()); err != nil {
			return err
		}
	}
	r.count++
	return nil
}

// release decrements the count, running Engine.Teardown on the 1->0
// transition. The count never goes below zero.
func (r *EngineRef) release() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return errReleaseUnderflow
	}
	r.count--
	if r.count == 0 {
		return checkStatus("engine teardown", r.engine.Teardown())
	}
	return nil
}

// refCount reports the current count. Test hook.
func (r *EngineRef) refCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
