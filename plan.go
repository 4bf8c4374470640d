package devfft

import "fmt"

// Plan owns one native transform plan bound to a fixed set of row-major
// dimension lengths, single-precision complex-interleaved samples, a
// direction, and a borrowed list of device queues.
//
// A plan is created by NewPlan and released by Close. It may be reused for
// any number of transforms, in-place or out-of-place, until closed.
type Plan struct {
	ref     *EngineRef
	queues  []Queue
	lengths []int
	dir     Direction
	handle  PlanHandle
	closed  bool
}

// NewPlan creates a plan for 1-3 positive dimension lengths on the given
// queues. The device context is taken from the first queue; all queues must
// share it (precondition, not verified). The first plan created against ref
// sets the engine up.
func NewPlan(ref *EngineRef, queues []Queue, lengths []int, dir Direction) (*Plan, error) {
	if len(lengths) < 1 || len(lengths) > 3 {
		return nil, fmt.Errorf("%w: need 1-3 dimension lengths, got %d", ErrConfiguration, len(lengths))
	}
	for i, n := range lengths {
		if n < 1 {
			return nil, fmt.Errorf("%w: dimension %d has length %d", ErrConfiguration, i, n)
		}
	}
	if len(queues) == 0 {
		return nil, fmt.Errorf("%w: empty queue list", ErrConfiguration)
	}
	if dir != Forward && dir != Inverse {
		return nil, fmt.Errorf("%w: direction %d", ErrConfiguration, dir)
	}

	if err := ref.acquire(); err != nil {
		return nil, err
	}

	engine := ref.engine
	dims := append([]int(nil), lengths...)

	handle, st := engine.CreatePlan(queues[0].Context(), dims)
	if err := checkStatus("create plan", st); err != nil {
		_ = ref.release()
		return nil, err
	}
	if err := checkStatus("set precision", engine.SetPrecision(handle, Single)); err != nil {
		_ = engine.DestroyPlan(handle)
		_ = ref.release()
		return nil, err
	}
	if err := checkStatus("set layout", engine.SetLayout(handle, ComplexInterleaved, ComplexInterleaved)); err != nil {
		_ = engine.DestroyPlan(handle)
		_ = ref.release()
		return nil, err
	}

	return &Plan{
		ref:     ref,
		queues:  queues,
		lengths: dims,
		dir:     dir,
		handle:  handle,
	}, nil
}

// NewPlan1D creates a one-dimensional plan of length n on a single queue.
func NewPlan1D(ref *EngineRef, queue Queue, n int, dir Direction) (*Plan, error) {
	return NewPlan(ref, []Queue{queue}, []int{n}, dir)
}

// Lengths returns a copy of the plan's dimension lengths.
func (p *Plan) Lengths() []int {
	return append([]int(nil), p.lengths...)
}

// Direction returns the plan's transform direction.
func (p *Plan) Direction() Direction { return p.dir }

// Transform pairs the plan with an input vector and returns the deferred
// transform as a single-use expression. No device work happens here.
func (p *Plan) Transform(input Vector) *Expr {
	return &Expr{plan: p, input: input}
}

// Close destroys the native plan and drops the plan's engine reference,
// tearing the engine down if this was the last outstanding plan. Close is
// idempotent; any other use of a closed plan fails with ErrPlanClosed.
func (p *Plan) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var firstErr error
	if p.handle != 0 {
		if err := checkStatus("destroy plan", p.ref.engine.DestroyPlan(p.handle)); err != nil {
			firstErr = err
		}
		p.handle = 0
	}
	if err := p.ref.release(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// execute resolves result placement and enqueues the transform. It returns
// as soon as the enqueue call returns; callers needing the result must
// synchronize on the queue themselves.
func (p *Plan) execute(input, output Vector) error {
	if p.closed {
		return ErrPlanClosed
	}
	// Split-buffer execution across queues is not implemented.
	if len(p.queues) != 1 {
		return fmt.Errorf("%w: execution across %d queues", ErrUnsupported, len(p.queues))
	}

	engine := p.ref.engine
	in := input.BufferAt(0)
	out := output.BufferAt(0)

	loc := OutOfPlace
	if in == out {
		loc = InPlace
	}
	if err := checkStatus("set result location", engine.SetResultLocation(p.handle, loc)); err != nil {
		return err
	}

	queues := make([]any, len(p.queues))
	for i, q := range p.queues {
		queues[i] = q.Native()
	}
	return checkStatus("enqueue transform", engine.EnqueueTransform(p.handle, p.dir, queues, []any{in}, []any{out}))
}
