package devfft

import (
	"fmt"
	"sync"

	"github.com/cwbudde/devfft/internal/hostfft"
)

// Host engine status codes. Zero is StatusSuccess.
const (
	hostStatusNotReady Status = iota + 1
	hostStatusInvalidPlan
	hostStatusInvalidArgument
	hostStatusBadPrecision
	hostStatusBadLayout
	hostStatusBadPlacement
)

// HostFaults forces non-success statuses from individual HostEngine
// operations, for exercising failure paths in tests. A zero field leaves the
// operation untouched.
type HostFaults struct {
	Setup             Status
	Teardown          Status
	CreatePlan        Status
	SetPrecision      Status
	SetLayout         Status
	SetResultLocation Status
	Enqueue           Status
}

// HostEngine is a CPU-backed Engine for development and tests. It satisfies
// the native engine contract but executes transforms synchronously on the
// host, so a host "queue" is trivially ordered and never needs waiting on.
type HostEngine struct {
	mu    sync.Mutex
	ready bool
	next  PlanHandle
	plans map[PlanHandle]*hostPlan

	// Fail injects statuses into subsequent operations.
	Fail HostFaults

	// Operation counters, read by tests.
	setups    int
	teardowns int
	enqueues  int
	lastLoc   ResultLocation
}

type hostPlan struct {
	lengths []int
	total   int
	loc     ResultLocation
}

// NewHostEngine returns an idle host engine. Pair it with an EngineRef; the
// first plan constructed against the ref sets it up.
func NewHostEngine() *HostEngine {
	return &HostEngine{plans: make(map[PlanHandle]*hostPlan)}
}

// NewQueue returns a host queue bound to this engine. All queues of one
// host engine share the engine itself as their device context.
func (e *HostEngine) NewQueue() *HostQueue {
	return &HostQueue{engine: e}
}

func (e *HostEngine) Setup() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st := e.Fail.Setup; st != StatusSuccess {
		return st
	}
	e.ready = true
	e.setups++
	return StatusSuccess
}

func (e *HostEngine) Teardown() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st := e.Fail.Teardown; st != StatusSuccess {
		return st
	}
	e.ready = false
	e.teardowns++
	return StatusSuccess
}

func (e *HostEngine) CreatePlan(context any, lengths []int) (PlanHandle, Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st := e.Fail.CreatePlan; st != StatusSuccess {
		return 0, st
	}
	if !e.ready {
		return 0, hostStatusNotReady
	}
	if context != any(e) {
		return 0, hostStatusInvalidArgument
	}
	total := 1
	for _, n := range lengths {
		if n < 1 {
			return 0, hostStatusInvalidArgument
		}
		total *= n
	}
	e.next++
	e.plans[e.next] = &hostPlan{
		lengths: append([]int(nil), lengths...),
		total:   total,
	}
	return e.next, StatusSuccess
}

func (e *HostEngine) DestroyPlan(h PlanHandle) Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.plans[h] == nil {
		return hostStatusInvalidPlan
	}
	delete(e.plans, h)
	return StatusSuccess
}

func (e *HostEngine) SetPrecision(h PlanHandle, p Precision) Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st := e.Fail.SetPrecision; st != StatusSuccess {
		return st
	}
	if e.plans[h] == nil {
		return hostStatusInvalidPlan
	}
	if p != Single {
		return hostStatusBadPrecision
	}
	return StatusSuccess
}

func (e *HostEngine) SetLayout(h PlanHandle, in, out Layout) Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st := e.Fail.SetLayout; st != StatusSuccess {
		return st
	}
	if e.plans[h] == nil {
		return hostStatusInvalidPlan
	}
	if in != ComplexInterleaved || out != ComplexInterleaved {
		return hostStatusBadLayout
	}
	return StatusSuccess
}

func (e *HostEngine) SetResultLocation(h PlanHandle, loc ResultLocation) Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st := e.Fail.SetResultLocation; st != StatusSuccess {
		return st
	}
	p := e.plans[h]
	if p == nil {
		return hostStatusInvalidPlan
	}
	p.loc = loc
	e.lastLoc = loc
	return StatusSuccess
}

func (e *HostEngine) EnqueueTransform(h PlanHandle, dir Direction, queues, inputs, outputs []any) Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st := e.Fail.Enqueue; st != StatusSuccess {
		return st
	}
	if !e.ready {
		return hostStatusNotReady
	}
	p := e.plans[h]
	if p == nil {
		return hostStatusInvalidPlan
	}
	if len(queues) == 0 || len(inputs) != 1 || len(outputs) != 1 {
		return hostStatusInvalidArgument
	}
	in, ok := inputs[0].(*hostBuffer)
	if !ok {
		return hostStatusInvalidArgument
	}
	out, ok := outputs[0].(*hostBuffer)
	if !ok {
		return hostStatusInvalidArgument
	}
	if len(in.data) < p.total || len(out.data) < p.total {
		return hostStatusInvalidArgument
	}
	// The requested placement has to match the buffer handles.
	if (in == out) != (p.loc == InPlace) {
		return hostStatusBadPlacement
	}

	if in != out {
		copy(out.data[:p.total], in.data[:p.total])
	}
	hostfft.Transform(out.data[:p.total], p.lengths, dir == Inverse)
	e.enqueues++
	return StatusSuccess
}

// HostQueue is a command queue of a HostEngine. Host execution is
// synchronous, so enqueue order and completion order coincide.
type HostQueue struct {
	engine *HostEngine
}

func (q *HostQueue) Context() any { return q.engine }
func (q *HostQueue) Native() any  { return q }

type hostBuffer struct {
	data []complex64
}

// HostVector is a host-memory Vector for use with HostEngine.
type HostVector struct {
	buf *hostBuffer
}

// NewHostVector allocates a zeroed vector of n complex samples.
func NewHostVector(n int) *HostVector {
	return &HostVector{buf: &hostBuffer{data: make([]complex64, n)}}
}

// Len returns the number of complex samples.
func (v *HostVector) Len() int { return len(v.buf.data) }

// BufferAt returns the vector's single backing buffer; host vectors are not
// split across queues.
func (v *HostVector) BufferAt(int) any { return v.buf }

// Upload copies src into the vector. len(src) must equal Len.
func (v *HostVector) Upload(src []complex64) error {
	if len(src) != len(v.buf.data) {
		return fmt.Errorf("%w: upload of %d samples into vector of %d", ErrConfiguration, len(src), len(v.buf.data))
	}
	copy(v.buf.data, src)
	return nil
}

// Download copies the vector into dst. len(dst) must equal Len.
func (v *HostVector) Download(dst []complex64) error {
	if len(dst) != len(v.buf.data) {
		return fmt.Errorf("%w: download of %d samples from vector of %d", ErrConfiguration, len(dst), len(v.buf.data))
	}
	copy(dst, v.buf.data)
	return nil
}
