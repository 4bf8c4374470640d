package devfft

// Direction selects between the forward and inverse transform.
type Direction uint8

const (
	// Forward computes the forward DFT (negative exponent convention).
	Forward Direction = iota
	// Inverse computes the unnormalized inverse DFT. A forward transform
	// followed by an inverse transform scales the data by the sample count.
	Inverse
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Inverse:
		return "inverse"
	default:
		return "unknown"
	}
}

// Precision describes the sample precision of a plan.
// Only single precision is supported.
type Precision uint8

const (
	// Single is IEEE-754 binary32 per real and imaginary component.
	Single Precision = iota
)

// Layout describes how complex samples are stored in a buffer.
// Only the interleaved layout is supported.
type Layout uint8

const (
	// ComplexInterleaved stores each sample's real and imaginary parts
	// adjacently in a single buffer.
	ComplexInterleaved Layout = iota
)

// ResultLocation selects where a transform writes its result.
type ResultLocation uint8

const (
	// OutOfPlace writes the result to a buffer distinct from the input.
	OutOfPlace ResultLocation = iota
	// InPlace overwrites the input buffer with the result.
	InPlace
)

func (l ResultLocation) String() string {
	if l == InPlace {
		return "in-place"
	}
	return "out-of-place"
}

// Status is a native engine status code. StatusSuccess reports success;
// any other value is engine-specific and surfaced as a *BackendError.
type Status int32

// StatusSuccess is the common success code shared by all engines.
const StatusSuccess Status = 0

// PlanHandle identifies a native plan inside an Engine. The zero handle is
// never a valid plan.
type PlanHandle uint64

// Queue is one device command submission channel. Operations enqueued on the
// same queue execute in enqueue order; no ordering holds across queues.
type Queue interface {
	// Context returns the device context the queue is bound to. All queues
	// given to one plan must share a context.
	Context() any

	// Native returns the handle passed to Engine.EnqueueTransform.
	Native() any
}

// Vector is a dense, row-major device buffer of complex samples. Plans and
// expressions borrow vectors; they never take ownership.
type Vector interface {
	// Len returns the number of complex samples.
	Len() int

	// BufferAt returns the native memory handle backing queue slice i.
	// Handle identity decides in-place versus out-of-place execution.
	BufferAt(i int) any
}

// Engine is the native transform execution engine. Every operation returns a
// Status; non-success statuses are wrapped in *BackendError by the callers in
// this package. Setup and Teardown bracket all other calls and are issued
// only by EngineRef.
//
// Teardown is not required to wait for transforms still in flight on the
// device; engines that need draining must handle it internally.
type Engine interface {
	Setup() Status
	Teardown() Status

	// CreatePlan creates a plan for the given row-major dimension lengths
	// on the given device context.
	CreatePlan(context any, lengths []int) (PlanHandle, Status)
	DestroyPlan(h PlanHandle) Status

	SetPrecision(h PlanHandle, p Precision) Status
	SetLayout(h PlanHandle, in, out Layout) Status
	SetResultLocation(h PlanHandle, loc ResultLocation) Status

	// EnqueueTransform submits the transform on the given queues without
	// waiting for device completion. The enqueue call's own status is
	// reported synchronously.
	EnqueueTransform(h PlanHandle, dir Direction, queues, inputs, outputs []any) Status
}
