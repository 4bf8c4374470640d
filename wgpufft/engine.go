package wgpufft

import (
	"fmt"
	"strings"
	"sync"

	"github.com/openfluke/webgpu/wgpu"

	"github.com/cwbudde/devfft"
)

// Engine status codes. Zero is devfft.StatusSuccess.
const (
	// StatusNoInstance reports that the WebGPU instance could not be created.
	StatusNoInstance devfft.Status = iota + 1
	// StatusNoAdapter reports that no suitable adapter was found.
	StatusNoAdapter
	// StatusNoDevice reports that the adapter refused a device.
	StatusNoDevice
	// StatusNotReady reports use of the engine outside a setup/teardown pair.
	StatusNotReady
	// StatusInvalidPlan reports an unknown plan handle.
	StatusInvalidPlan
	// StatusInvalidArgument reports malformed queue or buffer arguments.
	StatusInvalidArgument
	// StatusBadPrecision reports a precision other than single.
	StatusBadPrecision
	// StatusBadLayout reports a layout other than complex-interleaved.
	StatusBadLayout
	// StatusBadPlacement reports a result location that contradicts the
	// buffer handles passed at enqueue.
	StatusBadPlacement
	// StatusPipelineFailed reports a shader or pipeline build failure.
	StatusPipelineFailed
	// StatusEnqueueFailed reports a command encoding or submission failure.
	StatusEnqueueFailed
)

// Options configures adapter selection.
type Options struct {
	// AdapterFilter, when non-empty, selects the first adapter whose name or
	// vendor contains the substring (case-insensitive). Otherwise a
	// high-performance adapter is preferred with fallbacks to low-power and
	// default adapters.
	AdapterFilter string
}

// Engine implements devfft.Engine on WebGPU. Create one with New, hand it to
// a devfft.EngineRef, and construct plans against the ref; the first plan
// performs device acquisition.
//
// Teardown keeps the device cached so setup/teardown cycles are idempotent;
// wgpu-native owns the ordering between submitted work and device release.
type Engine struct {
	mu   sync.Mutex
	opts Options

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	ready    bool

	next  devfft.PlanHandle
	plans map[devfft.PlanHandle]*devicePlan

	lastErr error
}

// New returns an idle engine. No device work happens until the first plan is
// constructed.
func New(opts Options) *Engine {
	return &Engine{
		opts:  opts,
		plans: make(map[devfft.PlanHandle]*devicePlan),
	}
}

// LastError returns the underlying error behind the most recent non-success
// status, if any. Status codes travel through devfft.BackendError; the
// error here carries the wgpu detail.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// NewQueue returns the engine's submission queue as a devfft.Queue. WebGPU
// exposes one queue per device, so all queues of one engine coincide.
func (e *Engine) NewQueue() *Queue {
	return &Queue{engine: e}
}

func (e *Engine) fail(st devfft.Status, err error) devfft.Status {
	e.lastErr = err
	return st
}

func (e *Engine) Setup() devfft.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.device != nil {
		e.ready = true
		return devfft.StatusSuccess
	}

	e.instance = wgpu.CreateInstance(nil)
	if e.instance == nil {
		return e.fail(StatusNoInstance, fmt.Errorf("wgpufft: failed to create WebGPU instance"))
	}

	if filter := e.opts.AdapterFilter; filter != "" {
		want := strings.ToLower(filter)
		for _, a := range e.instance.EnumerateAdapters(nil) {
			info := a.GetInfo()
			if strings.Contains(strings.ToLower(info.Name), want) ||
				strings.Contains(strings.ToLower(info.VendorName), want) {
				e.adapter = a
				break
			}
		}
		if e.adapter == nil {
			return e.fail(StatusNoAdapter, fmt.Errorf("wgpufft: no adapter matches %q", filter))
		}
	}

	if e.adapter == nil {
		var err error
		e.adapter, err = e.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
			PowerPreference: wgpu.PowerPreferenceHighPerformance,
		})
		if e.adapter == nil {
			e.adapter, err = e.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
				PowerPreference: wgpu.PowerPreferenceLowPower,
			})
		}
		if e.adapter == nil {
			e.adapter, err = e.instance.RequestAdapter(nil)
		}
		if e.adapter == nil {
			return e.fail(StatusNoAdapter, fmt.Errorf("wgpufft: no adapter available: %v", err))
		}
	}

	device, err := e.adapter.RequestDevice(nil)
	if err != nil {
		e.adapter = nil
		return e.fail(StatusNoDevice, fmt.Errorf("wgpufft: request device: %w", err))
	}
	e.device = device
	e.queue = device.GetQueue()
	e.ready = true
	return devfft.StatusSuccess
}

func (e *Engine) Teardown() devfft.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Plans are destroyed before the last reference drops; release anything
	// a misbehaving caller left behind.
	for h, p := range e.plans {
		p.release()
		delete(e.plans, h)
	}
	e.ready = false
	return devfft.StatusSuccess
}

func (e *Engine) CreatePlan(context any, lengths []int) (devfft.PlanHandle, devfft.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return 0, StatusNotReady
	}
	if context != any(e) {
		return 0, e.fail(StatusInvalidArgument, fmt.Errorf("wgpufft: plan context does not belong to this engine"))
	}
	total := 1
	for _, n := range lengths {
		if n < 1 {
			return 0, StatusInvalidArgument
		}
		total *= n
	}

	p, err := e.buildPlan(lengths, total)
	if err != nil {
		return 0, e.fail(StatusPipelineFailed, err)
	}

	e.next++
	e.plans[e.next] = p
	return e.next, devfft.StatusSuccess
}

func (e *Engine) DestroyPlan(h devfft.PlanHandle) devfft.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.plans[h]
	if p == nil {
		return StatusInvalidPlan
	}
	p.release()
	delete(e.plans, h)
	return devfft.StatusSuccess
}

func (e *Engine) SetPrecision(h devfft.PlanHandle, p devfft.Precision) devfft.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.plans[h] == nil {
		return StatusInvalidPlan
	}
	if p != devfft.Single {
		return StatusBadPrecision
	}
	return devfft.StatusSuccess
}

func (e *Engine) SetLayout(h devfft.PlanHandle, in, out devfft.Layout) devfft.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.plans[h] == nil {
		return StatusInvalidPlan
	}
	if in != devfft.ComplexInterleaved || out != devfft.ComplexInterleaved {
		return StatusBadLayout
	}
	return devfft.StatusSuccess
}

func (e *Engine) SetResultLocation(h devfft.PlanHandle, loc devfft.ResultLocation) devfft.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.plans[h]
	if p == nil {
		return StatusInvalidPlan
	}
	p.loc = loc
	return devfft.StatusSuccess
}

func (e *Engine) EnqueueTransform(h devfft.PlanHandle, dir devfft.Direction, queues, inputs, outputs []any) devfft.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return StatusNotReady
	}
	p := e.plans[h]
	if p == nil {
		return StatusInvalidPlan
	}
	if len(queues) != 1 || len(inputs) != 1 || len(outputs) != 1 {
		return StatusInvalidArgument
	}
	in, ok := inputs[0].(*wgpu.Buffer)
	if !ok {
		return StatusInvalidArgument
	}
	out, ok := outputs[0].(*wgpu.Buffer)
	if !ok {
		return StatusInvalidArgument
	}
	if (in == out) != (p.loc == devfft.InPlace) {
		return StatusBadPlacement
	}

	if err := e.encodeTransform(p, dir, in, out); err != nil {
		return e.fail(StatusEnqueueFailed, err)
	}
	return devfft.StatusSuccess
}

// Queue is the engine's device queue. Same-queue submissions execute in
// submission order on the device.
type Queue struct {
	engine *Engine
}

// Context identifies the device context shared by all of the engine's queues.
func (q *Queue) Context() any { return q.engine }

// Native returns the wgpu queue handle; valid once the engine is set up.
func (q *Queue) Native() any { return q.engine.queue }

// Synchronize blocks until previously submitted work has completed.
func (q *Queue) Synchronize() error {
	q.engine.mu.Lock()
	device := q.engine.device
	q.engine.mu.Unlock()
	if device == nil {
		return fmt.Errorf("wgpufft: synchronize on an engine that is not set up")
	}
	device.Poll(true, nil)
	return nil
}
