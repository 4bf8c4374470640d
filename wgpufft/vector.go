package wgpufft

import (
	"fmt"

	"github.com/openfluke/webgpu/wgpu"
)

// Vector is a device-resident buffer of interleaved single-precision complex
// samples, usable as a devfft.Vector with this engine's queues.
type Vector struct {
	engine *Engine
	buf    *wgpu.Buffer
	n      int
}

// NewVector allocates a zeroed device vector of n complex samples. The
// engine must be set up, i.e. at least one plan must exist.
func (e *Engine) NewVector(n int) (*Vector, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return nil, fmt.Errorf("wgpufft: engine is not set up; construct a plan first")
	}
	if n < 1 {
		return nil, fmt.Errorf("wgpufft: invalid vector length %d", n)
	}
	buf, err := e.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "fft_vector",
		Size:  uint64(n * bytesPerSample),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpufft: vector buffer: %w", err)
	}
	return &Vector{engine: e, buf: buf, n: n}, nil
}

// Len returns the number of complex samples.
func (v *Vector) Len() int { return v.n }

// BufferAt returns the vector's single backing buffer; device vectors are
// not split across queues.
func (v *Vector) BufferAt(int) any { return v.buf }

// Upload copies src to the device. len(src) must equal Len.
func (v *Vector) Upload(src []complex64) error {
	if len(src) != v.n {
		return fmt.Errorf("wgpufft: upload of %d samples into vector of %d", len(src), v.n)
	}
	floats := make([]float32, 2*v.n)
	for i, c := range src {
		floats[2*i] = real(c)
		floats[2*i+1] = imag(c)
	}

	v.engine.mu.Lock()
	defer v.engine.mu.Unlock()
	if !v.engine.ready {
		return fmt.Errorf("wgpufft: engine is not set up")
	}
	v.engine.queue.WriteBuffer(v.buf, 0, wgpu.ToBytes(floats))
	return nil
}

// Download blocks until pending work completes, then copies the vector to
// dst. len(dst) must equal Len.
func (v *Vector) Download(dst []complex64) error {
	if len(dst) != v.n {
		return fmt.Errorf("wgpufft: download of %d samples from vector of %d", len(dst), v.n)
	}

	v.engine.mu.Lock()
	defer v.engine.mu.Unlock()
	if !v.engine.ready {
		return fmt.Errorf("wgpufft: engine is not set up")
	}
	device := v.engine.device
	size := uint64(v.n * bytesPerSample)

	staging, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "fft_vector_staging",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpufft: staging buffer: %w", err)
	}
	defer staging.Destroy()

	enc, err := device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("wgpufft: command encoder: %w", err)
	}
	enc.CopyBufferToBuffer(v.buf, 0, staging, 0, size)
	cmd, err := enc.Finish(nil)
	if err != nil {
		return fmt.Errorf("wgpufft: finish encoder: %w", err)
	}
	v.engine.queue.Submit(cmd)

	done := make(chan struct{})
	var mapErr error
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapErr = fmt.Errorf("wgpufft: map staging buffer: status %d", status)
		}
		close(done)
	})
	if err != nil {
		return fmt.Errorf("wgpufft: map staging buffer: %w", err)
	}

poll:
	for {
		device.Poll(true, nil)
		select {
		case <-done:
			break poll
		default:
		}
	}
	if mapErr != nil {
		return mapErr
	}

	data := staging.GetMappedRange(0, uint(size))
	defer staging.Unmap()
	if data == nil {
		return fmt.Errorf("wgpufft: mapped range is nil")
	}
	floats := wgpu.FromBytes[float32](data)
	for i := range dst {
		dst[i] = complex(floats[2*i], floats[2*i+1])
	}
	return nil
}

// Close releases the device buffer. The vector must not be used afterwards.
func (v *Vector) Close() {
	if v.buf != nil {
		v.buf.Destroy()
		v.buf = nil
	}
}
