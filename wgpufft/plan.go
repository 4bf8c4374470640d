package wgpufft

import (
	"fmt"

	"github.com/openfluke/webgpu/wgpu"

	"github.com/cwbudde/devfft"
)

const bytesPerSample = 8 // two float32 components per complex sample

// devicePlan holds the compiled pipelines and scratch storage for one set of
// dimension lengths. Passes ping-pong between the two scratch buffers so the
// same plan serves in-place and out-of-place execution.
type devicePlan struct {
	lengths []int
	total   int
	loc     devfft.ResultLocation

	scratchA *wgpu.Buffer
	scratchB *wgpu.Buffer
	bindAB   *wgpu.BindGroup
	bindBA   *wgpu.BindGroup
	passes   []axisPass
}

type axisPass struct {
	forward    *wgpu.ComputePipeline
	inverse    *wgpu.ComputePipeline
	workgroups uint32
}

// axisShader generates the WGSL for one transform axis. N, STRIDE, and TOTAL
// are baked into the source so no uniform plumbing is needed; the twiddle
// index accumulates modulo N to stay inside u32 range for any length.
func axisShader(n, stride, total int) string {
	return fmt.Sprintf(`
@group(0) @binding(0) var<storage, read> src: array<vec2<f32>>;
@group(0) @binding(1) var<storage, read_write> dst: array<vec2<f32>>;

const N: u32 = %du;
const STRIDE: u32 = %du;
const TOTAL: u32 = %du;

fn line_dft(idx: u32, sign: f32) {
    if (idx >= TOTAL) {
        return;
    }
    let k = (idx / STRIDE) %% N;
    let base = idx - k * STRIDE;
    var acc = vec2<f32>(0.0, 0.0);
    var t: u32 = 0u;
    for (var j: u32 = 0u; j < N; j = j + 1u) {
        let v = src[base + j * STRIDE];
        let ang = sign * 6.283185307179586 * f32(t) / f32(N);
        let w = vec2<f32>(cos(ang), sin(ang));
        acc = acc + vec2<f32>(v.x * w.x - v.y * w.y, v.x * w.y + v.y * w.x);
        t = t + k;
        if (t >= N) {
            t = t - N;
        }
    }
    dst[idx] = acc;
}

@compute @workgroup_size(64)
fn forward_pass(@builtin(global_invocation_id) gid: vec3<u32>) {
    line_dft(gid.x, -1.0);
}

@compute @workgroup_size(64)
fn inverse_pass(@builtin(global_invocation_id) gid: vec3<u32>) {
    line_dft(gid.x, 1.0);
}
`, n, stride, total)
}

// buildPlan compiles the per-axis pipelines and allocates scratch storage.
// Caller holds e.mu.
func (e *Engine) buildPlan(lengths []int, total int) (*devicePlan, error) {
	size := uint64(total * bytesPerSample)
	storage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

	scratchA, err := e.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "fft_scratch_a",
		Size:  size,
		Usage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpufft: scratch buffer: %w", err)
	}
	scratchB, err := e.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "fft_scratch_b",
		Size:  size,
		Usage: storage,
	})
	if err != nil {
		scratchA.Destroy()
		return nil, fmt.Errorf("wgpufft: scratch buffer: %w", err)
	}

	p := &devicePlan{
		lengths:  append([]int(nil), lengths...),
		total:    total,
		scratchA: scratchA,
		scratchB: scratchB,
	}

	layout, err := e.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "fft_bgl",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: 1, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		p.release()
		return nil, fmt.Errorf("wgpufft: bind group layout: %w", err)
	}
	pipelineLayout, err := e.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "fft_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		p.release()
		return nil, fmt.Errorf("wgpufft: pipeline layout: %w", err)
	}

	p.bindAB, err = e.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "fft_bind_ab",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: scratchA, Size: size},
			{Binding: 1, Buffer: scratchB, Size: size},
		},
	})
	if err != nil {
		p.release()
		return nil, fmt.Errorf("wgpufft: bind group: %w", err)
	}
	p.bindBA, err = e.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "fft_bind_ba",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: scratchB, Size: size},
			{Binding: 1, Buffer: scratchA, Size: size},
		},
	})
	if err != nil {
		p.release()
		return nil, fmt.Errorf("wgpufft: bind group: %w", err)
	}

	// One pass per axis, fastest-varying axis first, matching the row-major
	// layout contract.
	workgroups := uint32((total + 63) / 64)
	stride := 1
	for axis := len(lengths) - 1; axis >= 0; axis-- {
		n := lengths[axis]

		module, err := e.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label:          fmt.Sprintf("fft_axis%d", axis),
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: axisShader(n, stride, total)},
		})
		if err != nil {
			p.release()
			return nil, fmt.Errorf("wgpufft: shader axis %d: %w", axis, err)
		}

		var pass axisPass
		pass.workgroups = workgroups
		pass.forward, err = e.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
			Label:  fmt.Sprintf("fft_axis%d_forward", axis),
			Layout: pipelineLayout,
			Compute: wgpu.ProgrammableStageDescriptor{
				Module:     module,
				EntryPoint: "forward_pass",
			},
		})
		if err == nil {
			pass.inverse, err = e.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
				Label:  fmt.Sprintf("fft_axis%d_inverse", axis),
				Layout: pipelineLayout,
				Compute: wgpu.ProgrammableStageDescriptor{
					Module:     module,
					EntryPoint: "inverse_pass",
				},
			})
		}
		module.Release()
		if err != nil {
			p.release()
			return nil, fmt.Errorf("wgpufft: pipeline axis %d: %w", axis, err)
		}

		p.passes = append(p.passes, pass)
		stride *= n
	}

	return p, nil
}

// encodeTransform records the copy-in, the per-axis passes, and the copy-out
// into one command buffer and submits it. No host-side wait. Caller holds
// e.mu.
func (e *Engine) encodeTransform(p *devicePlan, dir devfft.Direction, in, out *wgpu.Buffer) error {
	enc, err := e.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("wgpufft: command encoder: %w", err)
	}

	size := uint64(p.total * bytesPerSample)
	enc.CopyBufferToBuffer(in, 0, p.scratchA, 0, size)

	for i, axis := range p.passes {
		pipeline := axis.forward
		if dir == devfft.Inverse {
			pipeline = axis.inverse
		}
		bind := p.bindAB
		if i%2 == 1 {
			bind = p.bindBA
		}

		pass := enc.BeginComputePass(nil)
		pass.SetPipeline(pipeline)
		pass.SetBindGroup(0, bind, nil)
		pass.DispatchWorkgroups(axis.workgroups, 1, 1)
		pass.End()
	}

	final := p.scratchA
	if len(p.passes)%2 == 1 {
		final = p.scratchB
	}
	enc.CopyBufferToBuffer(final, 0, out, 0, size)

	cmd, err := enc.Finish(nil)
	if err != nil {
		return fmt.Errorf("wgpufft: finish encoder: %w", err)
	}
	e.queue.Submit(cmd)
	return nil
}

func (p *devicePlan) release() {
	for _, pass := range p.passes {
		if pass.forward != nil {
			pass.forward.Release()
		}
		if pass.inverse != nil {
			pass.inverse.Release()
		}
	}
	p.passes = nil
	if p.bindAB != nil {
		p.bindAB.Release()
		p.bindAB = nil
	}
	if p.bindBA != nil {
		p.bindBA.Release()
		p.bindBA = nil
	}
	if p.scratchA != nil {
		p.scratchA.Destroy()
		p.scratchA = nil
	}
	if p.scratchB != nil {
		p.scratchB.Destroy()
		p.scratchB = nil
	}
}
