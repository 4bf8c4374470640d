// Package devfft turns a device-side fast Fourier transform into a deferred,
// composable operator over device-resident vectors.
//
// A Plan binds a native transform engine to a fixed dimensionality (1-3
// lengths, row-major, densely packed), single-precision complex-interleaved
// samples, and a direction. Applying a plan to an input vector yields an
// Expr, a single-use token for "transform(input) not yet written anywhere";
// evaluating the Expr into a destination vector resolves in-place versus
// out-of-place placement and enqueues the transform without blocking the
// host.
//
// The native engine is injected through the Engine interface and its
// process-wide setup/teardown is reference counted by an EngineRef, so the
// first plan constructed against a ref initializes the engine and the last
// plan closed tears it down. HostEngine provides a CPU-backed engine for
// development and tests; package wgpufft provides a WebGPU-backed engine.
//
// Usage:
//
//	eng := devfft.NewHostEngine()
//	ref := devfft.NewEngineRef(eng)
//	q := eng.NewQueue()
//
//	plan, err := devfft.NewPlan(ref, []devfft.Queue{q}, []int{width, height}, devfft.Forward)
//	defer plan.Close()
//
//	err = plan.Transform(input).Evaluate(output, devfft.Assign) // out-of-place
//	err = plan.Transform(data).Evaluate(data, devfft.Assign)    // in-place
package devfft
