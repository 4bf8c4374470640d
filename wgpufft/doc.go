// Package wgpufft provides a WebGPU-backed transform engine for devfft.
//
// The engine acquires a WebGPU adapter and device on first setup and runs
// each transform as a sequence of compute passes, one per dimension, over
// interleaved single-precision complex samples held in storage buffers.
// Enqueued work is submitted without blocking the host; callers that need
// results synchronize through Queue.Synchronize or Vector.Download.
//
// Power-of-two and arbitrary lengths are both handled by a per-axis DFT
// kernel; the engine favors correctness over transform throughput.
package wgpufft
