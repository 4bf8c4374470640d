package wgpufft_test

import (
	"errors"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/devfft"
	"github.com/cwbudde/devfft/wgpufft"
)

// fixture builds a plan against a fresh engine, skipping the test when no
// WebGPU adapter is present on the machine.
func fixture(t *testing.T, lengths []int, dir devfft.Direction) (*wgpufft.Engine, *devfft.EngineRef, *devfft.Plan) {
	t.Helper()

	eng := wgpufft.New(wgpufft.Options{})
	ref := devfft.NewEngineRef(eng)

	plan, err := devfft.NewPlan(ref, []devfft.Queue{eng.NewQueue()}, lengths, dir)
	if errors.Is(err, devfft.ErrBackend) {
		t.Skipf("WebGPU unavailable: %v (%v)", err, eng.LastError())
	}
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	return eng, ref, plan
}

func upload(t *testing.T, v *wgpufft.Vector, data []complex64) {
	t.Helper()
	if err := v.Upload(data); err != nil {
		t.Fatalf("Upload: %v", err)
	}
}

func download(t *testing.T, v *wgpufft.Vector) []complex64 {
	t.Helper()
	out := make([]complex64, v.Len())
	if err := v.Download(out); err != nil {
		t.Fatalf("Download: %v", err)
	}
	return out
}

func TestDeviceImpulse(t *testing.T) {
	eng, _, plan := fixture(t, []int{8}, devfft.Forward)
	defer func() { _ = plan.Close() }()

	in, err := eng.NewVector(8)
	if err != nil {
		t.Fatalf("NewVector: %v", err)
	}
	defer in.Close()
	out, err := eng.NewVector(8)
	if err != nil {
		t.Fatalf("NewVector: %v", err)
	}
	defer out.Close()

	impulse := make([]complex64, 8)
	impulse[0] = 1
	upload(t, in, impulse)

	if err := plan.Transform(in).Evaluate(out, devfft.Assign); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	for i, bin := range download(t, out) {
		if cmplx.Abs(complex128(bin)-1) > 1e-4 {
			t.Fatalf("bin %d = %v, want 1", i, bin)
		}
	}
}

func TestDeviceRoundTripInPlace(t *testing.T) {
	eng, ref, forward := fixture(t, []int{4, 4}, devfft.Forward)
	defer func() { _ = forward.Close() }()

	inverse, err := devfft.NewPlan(ref, []devfft.Queue{eng.NewQueue()}, []int{4, 4}, devfft.Inverse)
	if err != nil {
		t.Fatalf("inverse plan: %v", err)
	}
	defer func() { _ = inverse.Close() }()

	src := make([]complex64, 16)
	for i := range src {
		src[i] = complex(float32(i%7)-3, float32(i%4)*0.5)
	}

	data, err := eng.NewVector(16)
	if err != nil {
		t.Fatalf("NewVector: %v", err)
	}
	defer data.Close()
	upload(t, data, src)

	if err := forward.Transform(data).Evaluate(data, devfft.Assign); err != nil {
		t.Fatalf("forward Evaluate: %v", err)
	}
	if err := inverse.Transform(data).Evaluate(data, devfft.Assign); err != nil {
		t.Fatalf("inverse Evaluate: %v", err)
	}

	for i, got := range download(t, data) {
		want := complex128(src[i]) * 16
		diff := cmplx.Abs(complex128(got) - want)
		if diff > 1e-4*(cmplx.Abs(want)+1) {
			t.Fatalf("sample %d: got %v want %v (diff=%v)", i, got, want, diff)
		}
	}
}
