package devfft

import (
	"math/cmplx"
	"testing"
)

// Shared test helpers.

func assertApproxComplex64Tolf(t *testing.T, got, want complex64, tol float64, format string, args ...any) {
	t.Helper()

	if cmplx.Abs(complex128(got)-complex128(want)) > tol {
		t.Fatalf(format+": got %v want %v (diff=%v)",
			append(args, got, want, cmplx.Abs(complex128(got)-complex128(want)))...)
	}
}

// newHostFixture wires a host engine with a ref and a single queue.
func newHostFixture() (*HostEngine, *EngineRef, *HostQueue) {
	eng := NewHostEngine()
	return eng, NewEngineRef(eng), eng.NewQueue()
}

func mustPlan1D(t *testing.T, ref *EngineRef, q Queue, n int, dir Direction) *Plan {
	t.Helper()

	plan, err := NewPlan1D(ref, q, n, dir)
	if err != nil {
		t.Fatalf("NewPlan1D(%d, %v): %v", n, dir, err)
	}
	return plan
}

func mustUpload(t *testing.T, v *HostVector, data []complex64) {
	t.Helper()

	if err := v.Upload(data); err != nil {
		t.Fatalf("Upload: %v", err)
	}
}

func mustDownload(t *testing.T, v *HostVector) []complex64 {
	t.Helper()

	out := make([]complex64, v.Len())
	if err := v.Download(out); err != nil {
		t.Fatalf("Download: %v", err)
	}
	return out
}
