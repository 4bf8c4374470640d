package devfft

import (
	"errors"
	"testing"
)

func TestNewPlanDimensionValidation(t *testing.T) {
	tests := []struct {
		name    string
		lengths []int
		ok      bool
	}{
		{"no dimensions", nil, false},
		{"one dimension", []int{8}, true},
		{"two dimensions", []int{4, 4}, true},
		{"three dimensions", []int{2, 2, 2}, true},
		{"four dimensions", []int{2, 2, 2, 2}, false},
		{"zero length", []int{0}, false},
		{"negative length", []int{4, -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ref, q := newHostFixture()

			plan, err := NewPlan(ref, []Queue{q}, tt.lengths, Forward)
			if tt.ok {
				if err != nil {
					t.Fatalf("NewPlan(%v): %v", tt.lengths, err)
				}
				if err := plan.Close(); err != nil {
					t.Fatalf("Close: %v", err)
				}
			} else if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("NewPlan(%v) = %v, want ErrConfiguration", tt.lengths, err)
			}

			if got := ref.refCount(); got != 0 {
				t.Fatalf("ref count after construct+destroy = %d, want 0", got)
			}
		})
	}
}

func TestNewPlanEmptyQueueList(t *testing.T) {
	_, ref, _ := newHostFixture()

	if _, err := NewPlan(ref, nil, []int{8}, Forward); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("NewPlan with no queues = %v, want ErrConfiguration", err)
	}
	if got := ref.refCount(); got != 0 {
		t.Fatalf("ref count = %d, want 0", got)
	}
}

func TestPlanLifecycleRefCounting(t *testing.T) {
	eng, ref, q := newHostFixture()

	// 0 -> 1 -> 2 -> 1 -> 0, teardown exactly once, after the last close.
	planA := mustPlan1D(t, ref, q, 4, Forward)
	if got := ref.refCount(); got != 1 {
		t.Fatalf("ref count after plan A = %d, want 1", got)
	}
	planB := mustPlan1D(t, ref, q, 8, Forward)
	if got := ref.refCount(); got != 2 {
		t.Fatalf("ref count after plan B = %d, want 2", got)
	}
	if eng.setups != 1 {
		t.Fatalf("setups = %d, want 1", eng.setups)
	}

	if err := planB.Close(); err != nil {
		t.Fatalf("Close B: %v", err)
	}
	if got := ref.refCount(); got != 1 {
		t.Fatalf("ref count after closing B = %d, want 1", got)
	}
	if eng.teardowns != 0 {
		t.Fatalf("teardowns before last close = %d, want 0", eng.teardowns)
	}

	if err := planA.Close(); err != nil {
		t.Fatalf("Close A: %v", err)
	}
	if got := ref.refCount(); got != 0 {
		t.Fatalf("ref count after closing A = %d, want 0", got)
	}
	if eng.teardowns != 1 {
		t.Fatalf("teardowns = %d, want 1", eng.teardowns)
	}
}

func TestPlanCloseIsIdempotent(t *testing.T) {
	eng, ref, q := newHostFixture()

	plan := mustPlan1D(t, ref, q, 8, Forward)
	if err := plan.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := plan.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if got := ref.refCount(); got != 0 {
		t.Fatalf("ref count = %d, want 0", got)
	}
	if eng.teardowns != 1 {
		t.Fatalf("teardowns = %d, want 1", eng.teardowns)
	}
}

func TestClosedPlanRejectsEvaluate(t *testing.T) {
	_, ref, q := newHostFixture()

	plan := mustPlan1D(t, ref, q, 8, Forward)
	expr := plan.Transform(NewHostVector(8))
	if err := plan.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := expr.Evaluate(NewHostVector(8), Assign); !errors.Is(err, ErrPlanClosed) {
		t.Fatalf("Evaluate on closed plan = %v, want ErrPlanClosed", err)
	}
}

func TestNewPlanSetupFailure(t *testing.T) {
	eng, ref, q := newHostFixture()
	eng.Fail.Setup = 42

	_, err := NewPlan1D(ref, q, 8, Forward)
	if !errors.Is(err, ErrBackend) {
		t.Fatalf("NewPlan with failing setup = %v, want backend error", err)
	}
	var be *BackendError
	if !errors.As(err, &be) || be.Status != 42 {
		t.Fatalf("backend error = %+v, want status 42", be)
	}
	if got := ref.refCount(); got != 0 {
		t.Fatalf("ref count = %d, want 0", got)
	}
}

func TestNewPlanReleasesRefAfterNativeFailure(t *testing.T) {
	tests := []struct {
		name string
		arm  func(*HostFaults)
	}{
		{"create plan fails", func(f *HostFaults) { f.CreatePlan = 7 }},
		{"set precision fails", func(f *HostFaults) { f.SetPrecision = 7 }},
		{"set layout fails", func(f *HostFaults) { f.SetLayout = 7 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, ref, q := newHostFixture()
			tt.arm(&eng.Fail)

			_, err := NewPlan1D(ref, q, 8, Forward)
			if !errors.Is(err, ErrBackend) {
				t.Fatalf("NewPlan = %v, want backend error", err)
			}
			if got := ref.refCount(); got != 0 {
				t.Fatalf("ref count after failed construction = %d, want 0", got)
			}
			if eng.teardowns != 1 {
				t.Fatalf("teardowns = %d, want 1 (setup must be undone)", eng.teardowns)
			}
			if len(eng.plans) != 0 {
				t.Fatalf("%d native plans leaked", len(eng.plans))
			}
		})
	}
}

func TestPlanAccessors(t *testing.T) {
	_, ref, q := newHostFixture()

	plan, err := NewPlan(ref, []Queue{q}, []int{2, 3, 4}, Inverse)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	defer func() { _ = plan.Close() }()

	lengths := plan.Lengths()
	if len(lengths) != 3 || lengths[0] != 2 || lengths[1] != 3 || lengths[2] != 4 {
		t.Fatalf("Lengths() = %v, want [2 3 4]", lengths)
	}
	lengths[0] = 99
	if plan.Lengths()[0] != 2 {
		t.Fatal("Lengths() must return a copy")
	}
	if plan.Direction() != Inverse {
		t.Fatalf("Direction() = %v, want Inverse", plan.Direction())
	}
}
