package limits

import (
	"errors"
	"sync"
	"testing"
)

func TestBudgetCharge(t *testing.T) {
	b := NewBudget(10)
	tests := []struct {
		n    int64
		fail bool
	}{
		{4, false},
		{0, false},
		{-3, false},
		{6, false},
		{1, true},
	}
	for i, tt := range tests {
		err := b.Charge(tt.n)
		if (err != nil) != tt.fail {
			t.Fatalf("tests[%d]: expected fail=%v, got %v", i, tt.fail, err)
		}
	}
	var maxErr *MaxStepsError
	if err := b.Charge(1); !errors.As(err, &maxErr) || maxErr.Limit != 10 || maxErr.Used != 10 {
		t.Fatalf("expected MaxStepsError{10, 10}, got %v", err)
	}
	if got := maxErr.Error(); got != "max steps exceeded (10)" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestBudgetUnlimited(t *testing.T) {
	for i, b := range []*Budget{NewBudget(0), NewBudget(-5), nil} {
		if err := b.Charge(1_000_000); err != nil {
			t.Fatalf("tests[%d]: unexpected error: %v", i, err)
		}
	}
}

func TestBudgetConcurrentCharges(t *testing.T) {
	b := NewBudget(100)
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if b.Charge(1) == nil {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	if accepted != 100 {
		t.Fatalf("expected 100 accepted charges, got %d", accepted)
	}
}
