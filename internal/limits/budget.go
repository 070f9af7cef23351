package limits

import (
	"fmt"
	"sync/atomic"
)

// Budget counts steps against a fixed limit. A nil Budget or a zero limit
// is unlimited. Charges may come from several goroutines.
type Budget struct {
	limit int64
	used  atomic.Int64
}

func NewBudget(limit int64) *Budget {
	return &Budget{limit: max(limit, 0)}
}

// Charge records n steps. A charge that would pass the limit is refused
// and leaves the count unchanged.
func (b *Budget) Charge(n int64) error {
	if b == nil || b.limit == 0 || n <= 0 {
		return nil
	}
	for {
		used := b.used.Load()
		if used+n > b.limit {
			return &MaxStepsError{Limit: b.limit, Used: used}
		}
		if b.used.CompareAndSwap(used, used+n) {
			return nil
		}
	}
}

// MaxStepsError is returned by a refused charge.
type MaxStepsError struct {
	Limit int64
	Used  int64
}

func (e *MaxStepsError) Error() string {
	return fmt.Sprintf("max steps exceeded (%d)", e.Limit)
}
