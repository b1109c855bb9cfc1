package dxt

import "sync"

// GlobalBudgetBytes is the shared memory cap across both DXT managers
// (spec §4.5, "a single global memory budget of 4 MiB across both").
const GlobalBudgetBytes = 4 << 20

// budget is the process-wide DXT memory accounting. The spec calls for a
// recursive mutex guarding it; Go has no built-in recursive mutex, and
// every debit/credit/reallocation decision here happens in one atomic
// critical section rather than through nested calls, so a plain
// sync.Mutex held only at the outermost entry point (debit/debitSegments)
// is equivalent and simpler (see SPEC_FULL.md §5, item 4).
type Budget struct {
	mu        sync.Mutex
	remaining uint64
}

// NewBudget creates a memory budget with the given byte capacity. Both
// the POSIX and MPI-IO managers must be built from the same *Budget to
// honor spec §4.5's shared 4 MiB cap.
func NewBudget(capacity uint64) *Budget {
	return &Budget{remaining: capacity}
}

// debit refuses the request outright if the full amount isn't
// available (spec §4.5, "Creation budget": a new file record is refused
// if the remaining budget is smaller than one dxt_file_record). Credit
// back is never performed, matching the spec's high-water-mark policy.
func (b *Budget) debit(n uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.remaining < n {
		return false
	}
	b.remaining -= n
	return true
}

// debitSegments grants as many wantSegments (of segSize bytes each) as
// the remaining budget allows as whole segments, possibly zero, and
// debits exactly that much (spec §4.5, "Geometric growth with budget":
// the intended increment is clamped to what the remaining budget allows;
// if zero, further appends are silently dropped). Granting only whole
// segments, rather than a fractional byte count, keeps a partial grant
// from wasting budget on capacity nothing can use.
func (b *Budget) debitSegments(segSize uint64, wantSegments int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	maxSegments := int(b.remaining / segSize)
	grant := wantSegments
	if grant > maxSegments {
		grant = maxSegments
	}
	b.remaining -= uint64(grant) * segSize
	return grant
}

// Remaining reports the bytes still available in the budget.
func (b *Budget) Remaining() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}
