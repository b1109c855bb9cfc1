package types

import "fmt"

// Rank identifies the MPI process a record came from. Non-negative values
// are the real per-rank record from that rank; Shared marks an aggregated
// record folded across every rank of the job by an external MPI reduction.
type Rank int32

// Shared is the sentinel rank of a job-wide aggregated record.
const Shared Rank = -1

// IsShared reports whether r is the aggregated "every rank" record.
func (r Rank) IsShared() bool { return r == Shared }

// Index returns the rank as a non-negative process index. ok is false for
// Shared, which has no single owning rank.
func (r Rank) Index() (idx int, ok bool) {
	if r.IsShared() {
		return 0, false
	}
	return int(r), true
}

// InRange reports whether a per-rank (non-Shared) rank falls within
// [0, nprocs). Shared is always in range: it is not rank-indexed.
func (r Rank) InRange(nprocs int) bool {
	if r.IsShared() {
		return true
	}
	idx, _ := r.Index()
	return idx >= 0 && idx < nprocs
}

func (r Rank) String() string {
	if r.IsShared() {
		return "shared"
	}
	return fmt.Sprintf("%d", int32(r))
}
