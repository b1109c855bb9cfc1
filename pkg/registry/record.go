package registry

import "github.com/ja7ad/darshan-util/pkg/types"

// Record is satisfied by every module's decoded record. The underlying
// shape (counter layout) is module- and version-specific and owned by that
// module's Decoder; callers that only need to index and classify records
// use this narrow interface, per spec §3 "Base Record".
type Record interface {
	RecordID() uint64
	Rank() types.Rank
}

// PerfFields is implemented by the three aggregating modules (POSIX,
// MPI-IO, STDIO). It exposes exactly the derived quantities the
// Aggregation Engine needs from §4.4's fold/fold_perf rules, without
// exposing each module's raw counter layout to the engine.
type PerfFields interface {
	Record

	BytesRead() uint64
	BytesWritten() uint64

	MetaTime() float64
	ReadTime() float64
	WriteTime() float64

	// SlowestRankTime is only meaningful when Rank().IsShared(): it is the
	// authoritative slowest-participating-rank time supplied by the
	// runtime's MPI reduction (spec §3, §4.4).
	SlowestRankTime() float64

	// ReadCalls and WriteCalls sum the module's independent/collective/
	// split/non-blocking read and write counters respectively (spec §4.4,
	// "for MPI-IO: sum of independent, collective, split, and
	// non-blocking variants in each direction"). POSIX/STDIO have a
	// single counter per direction and just return it.
	ReadCalls() int64
	WriteCalls() int64
}

// IOTotalTime is the per-record "meta+read+write" quantity spec §3/§4.4
// reference repeatedly.
func IOTotalTime(r PerfFields) float64 {
	return r.MetaTime() + r.ReadTime() + r.WriteTime()
}

// base is embedded by every concrete module record.
type base struct {
	recordID uint64
	rank     types.Rank
}

func (b base) RecordID() uint64 { return b.recordID }
func (b base) Rank() types.Rank { return b.rank }
