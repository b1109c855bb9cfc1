package aggregate

import "github.com/ja7ad/darshan-util/pkg/registry"

// FileType is a bitmask classifying how a file was shared across ranks
// (spec §3, §4.4). Once Shared is set it persists; Unique and PartShared
// remain possible only until a shared record arrives (spec invariant:
// Shared and Unique are mutually exclusive within a file).
type FileType uint8

const (
	Unique FileType = 1 << iota
	PartShared
	Shared
)

// Has reports whether every bit in mask is set in t.
func (t FileType) Has(mask FileType) bool { return t&mask == mask }

// Any reports whether any bit in mask is set in t.
func (t FileType) Any(mask FileType) bool { return t&mask != 0 }

// FileAccumulator is the per-file accumulator of spec §3, keyed by record
// id in Engine. A Job-wide Totals Accumulator uses this same shape,
// folded across every record of a module instead of one file's records.
type FileAccumulator struct {
	Type               FileType
	Procs              int
	CumulIOTotalTime   float64
	SlowestIOTotalTime float64

	// RecDat is the module-specific aggregated record, combined via the
	// module's Decoder.AggregateInto. nil until the first fold.
	RecDat registry.Record
}
