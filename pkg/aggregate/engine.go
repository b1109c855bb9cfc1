// Package aggregate implements the Aggregation Engine of spec §4.4: it
// folds per-rank records into per-file and job-wide accumulators, and
// finalizes those accumulators into the summaries the CLI prints.
package aggregate

import (
	"github.com/ja7ad/darshan-util/pkg/registry"
	"github.com/ja7ad/darshan-util/pkg/util"
)

// Engine is the per-module aggregation state of spec §4.4: one Engine is
// built per aggregating module (POSIX, MPI-IO, STDIO), folding that
// module's records as the log is scanned.
type Engine struct {
	nprocs  int
	decoder registry.Decoder

	files  map[uint64]*FileAccumulator
	totals *FileAccumulator
	perf   *PerfAccumulator
}

// NewEngine builds an Engine for a module with nprocs participating ranks.
func NewEngine(decoder registry.Decoder, nprocs int) *Engine {
	return &Engine{
		nprocs:  nprocs,
		decoder: decoder,
		files:   make(map[uint64]*FileAccumulator),
		totals:  &FileAccumulator{},
		perf:    newPerfAccumulator(nprocs),
	}
}

// Fold folds one record into its file's accumulator and into the
// job-wide totals accumulator (spec §4.4 "fold"). A record whose rank is
// out of [0, nprocs) and isn't Shared is refused with MalformedRankError
// and otherwise ignored, per spec §7.
func (e *Engine) Fold(rec registry.PerfFields) error {
	if !rec.Rank().InRange(e.nprocs) {
		return &MalformedRankError{Rank: rec.Rank(), NProcs: e.nprocs}
	}

	dst, ok := e.files[rec.RecordID()]
	if !ok {
		dst = &FileAccumulator{}
		e.files[rec.RecordID()] = dst
	}
	e.foldInto(dst, rec)
	e.foldInto(e.totals, rec)
	return nil
}

// foldInto applies one record to a single FileAccumulator, per spec
// §4.4's fold rules.
func (e *Engine) foldInto(dst *FileAccumulator, rec registry.PerfFields) {
	dst.Procs++
	ioTotal := registry.IOTotalTime(rec)

	if rec.Rank().IsShared() {
		// Authoritative from the runtime's own reduction: overwrites,
		// never combines with a prior per-rank max (spec §4.4, and the
		// documented quirk in DESIGN.md: cumul_io_total_time still gains
		// this record's own ioTotal below even though slowest does not
		// accumulate it).
		dst.SlowestIOTotalTime = rec.SlowestRankTime()
		dst.Procs = e.nprocs
		dst.Type &^= Unique | PartShared
		dst.Type |= Shared
	} else {
		dst.SlowestIOTotalTime = util.Max(dst.SlowestIOTotalTime, ioTotal)
		switch {
		case dst.Type.Has(Shared):
			// Shared persists: a later per-rank record adds no
			// Unique or PartShared bit.
		case dst.Procs > 1:
			dst.Type &^= Unique
			dst.Type |= PartShared
		default:
			dst.Type |= Unique
		}
	}

	dst.CumulIOTotalTime += ioTotal
	dst.RecDat = e.decoder.AggregateInto(dst.RecDat, rec.(registry.Record), dst.RecDat == nil)
}

// FoldPerf folds one record's byte and timing contribution into the
// job-wide performance accumulator (spec §4.4 "fold_perf"). Unlike Fold,
// non-shared per-rank contributions land in that rank's own slot of the
// per-rank timing vectors; a shared record's slowest-rank time is instead
// accumulated into SharedIOTotalTimeBySlowest, since it doesn't belong to
// any one rank's slot.
func (e *Engine) FoldPerf(rec registry.PerfFields) error {
	if !rec.Rank().InRange(e.nprocs) {
		return &MalformedRankError{Rank: rec.Rank(), NProcs: e.nprocs}
	}

	e.perf.TotalBytes += rec.BytesRead() + rec.BytesWritten()

	if rec.Rank().IsShared() {
		e.perf.SharedIOTotalTimeBySlowest += rec.SlowestRankTime()
		return nil
	}

	idx, ok := rec.Rank().Index()
	if !ok || idx >= e.nprocs {
		return &MalformedRankError{Rank: rec.Rank(), NProcs: e.nprocs}
	}

	rwTime := rec.ReadTime() + rec.WriteTime()
	e.perf.RankCumulRWOnlyTime[idx] += rwTime
	e.perf.RankCumulMDOnlyTime[idx] += rec.MetaTime()
	e.perf.RankCumulIOTotalTime[idx] += rwTime + rec.MetaTime()
	return nil
}

// FinalizeFiles classifies every folded file into the access-pattern and
// sharing buckets of spec §4.4 "finalize_files". Files whose aggregated
// record doesn't implement registry.PerfFields (an opaque/BG/Q style
// module) are counted in Total only.
func (e *Engine) FinalizeFiles() FileTally {
	var tally FileTally
	for _, fa := range e.files {
		pf, ok := fa.RecDat.(registry.PerfFields)
		if !ok {
			tally.Total.add(0)
			continue
		}
		tally.add(fa.Type, pf.BytesRead(), pf.BytesWritten(), pf.ReadCalls(), pf.WriteCalls())
	}
	return tally
}

// FinalizePerf computes the workload-wide performance summary of spec
// §4.4 "finalize_perf": the slowest rank (by cumulative I/O time, first
// rank wins ties) and the aggregate time/bandwidth attributed to it.
func (e *Engine) FinalizePerf() PerfResult {
	return finalizePerf(e.perf)
}

// Totals returns the job-wide accumulator folded across every record
// this engine has seen, equivalent to treating the whole job as one file
// (spec §4.4, used for the CLI's --total summary).
func (e *Engine) Totals() *FileAccumulator { return e.totals }

// File returns the per-file accumulator for id, or ok=false if no record
// for that id has been folded.
func (e *Engine) File(id uint64) (*FileAccumulator, bool) {
	fa, ok := e.files[id]
	return fa, ok
}

// Files returns every folded file id. Order is unspecified; callers that
// need determinism should sort.
func (e *Engine) Files() []uint64 {
	ids := make([]uint64, 0, len(e.files))
	for id := range e.files {
		ids = append(ids, id)
	}
	return ids
}

// Reset clears all folded state back to zero while keeping the engine's
// module decoder and rank count, reusing the underlying map/slice storage
// (spec §4.4 "reset"). The CLI builds a fresh Engine per module and does
// not call Reset.
func (e *Engine) Reset() {
	clear(e.files)
	*e.totals = FileAccumulator{}
	e.perf.reset()
}
