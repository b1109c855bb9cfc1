package aggregate

import "github.com/ja7ad/darshan-util/pkg/util"

// PerfAccumulator is the performance accumulator of spec §3: workload-wide
// byte and time totals, plus per-rank timing vectors that distinguish
// metadata-only time from read/write time.
type PerfAccumulator struct {
	TotalBytes                 uint64
	SharedIOTotalTimeBySlowest float64

	RankCumulIOTotalTime []float64
	RankCumulRWOnlyTime  []float64
	RankCumulMDOnlyTime  []float64
}

func newPerfAccumulator(nprocs int) *PerfAccumulator {
	return &PerfAccumulator{
		RankCumulIOTotalTime: make([]float64, nprocs),
		RankCumulRWOnlyTime:  make([]float64, nprocs),
		RankCumulMDOnlyTime:  make([]float64, nprocs),
	}
}

func (p *PerfAccumulator) reset() {
	p.TotalBytes = 0
	p.SharedIOTotalTimeBySlowest = 0
	clear(p.RankCumulIOTotalTime)
	clear(p.RankCumulRWOnlyTime)
	clear(p.RankCumulMDOnlyTime)
}

// PerfResult is the finalized performance metrics of spec §4.4
// finalize_perf: the slowest rank's breakdown, and the workload-wide
// aggregate time/bandwidth attributed to that slowest rank plus whatever
// shared-file time was folded in.
type PerfResult struct {
	TotalBytes             uint64
	SlowestRankIndex       int
	SlowestRankIOTotalTime float64
	SlowestRankMDOnlyTime  float64
	SlowestRankRWOnlyTime  float64

	// AggTimeBySlowest is SlowestRankIOTotalTime + the sum of every
	// shared record's authoritative slowest-rank time.
	AggTimeBySlowest float64

	// AggPerfBySlowest is workload bandwidth in MiB/s attributed to the
	// slowest rank. Zero when AggTimeBySlowest is zero (spec §4.4:
	// "Guard division when both summands are zero" — see
	// finalizePerf below, and the bug-fix note in
	// DESIGN.md about the original's unbraced guard only covering this
	// field and not AggTimeBySlowest itself).
	AggPerfBySlowest float64
}

const bytesPerMiB = 1 << 20

func finalizePerf(perf *PerfAccumulator) PerfResult {
	if len(perf.RankCumulIOTotalTime) == 0 {
		return PerfResult{
			TotalBytes:       perf.TotalBytes,
			AggTimeBySlowest: perf.SharedIOTotalTimeBySlowest,
			AggPerfBySlowest: util.SafeDiv(float64(perf.TotalBytes)/bytesPerMiB, perf.SharedIOTotalTimeBySlowest),
		}
	}

	idx := 0
	best := perf.RankCumulIOTotalTime[0]
	for i, v := range perf.RankCumulIOTotalTime {
		// Strict '>' so the first-seen rank wins ties (spec §4.4).
		if v > best {
			best = v
			idx = i
		}
	}

	aggTime := best + perf.SharedIOTotalTimeBySlowest
	return PerfResult{
		TotalBytes:             perf.TotalBytes,
		SlowestRankIndex:       idx,
		SlowestRankIOTotalTime: best,
		SlowestRankMDOnlyTime:  perf.RankCumulMDOnlyTime[idx],
		SlowestRankRWOnlyTime:  perf.RankCumulRWOnlyTime[idx],
		AggTimeBySlowest:       aggTime,
		AggPerfBySlowest:       util.SafeDiv(float64(perf.TotalBytes)/bytesPerMiB, aggTime),
	}
}
