package aggregate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/darshan-util/pkg/registry"
	"github.com/ja7ad/darshan-util/pkg/types"
)

// posixRecord builds a decoded POSIX record through the public
// registry API, mirroring how the log reader would hand the engine a
// record, instead of poking at registry's unexported fields.
func posixRecord(t *testing.T, id uint64, rank types.Rank, ints []int64, floats []float64) *registry.POSIXRecord {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, registry.WriteRecord(&buf, id, rank, ints, floats))
	rec, err := registry.NewPOSIXDecoder().DecodeOne(&buf)
	require.NoError(t, err)
	return rec.(*registry.POSIXRecord)
}

func TestEngine_Fold_UniqueFile(t *testing.T) {
	e := NewEngine(registry.NewPOSIXDecoder(), 4)
	rec := posixRecord(t, 1, types.Rank(0), []int64{1, 1, 0, 0, 0, 100, 0}, []float64{0.1, 0.2, 0, 0})

	require.NoError(t, e.Fold(rec))

	fa, ok := e.File(1)
	require.True(t, ok)
	assert.True(t, fa.Type.Has(Unique))
	assert.False(t, fa.Type.Has(Shared))
	assert.Equal(t, 1, fa.Procs)
	assert.InDelta(t, 0.3, fa.CumulIOTotalTime, 1e-9)
	assert.InDelta(t, 0.3, fa.SlowestIOTotalTime, 1e-9)
}

func TestEngine_Fold_PartSharedAcrossRanks(t *testing.T) {
	e := NewEngine(registry.NewPOSIXDecoder(), 4)
	r0 := posixRecord(t, 1, types.Rank(0), []int64{1, 1, 0, 0, 0, 100, 0}, []float64{0.1, 0.1, 0, 0})
	r1 := posixRecord(t, 1, types.Rank(1), []int64{1, 1, 0, 0, 0, 50, 0}, []float64{0.1, 0.5, 0, 0})

	require.NoError(t, e.Fold(r0))
	require.NoError(t, e.Fold(r1))

	fa, ok := e.File(1)
	require.True(t, ok)
	assert.True(t, fa.Type.Has(PartShared))
	assert.False(t, fa.Type.Has(Unique))
	assert.Equal(t, 2, fa.Procs)
	// slowest is the max per-rank io total: rank0=0.2, rank1=0.6.
	assert.InDelta(t, 0.6, fa.SlowestIOTotalTime, 1e-9)
	assert.InDelta(t, 0.8, fa.CumulIOTotalTime, 1e-9)
}

// TestEngine_Fold_SharedOverwritesSlowestButCumulStillAccumulates locks
// in the documented quirk: a Shared record's io total is folded into
// CumulIOTotalTime like any other record, but it overwrites rather than
// max-combines into SlowestIOTotalTime.
func TestEngine_Fold_SharedOverwritesSlowestButCumulStillAccumulates(t *testing.T) {
	e := NewEngine(registry.NewPOSIXDecoder(), 4)
	perRank := posixRecord(t, 1, types.Rank(0), []int64{1, 1, 0, 0, 0, 100, 0}, []float64{0.1, 0.9, 0, 0})
	shared := posixRecord(t, 1, types.Shared, []int64{4, 4, 0, 0, 0, 400, 0}, []float64{0, 0, 0, 2.0})

	require.NoError(t, e.Fold(perRank))
	require.NoError(t, e.Fold(shared))

	fa, ok := e.File(1)
	require.True(t, ok)
	assert.True(t, fa.Type.Has(Shared))
	assert.False(t, fa.Type.Has(Unique), "SHARED and UNIQUE are mutually exclusive")
	assert.Equal(t, 4, fa.Procs, "shared record forces Procs to nprocs")
	assert.Equal(t, 2.0, fa.SlowestIOTotalTime, "shared record's authoritative time overwrites, not max-combines")
	assert.InDelta(t, 1.0, fa.CumulIOTotalTime, 1e-9, "shared record's own io total (0) still folds into cumul")
}

func TestEngine_Fold_RejectsOutOfRangeRank(t *testing.T) {
	e := NewEngine(registry.NewPOSIXDecoder(), 2)
	rec := posixRecord(t, 1, types.Rank(5), []int64{0, 0, 0, 0, 0, 0, 0}, []float64{0, 0, 0, 0})

	err := e.Fold(rec)
	var rankErr *MalformedRankError
	assert.ErrorAs(t, err, &rankErr)

	_, ok := e.File(1)
	assert.False(t, ok)
}

func TestEngine_FoldPerf_SlowestRankTieBreaksFirst(t *testing.T) {
	e := NewEngine(registry.NewPOSIXDecoder(), 3)
	r0 := posixRecord(t, 1, types.Rank(0), []int64{0, 0, 0, 0, 0, 0, 0}, []float64{0.1, 0.4, 0, 0})
	r1 := posixRecord(t, 1, types.Rank(1), []int64{0, 0, 0, 0, 0, 0, 0}, []float64{0.1, 0.4, 0, 0})
	r2 := posixRecord(t, 1, types.Rank(2), []int64{0, 0, 0, 0, 0, 0, 0}, []float64{0.0, 0.1, 0, 0})

	require.NoError(t, e.FoldPerf(r0))
	require.NoError(t, e.FoldPerf(r1))
	require.NoError(t, e.FoldPerf(r2))

	result := e.FinalizePerf()
	assert.Equal(t, 0, result.SlowestRankIndex, "rank 0 and 1 tie; first-seen wins")
	assert.InDelta(t, 0.5, result.SlowestRankIOTotalTime, 1e-9)
}

func TestEngine_FoldPerf_SharedAddsToAggTimeNotRankSlots(t *testing.T) {
	e := NewEngine(registry.NewPOSIXDecoder(), 2)
	r0 := posixRecord(t, 1, types.Rank(0), []int64{0, 0, 0, 0, 0, 100, 0}, []float64{0.0, 0.5, 0, 0})
	shared := posixRecord(t, 1, types.Shared, []int64{0, 0, 0, 0, 0, 0, 0}, []float64{0, 0, 0, 3.0})

	require.NoError(t, e.FoldPerf(r0))
	require.NoError(t, e.FoldPerf(shared))

	result := e.FinalizePerf()
	assert.InDelta(t, 0.5, result.SlowestRankIOTotalTime, 1e-9)
	assert.InDelta(t, 3.5, result.AggTimeBySlowest, 1e-9)
	assert.InDelta(t, float64(100)/(1<<20)/3.5, result.AggPerfBySlowest, 1e-9)
}

func TestEngine_FinalizePerf_ZeroTimeGuardsDivision(t *testing.T) {
	e := NewEngine(registry.NewPOSIXDecoder(), 1)
	result := e.FinalizePerf()
	assert.Equal(t, 0.0, result.AggTimeBySlowest)
	assert.Equal(t, 0.0, result.AggPerfBySlowest)
}

func TestEngine_FinalizeFiles_BucketsByAccessPatternAndSharing(t *testing.T) {
	e := NewEngine(registry.NewPOSIXDecoder(), 2)

	readOnly := posixRecord(t, 1, types.Rank(0), []int64{1, 4, 0, 0, 0, 400, 0}, []float64{0, 0.1, 0, 0})
	writeOnly := posixRecord(t, 2, types.Rank(0), []int64{1, 0, 4, 0, 0, 0, 800}, []float64{0, 0, 0.1, 0})
	shared := posixRecord(t, 3, types.Shared, []int64{1, 2, 2, 0, 0, 100, 100}, []float64{0, 0, 0, 1.0})

	require.NoError(t, e.Fold(readOnly))
	require.NoError(t, e.Fold(writeOnly))
	require.NoError(t, e.Fold(shared))

	tally := e.FinalizeFiles()
	assert.Equal(t, 3, tally.Total.Count)
	assert.Equal(t, 1, tally.ReadOnly.Count)
	assert.Equal(t, 1, tally.WriteOnly.Count)
	assert.Equal(t, 1, tally.ReadWrite.Count, "the shared record reads and writes")
	assert.Equal(t, 2, tally.Unique.Count)
	assert.Equal(t, 1, tally.Shared.Count)
	assert.Equal(t, uint64(400), tally.ReadOnly.MaxBytes)
}

func TestEngine_Reset_ClearsFoldedStateForRefold(t *testing.T) {
	e := NewEngine(registry.NewPOSIXDecoder(), 2)
	rec := posixRecord(t, 1, types.Rank(0), []int64{1, 1, 0, 0, 0, 100, 0}, []float64{0.1, 0.2, 0, 0})
	require.NoError(t, e.Fold(rec))
	require.NoError(t, e.FoldPerf(rec))

	e.Reset()

	assert.Empty(t, e.Files())
	assert.Equal(t, FileAccumulator{}, *e.Totals())
	assert.Equal(t, PerfResult{}, e.FinalizePerf())

	// Refolding after reset reproduces byte-identical results to a fresh
	// engine, proving Reset doesn't leak state through reused storage.
	fresh := NewEngine(registry.NewPOSIXDecoder(), 2)
	require.NoError(t, fresh.Fold(rec))
	require.NoError(t, e.Fold(rec))

	faFresh, _ := fresh.File(1)
	faReset, _ := e.File(1)
	assert.Equal(t, faFresh, faReset)
}

func TestEngine_Fold_AndFoldTwice_Idempotence(t *testing.T) {
	e1 := NewEngine(registry.NewPOSIXDecoder(), 2)
	e2 := NewEngine(registry.NewPOSIXDecoder(), 2)
	rec := posixRecord(t, 1, types.Rank(0), []int64{1, 1, 0, 0, 0, 100, 0}, []float64{0.1, 0.2, 0, 0})

	require.NoError(t, e1.Fold(rec))

	require.NoError(t, e2.Fold(rec))
	e2.Reset()
	require.NoError(t, e2.Fold(rec))

	fa1, _ := e1.File(1)
	fa2, _ := e2.File(1)
	assert.Equal(t, fa1, fa2)
}
