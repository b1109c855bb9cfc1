package registry

import (
	"io"

	"github.com/ja7ad/darshan-util/pkg/types"
)

// MPI-IO int counter indices. Read/write calls are split across four
// variants; spec §4.4 requires summing all four per direction when
// deriving read-only/write-only/read-write classification.
const (
	mpiioIndepReads = iota
	mpiioIndepWrites
	mpiioCollReads
	mpiioCollWrites
	mpiioSplitReads
	mpiioSplitWrites
	mpiioNonblockingReads
	mpiioNonblockingWrites
	mpiioBytesRead
	mpiioBytesWritten
	mpiioIntCount
)

const (
	mpiioMetaTime = iota
	mpiioReadTime
	mpiioWriteTime
	mpiioSlowestRankTime
	mpiioFloatCount
)

// MPIIORecord is the MPI-IO module's record shape. Offset is unused for
// this module (spec §3).
type MPIIORecord struct {
	base
	Ints   [mpiioIntCount]int64
	Floats [mpiioFloatCount]float64
}

func (r *MPIIORecord) BytesRead() uint64        { return uint64(r.Ints[mpiioBytesRead]) }
func (r *MPIIORecord) BytesWritten() uint64     { return uint64(r.Ints[mpiioBytesWritten]) }
func (r *MPIIORecord) MetaTime() float64        { return r.Floats[mpiioMetaTime] }
func (r *MPIIORecord) ReadTime() float64        { return r.Floats[mpiioReadTime] }
func (r *MPIIORecord) WriteTime() float64       { return r.Floats[mpiioWriteTime] }
func (r *MPIIORecord) SlowestRankTime() float64 { return r.Floats[mpiioSlowestRankTime] }

func (r *MPIIORecord) ReadCalls() int64 {
	return r.Ints[mpiioIndepReads] + r.Ints[mpiioCollReads] + r.Ints[mpiioSplitReads] + r.Ints[mpiioNonblockingReads]
}

func (r *MPIIORecord) WriteCalls() int64 {
	return r.Ints[mpiioIndepWrites] + r.Ints[mpiioCollWrites] + r.Ints[mpiioSplitWrites] + r.Ints[mpiioNonblockingWrites]
}

type mpiioDecoder struct{}

// NewMPIIODecoder returns the Decoder for the MPI-IO module.
func NewMPIIODecoder() Decoder { return mpiioDecoder{} }

func (mpiioDecoder) DecodeOne(r io.Reader) (Record, error) {
	id, rank, err := readBase(r)
	if err != nil {
		return nil, err
	}
	ints, err := readInts(r, mpiioIntCount)
	if err != nil {
		return nil, &DecodeError{Module: MPIIO, Version: "current", Err: err}
	}
	floats, err := readFloats(r, mpiioFloatCount)
	if err != nil {
		return nil, &DecodeError{Module: MPIIO, Version: "current", Err: err}
	}
	rec := &MPIIORecord{base: base{recordID: id, rank: rank}}
	copy(rec.Ints[:], ints)
	copy(rec.Floats[:], floats)
	return rec, nil
}

func (mpiioDecoder) PrintDescription(w io.Writer, version string) error {
	return fprintf(w, "# MPI-IO module version %s: indep/coll/split/nonblocking reads+writes, bytes_read bytes_written meta_time read_time write_time\n", version)
}

func (mpiioDecoder) PrintRecord(w io.Writer, rec Record, path, mount, fsType string) error {
	r, ok := rec.(*MPIIORecord)
	if !ok {
		return fprintInvalidRecord(w, MPIIO)
	}
	names := []string{
		"INDEP_READS", "INDEP_WRITES", "COLL_READS", "COLL_WRITES",
		"SPLIT_READS", "SPLIT_WRITES", "NB_READS", "NB_WRITES",
		"BYTES_READ", "BYTES_WRITTEN",
	}
	for i, name := range names {
		if i == mpiioBytesRead || i == mpiioBytesWritten {
			if err := fprintf(w, "%s %s %d %s %s %s %s %s\n", MPIIO, r.Rank(), r.RecordID(), name, types.Bytes(r.Ints[i]).Humanized(), path, mount, fsType); err != nil {
				return err
			}
			continue
		}
		if err := fprintf(w, "%s %s %d %s %d %s %s %s\n", MPIIO, r.Rank(), r.RecordID(), name, r.Ints[i], path, mount, fsType); err != nil {
			return err
		}
	}
	floatNames := []string{"META_TIME", "READ_TIME", "WRITE_TIME"}
	for i, name := range floatNames {
		if err := fprintf(w, "%s %s %d %s %f %s %s %s\n", MPIIO, r.Rank(), r.RecordID(), name, r.Floats[i], path, mount, fsType); err != nil {
			return err
		}
	}
	return nil
}

func (mpiioDecoder) AggregateInto(dst, src Record, first bool) Record {
	s := src.(*MPIIORecord)
	if first || dst == nil {
		out := *s
		return &out
	}
	d := dst.(*MPIIORecord)
	out := *d
	for i := range out.Ints {
		out.Ints[i] += s.Ints[i]
	}
	out.Floats[mpiioMetaTime] += s.Floats[mpiioMetaTime]
	out.Floats[mpiioReadTime] += s.Floats[mpiioReadTime]
	out.Floats[mpiioWriteTime] += s.Floats[mpiioWriteTime]
	if s.Rank().IsShared() {
		out.Floats[mpiioSlowestRankTime] = s.Floats[mpiioSlowestRankTime]
	}
	return &out
}
