package registry

import (
	"io"

	"github.com/ja7ad/darshan-util/pkg/types"
)

// POSIX int counter indices.
const (
	posixOpens = iota
	posixReads
	posixWrites
	posixSeeks
	posixStats
	posixBytesRead
	posixBytesWritten
	posixIntCount
)

// POSIX float counter indices.
const (
	posixMetaTime = iota
	posixReadTime
	posixWriteTime
	posixSlowestRankTime
	posixFloatCount
)

// POSIXRecord is the POSIX module's record shape (spec §3).
type POSIXRecord struct {
	base
	Ints   [posixIntCount]int64
	Floats [posixFloatCount]float64
}

func (r *POSIXRecord) BytesRead() uint64        { return uint64(r.Ints[posixBytesRead]) }
func (r *POSIXRecord) BytesWritten() uint64     { return uint64(r.Ints[posixBytesWritten]) }
func (r *POSIXRecord) MetaTime() float64        { return r.Floats[posixMetaTime] }
func (r *POSIXRecord) ReadTime() float64        { return r.Floats[posixReadTime] }
func (r *POSIXRecord) WriteTime() float64       { return r.Floats[posixWriteTime] }
func (r *POSIXRecord) SlowestRankTime() float64 { return r.Floats[posixSlowestRankTime] }
func (r *POSIXRecord) ReadCalls() int64         { return r.Ints[posixReads] }
func (r *POSIXRecord) WriteCalls() int64        { return r.Ints[posixWrites] }

type posixDecoder struct{}

// NewPOSIXDecoder returns the Decoder for the POSIX module.
func NewPOSIXDecoder() Decoder { return posixDecoder{} }

func (posixDecoder) DecodeOne(r io.Reader) (Record, error) {
	id, rank, err := readBase(r)
	if err != nil {
		return nil, err
	}
	ints, err := readInts(r, posixIntCount)
	if err != nil {
		return nil, &DecodeError{Module: POSIX, Version: "current", Err: err}
	}
	floats, err := readFloats(r, posixFloatCount)
	if err != nil {
		return nil, &DecodeError{Module: POSIX, Version: "current", Err: err}
	}
	rec := &POSIXRecord{base: base{recordID: id, rank: rank}}
	copy(rec.Ints[:], ints)
	copy(rec.Floats[:], floats)
	return rec, nil
}

func (posixDecoder) PrintDescription(w io.Writer, version string) error {
	return fprintf(w, "# POSIX module version %s: opens reads writes seeks stats bytes_read bytes_written meta_time read_time write_time\n", version)
}

func (posixDecoder) PrintRecord(w io.Writer, rec Record, path, mount, fsType string) error {
	r, ok := rec.(*POSIXRecord)
	if !ok {
		return fprintInvalidRecord(w, POSIX)
	}
	names := []string{"OPENS", "READS", "WRITES", "SEEKS", "STATS", "BYTES_READ", "BYTES_WRITTEN"}
	for i, name := range names {
		if i == posixBytesRead || i == posixBytesWritten {
			if err := fprintf(w, "%s %s %d %s %s %s %s %s\n", POSIX, r.Rank(), r.RecordID(), name, types.Bytes(r.Ints[i]).Humanized(), path, mount, fsType); err != nil {
				return err
			}
			continue
		}
		if err := fprintf(w, "%s %s %d %s %d %s %s %s\n", POSIX, r.Rank(), r.RecordID(), name, r.Ints[i], path, mount, fsType); err != nil {
			return err
		}
	}
	floatNames := []string{"META_TIME", "READ_TIME", "WRITE_TIME"}
	for i, name := range floatNames {
		if err := fprintf(w, "%s %s %d %s %f %s %s %s\n", POSIX, r.Rank(), r.RecordID(), name, r.Floats[i], path, mount, fsType); err != nil {
			return err
		}
	}
	return nil
}

func (posixDecoder) AggregateInto(dst, src Record, first bool) Record {
	s := src.(*POSIXRecord)
	if first || dst == nil {
		out := *s
		return &out
	}
	d := dst.(*POSIXRecord)
	out := *d
	for i := range out.Ints {
		out.Ints[i] += s.Ints[i]
	}
	out.Floats[posixMetaTime] += s.Floats[posixMetaTime]
	out.Floats[posixReadTime] += s.Floats[posixReadTime]
	out.Floats[posixWriteTime] += s.Floats[posixWriteTime]
	// SlowestRankTime is authoritative from whichever shared record
	// supplied it, not summed; the newest value wins.
	if s.Rank().IsShared() {
		out.Floats[posixSlowestRankTime] = s.Floats[posixSlowestRankTime]
	}
	return &out
}

func fprintInvalidRecord(w io.Writer, id ModuleID) error {
	return fprintf(w, "# <invalid %s record>\n", id)
}
