package registry

import (
	"io"

	"github.com/ja7ad/darshan-util/pkg/types"
)

const (
	stdioOpens = iota
	stdioReads
	stdioWrites
	stdioSeeks
	stdioBytesRead
	stdioBytesWritten
	stdioIntCount
)

const (
	stdioMetaTime = iota
	stdioReadTime
	stdioWriteTime
	stdioSlowestRankTime
	stdioFloatCount
)

// STDIORecord is the STDIO module's record shape.
type STDIORecord struct {
	base
	Ints   [stdioIntCount]int64
	Floats [stdioFloatCount]float64
}

func (r *STDIORecord) BytesRead() uint64        { return uint64(r.Ints[stdioBytesRead]) }
func (r *STDIORecord) BytesWritten() uint64     { return uint64(r.Ints[stdioBytesWritten]) }
func (r *STDIORecord) MetaTime() float64        { return r.Floats[stdioMetaTime] }
func (r *STDIORecord) ReadTime() float64        { return r.Floats[stdioReadTime] }
func (r *STDIORecord) WriteTime() float64       { return r.Floats[stdioWriteTime] }
func (r *STDIORecord) SlowestRankTime() float64 { return r.Floats[stdioSlowestRankTime] }
func (r *STDIORecord) ReadCalls() int64         { return r.Ints[stdioReads] }
func (r *STDIORecord) WriteCalls() int64        { return r.Ints[stdioWrites] }

type stdioDecoder struct{}

// NewSTDIODecoder returns the Decoder for the STDIO module.
func NewSTDIODecoder() Decoder { return stdioDecoder{} }

func (stdioDecoder) DecodeOne(r io.Reader) (Record, error) {
	id, rank, err := readBase(r)
	if err != nil {
		return nil, err
	}
	ints, err := readInts(r, stdioIntCount)
	if err != nil {
		return nil, &DecodeError{Module: STDIO, Version: "current", Err: err}
	}
	floats, err := readFloats(r, stdioFloatCount)
	if err != nil {
		return nil, &DecodeError{Module: STDIO, Version: "current", Err: err}
	}
	rec := &STDIORecord{base: base{recordID: id, rank: rank}}
	copy(rec.Ints[:], ints)
	copy(rec.Floats[:], floats)
	return rec, nil
}

func (stdioDecoder) PrintDescription(w io.Writer, version string) error {
	return fprintf(w, "# STDIO module version %s: opens reads writes seeks bytes_read bytes_written meta_time read_time write_time\n", version)
}

func (stdioDecoder) PrintRecord(w io.Writer, rec Record, path, mount, fsType string) error {
	r, ok := rec.(*STDIORecord)
	if !ok {
		return fprintInvalidRecord(w, STDIO)
	}
	names := []string{"OPENS", "READS", "WRITES", "SEEKS", "BYTES_READ", "BYTES_WRITTEN"}
	for i, name := range names {
		if i == stdioBytesRead || i == stdioBytesWritten {
			if err := fprintf(w, "%s %s %d %s %s %s %s %s\n", STDIO, r.Rank(), r.RecordID(), name, types.Bytes(r.Ints[i]).Humanized(), path, mount, fsType); err != nil {
				return err
			}
			continue
		}
		if err := fprintf(w, "%s %s %d %s %d %s %s %s\n", STDIO, r.Rank(), r.RecordID(), name, r.Ints[i], path, mount, fsType); err != nil {
			return err
		}
	}
	floatNames := []string{"META_TIME", "READ_TIME", "WRITE_TIME"}
	for i, name := range floatNames {
		if err := fprintf(w, "%s %s %d %s %f %s %s %s\n", STDIO, r.Rank(), r.RecordID(), name, r.Floats[i], path, mount, fsType); err != nil {
			return err
		}
	}
	return nil
}

func (stdioDecoder) AggregateInto(dst, src Record, first bool) Record {
	s := src.(*STDIORecord)
	if first || dst == nil {
		out := *s
		return &out
	}
	d := dst.(*STDIORecord)
	out := *d
	for i := range out.Ints {
		out.Ints[i] += s.Ints[i]
	}
	out.Floats[stdioMetaTime] += s.Floats[stdioMetaTime]
	out.Floats[stdioReadTime] += s.Floats[stdioReadTime]
	out.Floats[stdioWriteTime] += s.Floats[stdioWriteTime]
	if s.Rank().IsShared() {
		out.Floats[stdioSlowestRankTime] = s.Floats[stdioSlowestRankTime]
	}
	return &out
}
