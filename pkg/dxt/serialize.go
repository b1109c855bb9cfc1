package dxt

import (
	"encoding/binary"
	"io"
	"math"
)

var byteOrder = binary.LittleEndian

// Serialize writes the shutdown buffer layout of spec §6: for each
// non-empty file record, the record header (id, write_count, read_count)
// followed by its write segments then its read segments, bit-exact and
// contiguous. It mirrors the registry package's wire framing rather than
// inventing a second format for the same kind of data.
func Serialize(w io.Writer, records []FileRecord) error {
	for _, rec := range records {
		if err := writeFileRecordHeader(w, rec); err != nil {
			return err
		}
		for _, seg := range rec.WriteSegments {
			if err := writeSegment(w, seg); err != nil {
				return err
			}
		}
		for _, seg := range rec.ReadSegments {
			if err := writeSegment(w, seg); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeFileRecordHeader(w io.Writer, rec FileRecord) error {
	var buf [sizeofFileRecord]byte
	byteOrder.PutUint64(buf[0:8], rec.RecordID)
	byteOrder.PutUint64(buf[8:16], uint64(rec.WriteCount()))
	byteOrder.PutUint64(buf[16:24], uint64(rec.ReadCount()))
	_, err := w.Write(buf[:])
	return err
}

func writeSegment(w io.Writer, seg SegmentInfo) error {
	var buf [sizeofSegmentInfo]byte
	byteOrder.PutUint64(buf[0:8], seg.Offset)
	byteOrder.PutUint64(buf[8:16], seg.Length)
	byteOrder.PutUint64(buf[16:24], math.Float64bits(seg.StartTime))
	byteOrder.PutUint64(buf[24:32], math.Float64bits(seg.EndTime))
	_, err := w.Write(buf[:])
	return err
}
