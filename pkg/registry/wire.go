package registry

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/ja7ad/darshan-util/pkg/types"
)

// wire is the shared little-endian record framing every aggregating
// module decoder uses: a base record (id, rank) followed by a
// fixed-width vector of int64 counters and a fixed-width vector of
// float64 counters (spec §3, "Module Record"). Each module's decoder
// just supplies its own counter counts.
var byteOrder = binary.LittleEndian

func readBase(r io.Reader) (id uint64, rank types.Rank, err error) {
	var idBuf [8]byte
	if _, err = io.ReadFull(r, idBuf[:]); err != nil {
		return 0, 0, err
	}
	id = byteOrder.Uint64(idBuf[:])

	var rankBuf [4]byte
	if _, err = io.ReadFull(r, rankBuf[:]); err != nil {
		return 0, 0, err
	}
	rank = types.Rank(int32(byteOrder.Uint32(rankBuf[:])))
	return id, rank, nil
}

func readInts(r io.Reader, n int) ([]int64, error) {
	out := make([]int64, n)
	buf := make([]byte, 8*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = int64(byteOrder.Uint64(buf[i*8 : i*8+8]))
	}
	return out, nil
}

func readFloats(r io.Reader, n int) ([]float64, error) {
	out := make([]float64, n)
	buf := make([]byte, 8*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = math.Float64frombits(byteOrder.Uint64(buf[i*8 : i*8+8]))
	}
	return out, nil
}

// WriteRecord serializes a base record plus its counter vectors using the
// same framing readBase/readInts/readFloats expect. It is exported so
// tests (and any future log-writer utility) can build fixture streams
// without duplicating the wire format.
func WriteRecord(w io.Writer, id uint64, rank types.Rank, ints []int64, floats []float64) error {
	var idBuf [8]byte
	byteOrder.PutUint64(idBuf[:], id)
	if _, err := w.Write(idBuf[:]); err != nil {
		return err
	}

	var rankBuf [4]byte
	byteOrder.PutUint32(rankBuf[:], uint32(int32(rank)))
	if _, err := w.Write(rankBuf[:]); err != nil {
		return err
	}

	ibuf := make([]byte, 8*len(ints))
	for i, v := range ints {
		byteOrder.PutUint64(ibuf[i*8:i*8+8], uint64(v))
	}
	if _, err := w.Write(ibuf); err != nil {
		return err
	}

	fbuf := make([]byte, 8*len(floats))
	for i, v := range floats {
		byteOrder.PutUint64(fbuf[i*8:i*8+8], math.Float64bits(v))
	}
	_, err := w.Write(fbuf)
	return err
}
