package dxt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize_LayoutIsHeaderThenWriteThenReadSegments(t *testing.T) {
	records := []FileRecord{
		{
			RecordID:      7,
			WriteSegments: []SegmentInfo{{Offset: 0, Length: 4096, StartTime: 0.0, EndTime: 0.1}},
			ReadSegments:  []SegmentInfo{{Offset: 4096, Length: 2048, StartTime: 0.2, EndTime: 0.3}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Serialize(&buf, records))

	wantLen := sizeofFileRecord + 2*sizeofSegmentInfo
	assert.Equal(t, wantLen, buf.Len())

	got := buf.Bytes()
	assert.Equal(t, uint64(7), byteOrder.Uint64(got[0:8]))
	assert.Equal(t, uint64(1), byteOrder.Uint64(got[8:16]), "write_count")
	assert.Equal(t, uint64(1), byteOrder.Uint64(got[16:24]), "read_count")

	writeSeg := got[sizeofFileRecord : sizeofFileRecord+sizeofSegmentInfo]
	assert.Equal(t, uint64(4096), byteOrder.Uint64(writeSeg[8:16]), "write segment length")

	readSeg := got[sizeofFileRecord+sizeofSegmentInfo:]
	assert.Equal(t, uint64(4096), byteOrder.Uint64(readSeg[0:8]), "read segment offset")
}

func TestSerialize_SkipsNothingAndPreservesOrder(t *testing.T) {
	b := NewBudget(GlobalBudgetBytes)
	m := NewManager(b)
	m.TraceWrite(1, 0, 100, 0, 1)
	m.TraceWrite(1, 100, 100, 1, 2)
	m.TraceRead(1, 200, 100, 2, 3)

	records := m.Shutdown()
	require.Len(t, records, 1)

	var buf bytes.Buffer
	require.NoError(t, Serialize(&buf, records))
	assert.Equal(t, sizeofFileRecord+3*sizeofSegmentInfo, buf.Len())

	got := buf.Bytes()
	segOffset := func(i int) uint64 {
		start := sizeofFileRecord + i*sizeofSegmentInfo
		return byteOrder.Uint64(got[start : start+8])
	}
	assert.Equal(t, uint64(0), segOffset(0), "first write segment")
	assert.Equal(t, uint64(100), segOffset(1), "second write segment")
	assert.Equal(t, uint64(200), segOffset(2), "read segment after the writes")
}
