package dxt

// initialSegmentCapacity is the starting size of a direction's segment
// buffer (spec §4.5, "each write/read buffer starts at 64 segments, then
// doubles").
const initialSegmentCapacity = 64

// FileRecord is the per-file DXT trace state: a base record id plus two
// independently growing sequences of captured segments (spec §3, "DXT
// File Record").
type FileRecord struct {
	RecordID uint64

	WriteSegments []SegmentInfo
	ReadSegments  []SegmentInfo

	// writeCap/readCap track the buffer's nominal capacity target
	// (doubling on growth) separately from len(WriteSegments), since a
	// budget-starved growth request may grant less than a full doubling
	// (spec §4.5, "Geometric growth with budget").
	writeCap int
	readCap  int
}

// sizeofFileRecord is the serialized size of a FileRecord's fixed header
// (record id plus write/read counts), excluding its segments (spec §6).
// The spec's DXT serialization layout comment mentions `ost_ids` between
// the record and the write traces; the code does not write them, and
// this implementation mirrors the code, not the comment.
const sizeofFileRecord = 8 + 8 + 8 // RecordID + write_count + read_count

// WriteCount reports how many write segments have actually been
// recorded (as opposed to the buffer's nominal capacity).
func (f *FileRecord) WriteCount() int { return len(f.WriteSegments) }

// ReadCount reports how many read segments have actually been recorded.
func (f *FileRecord) ReadCount() int { return len(f.ReadSegments) }
