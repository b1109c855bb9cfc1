package aggregate

// Bucket is one row of the file-count-and-bytes summary spec §4.4
// finalize_files produces: how many files fall in the bucket, and the
// total and largest-single-file byte counts among them.
type Bucket struct {
	Count    int
	Bytes    uint64
	MaxBytes uint64
}

func (b *Bucket) add(bytes uint64) {
	b.Count++
	b.Bytes += bytes
	if bytes > b.MaxBytes {
		b.MaxBytes = bytes
	}
}

// FileTally is the finalize_files result of spec §4.4: every file
// classified into the access-pattern and sharing buckets that the
// stdout file tally block reports.
type FileTally struct {
	Total     Bucket
	ReadOnly  Bucket
	WriteOnly Bucket
	ReadWrite Bucket
	Unique    Bucket
	Shared    Bucket
}

func (t *FileTally) add(typ FileType, bytesRead, bytesWritten uint64, reads, writes int64) {
	total := bytesRead + bytesWritten
	t.Total.add(total)

	switch {
	case reads > 0 && writes > 0:
		t.ReadWrite.add(total)
	case writes > 0:
		t.WriteOnly.add(total)
	case reads > 0:
		t.ReadOnly.add(total)
	}

	if typ.Any(Shared | PartShared) {
		t.Shared.add(total)
	} else if typ.Has(Unique) {
		t.Unique.add(total)
	}
}
