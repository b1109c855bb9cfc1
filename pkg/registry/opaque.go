package registry

import (
	"encoding/binary"
	"io"
)

// OpaqueRecord is used for every module that isn't one of the three
// aggregating modules (spec §4.2: "Other known modules are pretty-printed
// only"). Its payload is an opaque byte blob; the registry never
// interprets it, only reports its size.
type OpaqueRecord struct {
	base
	Payload []byte
}

type opaqueDecoder struct {
	module ModuleID
}

// NewOpaqueDecoder returns a Decoder that treats every record as an
// opaque length-prefixed blob: record_id(8) + rank(4) + len(4) + payload.
// It's used for BG/Q and any other known-but-not-aggregated module, and
// is also what the registry hands back for module ids it has no
// dedicated entry for (spec §4.2).
func NewOpaqueDecoder(module ModuleID) Decoder { return opaqueDecoder{module: module} }

func (d opaqueDecoder) DecodeOne(r io.Reader) (Record, error) {
	id, rank, err := readBase(r)
	if err != nil {
		return nil, err
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, &DecodeError{Module: d.module, Version: "opaque", Err: err}
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, &DecodeError{Module: d.module, Version: "opaque", Err: err}
	}
	return &OpaqueRecord{base: base{recordID: id, rank: rank}, Payload: payload}, nil
}

func (d opaqueDecoder) PrintDescription(w io.Writer, version string) error {
	return fprintf(w, "# %s module version %s: opaque payload (pretty-print only)\n", d.module, version)
}

func (d opaqueDecoder) PrintRecord(w io.Writer, rec Record, path, mount, fsType string) error {
	r, ok := rec.(*OpaqueRecord)
	if !ok {
		return fprintInvalidRecord(w, d.module)
	}
	return fprintf(w, "%s %s %d PAYLOAD_BYTES %d %s %s %s\n", d.module, r.Rank(), r.RecordID(), len(r.Payload), path, mount, fsType)
}

// AggregateInto is never invoked by the Aggregation Engine for opaque
// modules (spec §4.2: they are pretty-printed only, not folded), but the
// registry interface requires every Decoder to implement it. It returns
// src unchanged so a misuse is at worst a no-op rather than a panic.
func (d opaqueDecoder) AggregateInto(dst, src Record, first bool) Record {
	return src
}

// VirtualName is the synthetic path substituted when a module's record id
// has no entry in the name table (spec §4.3: "the BG/Q module is allowed a
// synthetic 'virtual' record name"). Other opaque modules fall back to a
// generic placeholder.
func VirtualName(module ModuleID) string {
	if module == BGQ {
		return "<BG/Q-virtual>"
	}
	return "<unresolved>"
}
