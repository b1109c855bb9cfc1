// Package registry implements the Module Decoder Registry of spec §4.2: a
// dispatch table keyed by module id, where each entry provides record
// decoding, pretty-printing, a schema description, and a pairwise record
// aggregator. The shape mirrors the teacher's Collector dispatch
// (pkg/system/proc/collector.go in the consumption tool, which picks a
// cgroup-version-specific implementation behind one interface); here the
// dispatch key is the module id instead of the detected cgroup mode.
package registry

import (
	"fmt"
	"io"
)

// Decoder is the capability set a module contributes to the registry
// (spec §4.2).
type Decoder interface {
	// DecodeOne pulls the next record from r. It returns io.EOF (wrapped
	// or bare) when the stream is exhausted, matching the spec's
	// "Option<Record> | DecodeError" with end-of-stream as None.
	DecodeOne(r io.Reader) (Record, error)

	// PrintDescription emits a header describing the counter layout for
	// the given schema version.
	PrintDescription(w io.Writer, version string) error

	// PrintRecord emits one line per (record, counter), annotated with
	// the resolved path/mount/fs type (spec §6 stdout format).
	PrintRecord(w io.Writer, rec Record, path, mount, fsType string) error

	// AggregateInto pairwise-folds src into dst's counter layout. When
	// first is true, dst is uninitialized and must be populated from src
	// instead of combined with it (spec §4.2).
	AggregateInto(dst, src Record, first bool) Record
}

// Registry is the dispatch table from module id to Decoder.
type Registry struct {
	decoders map[ModuleID]Decoder
}

// New returns a Registry pre-populated with the three aggregating module
// decoders (POSIX, MPI-IO, STDIO) plus the generic opaque decoder used for
// BG/Q and any other pretty-print-only module.
func New() *Registry {
	reg := &Registry{decoders: make(map[ModuleID]Decoder, 8)}
	reg.Register(POSIX, NewPOSIXDecoder())
	reg.Register(MPIIO, NewMPIIODecoder())
	reg.Register(STDIO, NewSTDIODecoder())
	reg.Register(BGQ, NewOpaqueDecoder(BGQ))
	return reg
}

// Register installs (or replaces) the decoder for a module id.
func (r *Registry) Register(id ModuleID, dec Decoder) {
	r.decoders[id] = dec
}

// Get returns the decoder for id, or ok=false if the module is unknown to
// this registry. Per spec §4.2, unknown module ids are tolerated by the
// caller (the reader reports their byte size and skips the region); this
// method just reports the absence so the caller can do that.
func (r *Registry) Get(id ModuleID) (Decoder, bool) {
	dec, ok := r.decoders[id]
	return dec, ok
}

// OpaqueFor returns a generic pretty-print-only decoder for an id this
// registry has no dedicated entry for, so callers that must still skip or
// describe the region have something to call.
func OpaqueFor(id ModuleID) Decoder { return NewOpaqueDecoder(id) }

func fprintf(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
