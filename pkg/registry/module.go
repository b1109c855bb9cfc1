package registry

import "fmt"

// ModuleID identifies a Darshan instrumentation module. The numeric values
// are stable identifiers persisted in the log's module map table; they are
// not Go iota-private, since an unrecognized id must still be representable
// (any int32 is a valid ModuleID; String renders unlisted ids as MODULE(n)).
type ModuleID int32

const (
	POSIX ModuleID = iota
	MPIIO
	STDIO
	BGQ
	// There is no constant for unrecognized ids: callers convert the raw
	// id from the log's module map table directly, and for such an id
	// need only report its byte size (spec §4.2).
)

func (m ModuleID) String() string {
	switch m {
	case POSIX:
		return "POSIX"
	case MPIIO:
		return "MPI-IO"
	case STDIO:
		return "STDIO"
	case BGQ:
		return "BG/Q"
	default:
		return fmt.Sprintf("MODULE(%d)", int32(m))
	}
}

// Aggregating reports whether this module participates in the deeper
// per-file/totals aggregation of spec §4.4, versus being pretty-printed
// only (spec §4.2: "Only POSIX, MPI-IO, and STDIO participate in deeper
// aggregation. Other known modules are pretty-printed only.").
func (m ModuleID) Aggregating() bool {
	switch m {
	case POSIX, MPIIO, STDIO:
		return true
	default:
		return false
	}
}
