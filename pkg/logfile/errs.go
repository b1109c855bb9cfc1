package logfile

import "fmt"

// OpenError wraps a failure to open or read the raw log file (spec §4.1).
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string { return fmt.Sprintf("open log %q: %v", e.Path, e.Err) }
func (e *OpenError) Unwrap() error { return e.Err }

// FormatError reports an invalid magic or header (spec §4.1).
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("log %q has invalid format: %s", e.Path, e.Reason)
}

// UnsupportedVersionError reports a log version with no known decoder set
// (spec §4.1).
type UnsupportedVersionError struct {
	Path    string
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("log %q has unsupported version %q", e.Path, e.Version)
}

// PartialModuleDataError reports a module region the runtime truncated
// (spec §4.1 "Partial flag", §7: fatal unless the caller opted into
// --show-incomplete, in which case it is downgraded to a warning).
type PartialModuleDataError struct {
	Module string
}

func (e *PartialModuleDataError) Error() string {
	return fmt.Sprintf("module %s has partial (truncated) data", e.Module)
}
