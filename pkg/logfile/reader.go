// Package logfile implements the Log Reader of spec §4.1: it opens a log
// file, validates the header, and exposes the compressed job, name-hash,
// and per-module regions as decompressed byte streams.
package logfile

import (
	"compress/bzip2"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/ja7ad/darshan-util/pkg/registry"
)

// Log is a handle on an opened, header-validated log file.
type Log struct {
	path       string
	f          *os.File
	header     Header
	headerSize int64
}

// Open validates the header of the log at path and returns a handle plus
// any advisory version-warning diagnostics (spec §4.1). It never returns
// both a non-nil *Log and a non-nil error.
func Open(path string) (*Log, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &OpenError{Path: path, Err: err}
	}

	h, err := ReadHeader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, &FormatError{Path: path, Reason: err.Error()}
	}

	headerSize, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		_ = f.Close()
		return nil, nil, &FormatError{Path: path, Reason: err.Error()}
	}

	if !supportedVersions[h.Version] {
		_ = f.Close()
		return nil, nil, &UnsupportedVersionError{Path: path, Version: h.Version}
	}

	var warnings []string
	if msg, quirky := quirkyVersions[h.Version]; quirky {
		warnings = append(warnings, msg)
	}

	return &Log{path: path, f: f, header: h, headerSize: headerSize}, warnings, nil
}

// Close releases the underlying file handle.
func (l *Log) Close() error { return l.f.Close() }

// Version returns the log-format version string (spec §4.1).
func (l *Log) Version() string { return l.header.Version }

// Compression returns the compression kind applied to every region.
func (l *Log) Compression() CompressionKind { return l.header.Compression }

// Job returns the job region's compressed byte extent.
func (l *Log) Job() Region { return l.header.Job }

// NameHash returns the name-hash region's compressed byte extent.
func (l *Log) NameHash() Region { return l.header.NameHash }

// HeaderSize reports the byte size of the uncompressed header prefix
// this log actually had on disk (spec §6, "Log file region sizes:
// header bytes").
func (l *Log) HeaderSize() int64 { return l.headerSize }

// Modules returns the per-module region table, including unknown module
// ids (spec §4.2: "the reader reports their byte size in diagnostics").
func (l *Log) Modules() []ModuleRegion { return l.header.Modules }

// ModuleByID returns the region for a specific module id, or ok=false if
// the log has no region for it.
func (l *Log) ModuleByID(id registry.ModuleID) (ModuleRegion, bool) {
	for _, m := range l.header.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return ModuleRegion{}, false
}

// JobReader returns the decompressed job region stream.
func (l *Log) JobReader() (io.Reader, error) { return l.regionReader(l.header.Job) }

// NameHashReader returns the decompressed name-hash region stream.
func (l *Log) NameHashReader() (io.Reader, error) { return l.regionReader(l.header.NameHash) }

// ModuleReader returns the decompressed stream for a module's region.
func (l *Log) ModuleReader(id registry.ModuleID) (io.Reader, bool, error) {
	m, ok := l.ModuleByID(id)
	if !ok {
		return nil, false, nil
	}
	r, err := l.regionReader(m.Region)
	return r, true, err
}

func (l *Log) regionReader(reg Region) (io.Reader, error) {
	if _, err := l.f.Seek(reg.Offset, io.SeekStart); err != nil {
		return nil, err
	}
	raw := io.LimitReader(l.f, reg.Length)
	return decompress(l.header.Compression, raw)
}

func decompress(kind CompressionKind, r io.Reader) (io.Reader, error) {
	switch kind {
	case NoCompression:
		return r, nil
	case Zlib:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zlib: %w", err)
		}
		return zr, nil
	case Bzip2:
		return bzip2.NewReader(r), nil
	default:
		return nil, fmt.Errorf("unsupported compression kind %q", kind)
	}
}

// ValidateRegions decompresses the first byte of the job, name-hash, and
// every module region concurrently, surfacing a corrupt or truncated
// region before the caller commits to a full parse pass. Each region is
// independent (different offsets, different decompressor state), so a
// bounded fan-out is a natural fit — the parser itself stays
// single-threaded per spec §5; this check runs once, before any
// accumulator exists.
func (l *Log) ValidateRegions(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)

	check := func(name string, reg Region) func() error {
		return func() error {
			if reg.Length == 0 {
				return nil
			}
			r, err := l.regionReaderAt(reg)
			if err != nil {
				return fmt.Errorf("%s region: %w", name, err)
			}
			var probe [1]byte
			if _, err := r.Read(probe[:]); err != nil && err != io.EOF {
				return fmt.Errorf("%s region: %w", name, err)
			}
			return nil
		}
	}

	g.Go(check("job", l.header.Job))
	g.Go(check("name-hash", l.header.NameHash))
	for _, m := range l.header.Modules {
		m := m
		g.Go(check(m.ID.String(), m.Region))
	}
	return g.Wait()
}

// regionReaderAt opens an independent file descriptor for reg so that
// concurrent ValidateRegions goroutines never share (and race on) the
// single *os.File's seek position used by regionReader.
func (l *Log) regionReaderAt(reg Region) (io.Reader, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(reg.Offset, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, err
	}
	raw := io.LimitReader(&closingReader{f}, reg.Length)
	return decompress(l.header.Compression, raw)
}

// closingReader closes its underlying file the first time Read reports an
// error (including io.EOF), so the short-lived validation descriptor
// opened by regionReaderAt doesn't leak past a single probe read.
type closingReader struct {
	f *os.File
}

func (c *closingReader) Read(p []byte) (int, error) {
	n, err := c.f.Read(p)
	if err != nil {
		_ = c.f.Close()
	}
	return n, err
}
