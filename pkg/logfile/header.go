package logfile

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ja7ad/darshan-util/pkg/registry"
)

// CompressionKind is the compression codec applied independently to each
// region of the log (spec §2, §4.1). The codec itself is an external
// collaborator (spec §1); this package only needs to pick the matching
// stdlib decompressor.
type CompressionKind uint8

const (
	NoCompression CompressionKind = iota
	Zlib
	Bzip2
	UnknownCompression
)

func (c CompressionKind) String() string {
	switch c {
	case NoCompression:
		return "NONE"
	case Zlib:
		return "ZLIB"
	case Bzip2:
		return "BZIP2"
	default:
		return "UNKNOWN"
	}
}

var magic = [8]byte{'D', 'A', 'R', 'S', 'H', 'A', 'N', '\x00'}

// versionFieldLen is the fixed on-disk width of the version string field.
const versionFieldLen = 8

// Region is a byte extent of the compressed file, used for the job and
// name-hash sections.
type Region struct {
	Offset int64
	Length int64
}

// ModuleRegion is one entry of the header's module map table (spec §4.1):
// a module id, its compressed byte extent, its schema version, and
// whether the runtime truncated (i.e. only partially wrote) this
// module's records.
type ModuleRegion struct {
	ID      registry.ModuleID
	Region  Region
	Version string
	Partial bool
}

// Header is the uncompressed prefix of a Darshan log (spec §6, "Log file
// layout"): a format version, the job's compression kind, and the byte
// extents of every region that follows.
type Header struct {
	Version     string
	Compression CompressionKind
	Job         Region
	NameHash    Region
	Modules     []ModuleRegion
}

// supportedVersions enumerates the log format versions this module knows
// how to drive a decoder set for (spec §4.1, "UnsupportedVersion if the
// log version cannot be mapped to any known decoder set").
var supportedVersions = map[string]bool{
	"3.00": true,
	"3.10": true,
	"3.41": true,
}

// quirkyVersions carries the advisory, never-fatal warnings spec §4.1
// calls for ("Emits version-warning diagnostics when the log version is
// known to be quirky").
var quirkyVersions = map[string]string{
	"3.00": "log version 3.00 is known to omit STDIO seek counters",
}

func readString(r io.Reader, n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	end := len(buf)
	for end > 0 && buf[end-1] == 0 {
		end--
	}
	return string(buf[:end]), nil
}

func writeString(w io.Writer, s string, n int) error {
	buf := make([]byte, n)
	copy(buf, s)
	_, err := w.Write(buf)
	return err
}

func readRegion(r io.Reader) (Region, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Region{}, err
	}
	return Region{
		Offset: int64(binary.LittleEndian.Uint64(buf[0:8])),
		Length: int64(binary.LittleEndian.Uint64(buf[8:16])),
	}, nil
}

func writeRegion(w io.Writer, reg Region) error {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(reg.Offset))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(reg.Length))
	_, err := w.Write(buf[:])
	return err
}

// ReadHeader decodes the fixed-layout uncompressed header from r. It
// rejects a bad magic but does not check the version against the
// supported set; callers (Open) apply that policy.
func ReadHeader(r io.Reader) (Header, error) {
	var gotMagic [8]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return Header{}, err
	}
	if gotMagic != magic {
		return Header{}, fmt.Errorf("bad magic %q", gotMagic)
	}

	version, err := readString(r, versionFieldLen)
	if err != nil {
		return Header{}, err
	}

	var compByte [1]byte
	if _, err := io.ReadFull(r, compByte[:]); err != nil {
		return Header{}, err
	}

	job, err := readRegion(r)
	if err != nil {
		return Header{}, err
	}
	nameHash, err := readRegion(r)
	if err != nil {
		return Header{}, err
	}

	var countBuf [4]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return Header{}, err
	}
	count := binary.LittleEndian.Uint32(countBuf[:])

	modules := make([]ModuleRegion, 0, count)
	for i := uint32(0); i < count; i++ {
		var idBuf [4]byte
		if _, err := io.ReadFull(r, idBuf[:]); err != nil {
			return Header{}, err
		}
		reg, err := readRegion(r)
		if err != nil {
			return Header{}, err
		}
		modVersion, err := readString(r, versionFieldLen)
		if err != nil {
			return Header{}, err
		}
		var partialByte [1]byte
		if _, err := io.ReadFull(r, partialByte[:]); err != nil {
			return Header{}, err
		}
		modules = append(modules, ModuleRegion{
			ID:      registry.ModuleID(int32(binary.LittleEndian.Uint32(idBuf[:]))),
			Region:  reg,
			Version: modVersion,
			Partial: partialByte[0] != 0,
		})
	}

	return Header{
		Version:     version,
		Compression: CompressionKind(compByte[0]),
		Job:         job,
		NameHash:    nameHash,
		Modules:     modules,
	}, nil
}

// WriteHeader encodes h using the same layout ReadHeader expects. It is
// exported so tests (and any future log-writer utility) can build fixture
// logs without duplicating the wire format.
func WriteHeader(w io.Writer, h Header) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := writeString(w, h.Version, versionFieldLen); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(h.Compression)}); err != nil {
		return err
	}
	if err := writeRegion(w, h.Job); err != nil {
		return err
	}
	if err := writeRegion(w, h.NameHash); err != nil {
		return err
	}
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(h.Modules)))
	if _, err := w.Write(countBuf[:]); err != nil {
		return err
	}
	for _, m := range h.Modules {
		var idBuf [4]byte
		binary.LittleEndian.PutUint32(idBuf[:], uint32(int32(m.ID)))
		if _, err := w.Write(idBuf[:]); err != nil {
			return err
		}
		if err := writeRegion(w, m.Region); err != nil {
			return err
		}
		if err := writeString(w, m.Version, versionFieldLen); err != nil {
			return err
		}
		partial := byte(0)
		if m.Partial {
			partial = 1
		}
		if _, err := w.Write([]byte{partial}); err != nil {
			return err
		}
	}
	return nil
}
