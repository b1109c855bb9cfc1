// Package resolver implements the Name Resolver of spec §4.3: it
// materializes the record-id -> path table and maps each path to its
// mount point and filesystem type by longest-prefix match.
package resolver

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ja7ad/darshan-util/pkg/registry"
)

// MountEntry is one row of the mount table (spec §3).
type MountEntry struct {
	Path   string
	FSType string
}

// NameTable maps a record id to the canonicalized path the runtime
// recorded for it (spec §3, "Name Record").
type NameTable struct {
	byID map[uint64]string
}

// LoadNameTable parses the decompressed name-hash region. Each line is
// "<record_id>\t<path>"; blank lines are skipped.
func LoadNameTable(r io.Reader) (*NameTable, error) {
	nt := &NameTable{byID: make(map[uint64]string)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		tab := strings.IndexByte(line, '\t')
		if tab < 0 {
			return nil, fmt.Errorf("resolver: malformed name record %q", line)
		}
		id, err := strconv.ParseUint(line[:tab], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("resolver: malformed record id %q: %w", line[:tab], err)
		}
		nt.byID[id] = line[tab+1:]
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nt, nil
}

// Lookup resolves id to a path, or reports ok=false if the name table has
// no entry for it.
func (nt *NameTable) Lookup(id uint64) (string, bool) {
	p, ok := nt.byID[id]
	return p, ok
}

// Len reports how many names are loaded.
func (nt *NameTable) Len() int { return len(nt.byID) }

// MountTable is the sorted-by-length set of known mount points, used for
// longest-prefix matching (spec §4.3).
type MountTable struct {
	entries []MountEntry // sorted by descending len(Path)
}

// LoadMountTable parses "<path>\t<fstype>" lines, one mount entry per
// line.
func LoadMountTable(r io.Reader) (*MountTable, error) {
	var entries []MountEntry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		tab := strings.IndexByte(line, '\t')
		if tab < 0 {
			return nil, fmt.Errorf("resolver: malformed mount entry %q", line)
		}
		entries = append(entries, MountEntry{Path: line[:tab], FSType: line[tab+1:]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return len(entries[i].Path) > len(entries[j].Path) })
	return &MountTable{entries: entries}, nil
}

// unknownMount and unknownFS are spec §4.3's fallback when no mount
// entry's path is a prefix of the record's path.
const (
	unknownMount = "UNKNOWN"
	unknownFS    = "UNKNOWN"
)

// Entries returns the mount table rows, longest-path-first.
func (mt *MountTable) Entries() []MountEntry { return mt.entries }

// Resolve returns the (mount, fs_type) pair for path by longest-prefix
// match (spec §4.3). Entries are pre-sorted longest-first, so the first
// match found is the longest one.
func (mt *MountTable) Resolve(path string) (mount, fsType string) {
	for _, e := range mt.entries {
		if strings.HasPrefix(path, e.Path) {
			return e.Path, e.FSType
		}
	}
	return unknownMount, unknownFS
}

// Resolver combines a NameTable and MountTable to annotate a record's
// output line (spec §4.2 PrintRecord's path/mount/fsType args).
type Resolver struct {
	Names  *NameTable
	Mounts *MountTable
}

// New builds a Resolver from already-loaded tables.
func New(names *NameTable, mounts *MountTable) *Resolver {
	return &Resolver{Names: names, Mounts: mounts}
}

// Path resolves a record id to a path, falling back to a module-specific
// placeholder (spec §4.3: "the BG/Q module is allowed a synthetic
// 'virtual' record name") when the name table has no entry.
func (res *Resolver) Path(id uint64, module registry.ModuleID) string {
	if p, ok := res.Names.Lookup(id); ok {
		return p
	}
	return registry.VirtualName(module)
}

// MountFor resolves the (mount, fs_type) pair for a path.
func (res *Resolver) MountFor(path string) (mount, fsType string) {
	return res.Mounts.Resolve(path)
}
