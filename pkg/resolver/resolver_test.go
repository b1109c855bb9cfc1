package resolver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/darshan-util/pkg/registry"
)

func TestLoadNameTable(t *testing.T) {
	nt, err := LoadNameTable(strings.NewReader("1\t/mnt/a/file.txt\n2\t/mnt/b/other.dat\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, nt.Len())

	p, ok := nt.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "/mnt/a/file.txt", p)

	_, ok = nt.Lookup(99)
	assert.False(t, ok)
}

func TestLoadNameTable_Malformed(t *testing.T) {
	_, err := LoadNameTable(strings.NewReader("no-tab-here\n"))
	assert.Error(t, err)
}

func TestLoadMountTable_LongestPrefixMatch(t *testing.T) {
	mt, err := LoadMountTable(strings.NewReader("/\text4\n/mnt/lustre\tlustre\n/mnt/lustre/scratch\tlustre\n"))
	require.NoError(t, err)

	mount, fsType := mt.Resolve("/mnt/lustre/scratch/job1/out.dat")
	assert.Equal(t, "/mnt/lustre/scratch", mount)
	assert.Equal(t, "lustre", fsType)

	mount, fsType = mt.Resolve("/mnt/lustre/other/out.dat")
	assert.Equal(t, "/mnt/lustre", mount)
	assert.Equal(t, "lustre", fsType)

	mount, fsType = mt.Resolve("/home/user/file")
	assert.Equal(t, "/", mount)
	assert.Equal(t, "ext4", fsType)
}

func TestMountTable_NoMatch(t *testing.T) {
	mt, err := LoadMountTable(strings.NewReader("/mnt/lustre\tlustre\n"))
	require.NoError(t, err)

	mount, fsType := mt.Resolve("/totally/unrelated/path")
	assert.Equal(t, unknownMount, mount)
	assert.Equal(t, unknownFS, fsType)
}

func TestResolver_Path_FallsBackToVirtualName(t *testing.T) {
	nt, err := LoadNameTable(strings.NewReader("1\t/mnt/a/file.txt\n"))
	require.NoError(t, err)
	mt, err := LoadMountTable(strings.NewReader("/mnt/a\text4\n"))
	require.NoError(t, err)
	res := New(nt, mt)

	assert.Equal(t, "/mnt/a/file.txt", res.Path(1, registry.POSIX))
	assert.Equal(t, "<BG/Q-virtual>", res.Path(404, registry.BGQ))
	assert.Equal(t, "<unresolved>", res.Path(404, registry.POSIX))

	mount, fsType := res.MountFor("/mnt/a/file.txt")
	assert.Equal(t, "/mnt/a", mount)
	assert.Equal(t, "ext4", fsType)
}
