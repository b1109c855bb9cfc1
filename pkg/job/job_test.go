package job

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullJob(t *testing.T) {
	raw := strings.Join([]string{
		"exe\t/usr/bin/myapp --in data",
		"uid\t1000",
		"jobid\t42",
		"start_time\t1700000000",
		"end_time\t1700000060",
		"nprocs\t4",
		"meta\tlib_ver=3.4.1",
		"meta\th5-exists=yes",
		"mount\t/\text4",
		"mount\t/mnt/lustre\tlustre",
	}, "\n")

	j, err := Parse(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "/usr/bin/myapp --in data", j.Exe)
	assert.Equal(t, uint64(1000), j.UID)
	assert.Equal(t, uint64(42), j.JobID)
	assert.Equal(t, int64(1700000000), j.StartTime)
	assert.Equal(t, int64(1700000060), j.EndTime)
	assert.Equal(t, int64(60), j.RunTime())
	assert.Equal(t, 4, j.NProcs)

	require.Len(t, j.Metadata, 2)
	assert.Equal(t, MetadataEntry{Key: "lib_ver", Value: "3.4.1"}, j.Metadata[0])

	mount, fsType := j.Mounts.Resolve("/mnt/lustre/scratch/out.dat")
	assert.Equal(t, "/mnt/lustre", mount)
	assert.Equal(t, "lustre", fsType)
}

func TestParse_MetadataSplitsOnFirstEqualsOnly(t *testing.T) {
	j, err := Parse(strings.NewReader("meta\tkey=a=b=c\n"))
	require.NoError(t, err)
	require.Len(t, j.Metadata, 1)
	assert.Equal(t, "a=b=c", j.Metadata[0].Value)
}

func TestParse_MalformedLine(t *testing.T) {
	_, err := Parse(strings.NewReader("no-tab-here\n"))
	assert.Error(t, err)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse(strings.NewReader("bogus\tvalue\n"))
	assert.Error(t, err)
}

func TestParse_NoMounts(t *testing.T) {
	j, err := Parse(strings.NewReader("exe\t/bin/true\n"))
	require.NoError(t, err)
	mount, fsType := j.Mounts.Resolve("/any/path")
	assert.Equal(t, "UNKNOWN", mount)
	assert.Equal(t, "UNKNOWN", fsType)
}
