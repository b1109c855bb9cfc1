// Package job parses the decompressed job region of a Darshan log (spec
// §3 "Job-wide" fields, §6 "Job header"): the run's identity, timing,
// free-form metadata, and mount table.
package job

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ja7ad/darshan-util/pkg/resolver"
)

// MetadataEntry is one `# metadata: KEY = VALUE` line (spec §6: "split on
// the first '=' only"), kept in file order since darshan metadata can
// repeat keys.
type MetadataEntry struct {
	Key   string
	Value string
}

// Job is the parsed job region: the run header plus its metadata and
// mount table.
type Job struct {
	Exe       string
	UID       uint64
	JobID     uint64
	StartTime int64 // unix epoch seconds
	EndTime   int64
	NProcs    int
	Metadata  []MetadataEntry
	Mounts    *resolver.MountTable
}

// RunTime is EndTime - StartTime in seconds (spec §6, "run time").
func (j *Job) RunTime() int64 { return j.EndTime - j.StartTime }

// Parse reads the job region's line-based layout: one "key\tvalue" line
// per fixed field, zero or more "meta\tkey=value" lines, and zero or
// more "mount\tpath\tfstype" lines.
func Parse(r io.Reader) (*Job, error) {
	j := &Job{}
	var mountLines []string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		tab := strings.IndexByte(line, '\t')
		if tab < 0 {
			return nil, fmt.Errorf("job: malformed line %q", line)
		}
		key, rest := line[:tab], line[tab+1:]

		var err error
		switch key {
		case "exe":
			j.Exe = rest
		case "uid":
			j.UID, err = strconv.ParseUint(rest, 10, 64)
		case "jobid":
			j.JobID, err = strconv.ParseUint(rest, 10, 64)
		case "start_time":
			j.StartTime, err = strconv.ParseInt(rest, 10, 64)
		case "end_time":
			j.EndTime, err = strconv.ParseInt(rest, 10, 64)
		case "nprocs":
			j.NProcs, err = strconv.Atoi(rest)
		case "meta":
			eq := strings.IndexByte(rest, '=')
			if eq < 0 {
				return nil, fmt.Errorf("job: malformed metadata line %q", line)
			}
			j.Metadata = append(j.Metadata, MetadataEntry{Key: rest[:eq], Value: rest[eq+1:]})
		case "mount":
			mountLines = append(mountLines, rest)
		default:
			return nil, fmt.Errorf("job: unknown field %q", key)
		}
		if err != nil {
			return nil, fmt.Errorf("job: field %q: %w", key, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	mounts, err := resolver.LoadMountTable(strings.NewReader(strings.Join(mountLines, "\n")))
	if err != nil {
		return nil, fmt.Errorf("job: mount table: %w", err)
	}
	j.Mounts = mounts
	return j, nil
}
