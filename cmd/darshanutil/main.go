package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ja7ad/darshan-util/pkg/aggregate"
	"github.com/ja7ad/darshan-util/pkg/job"
	"github.com/ja7ad/darshan-util/pkg/logfile"
	"github.com/ja7ad/darshan-util/pkg/registry"
	"github.com/ja7ad/darshan-util/pkg/resolver"
)

// usageError marks a command-line misuse (spec §7 "UsageError prints
// usage and exits 1"), distinct from every other failure kind which
// exits nonzero but without the usage text.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

type options struct {
	base           bool
	total          bool
	file           bool
	perf           bool
	all            bool
	showIncomplete bool
}

func main() {
	var o options

	root := &cobra.Command{
		Use:   "darshanutil LOGFILE",
		Short: "Summarize a Darshan I/O characterization log",
		Long: `darshanutil decodes a Darshan log's per-module records, reconstructs
each file's access profile, and prints job, file, and performance summaries.

Examples:
  darshanutil run.darshan
  darshanutil --file --perf run.darshan
  darshanutil --all run.darshan`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return &usageError{msg: err.Error()}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), o, args[0])
		},
		SilenceUsage: true,
	}

	root.Flags().BoolVar(&o.base, "base", false, "print per-module record dump (default if no other flag is given)")
	root.Flags().BoolVar(&o.total, "total", false, "print the job-wide totals block")
	root.Flags().BoolVar(&o.file, "file", false, "print the file tally block")
	root.Flags().BoolVar(&o.perf, "perf", false, "print the performance block")
	root.Flags().BoolVar(&o.all, "all", false, "equivalent to --base --total --file --perf --show-incomplete")
	root.Flags().BoolVar(&o.showIncomplete, "show-incomplete", false, "downgrade partial-module-data to a warning instead of a fatal error")

	if err := root.Execute(); err != nil {
		var usage *usageError
		if ok := errorsAsUsage(err, &usage); ok {
			fmt.Fprintln(os.Stderr, usage.msg)
			_ = root.Usage()
			os.Exit(1)
		}
		slog.Error(err.Error())
		os.Exit(2)
	}
}

func errorsAsUsage(err error, target **usageError) bool {
	ue, ok := err.(*usageError)
	if !ok {
		return false
	}
	*target = ue
	return true
}

func run(ctx context.Context, w io.Writer, o options, path string) error {
	if o.all {
		o.base, o.total, o.file, o.perf, o.showIncomplete = true, true, true, true, true
	}
	if !o.base && !o.total && !o.file && !o.perf {
		o.base = true
	}

	log, warnings, err := logfile.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()

	for _, msg := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
	}

	if err := log.ValidateRegions(ctx); err != nil {
		return err
	}

	jr, err := log.JobReader()
	if err != nil {
		return err
	}
	jb, err := job.Parse(jr)
	if err != nil {
		return err
	}

	nr, err := log.NameHashReader()
	if err != nil {
		return err
	}
	names, err := resolver.LoadNameTable(nr)
	if err != nil {
		return err
	}
	res := resolver.New(names, jb.Mounts)

	printJobHeader(w, log, jb)
	printRegionSizes(w, log)
	printMountTable(w, jb)

	if len(log.Modules()) == 0 {
		fmt.Fprintln(w, "# no module data available.")
		return nil
	}

	reg := registry.New()
	engines := make(map[registry.ModuleID]*aggregate.Engine)

	for _, m := range log.Modules() {
		if m.Partial {
			if !o.showIncomplete {
				return &logfile.PartialModuleDataError{Module: m.ID.String()}
			}
			fmt.Fprintf(os.Stderr, "warning: %s has partial data; continuing (--show-incomplete)\n", m.ID)
		}

		dec, ok := reg.Get(m.ID)
		if !ok {
			// Unknown module id: its byte size is already listed with the
			// region sizes; the region itself is skipped.
			continue
		}

		var eng *aggregate.Engine
		if m.ID.Aggregating() {
			eng = aggregate.NewEngine(dec, jb.NProcs)
			engines[m.ID] = eng
		}

		if err := processModule(w, log, dec, eng, m, res, o); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", m.ID, err)
			continue
		}
	}

	if o.total {
		printTotals(w, engines)
	}
	if o.file {
		printFileTallies(w, engines)
	}
	if o.perf {
		printPerf(w, engines)
	}

	return nil
}

func processModule(
	w io.Writer,
	log *logfile.Log,
	dec registry.Decoder,
	eng *aggregate.Engine,
	m logfile.ModuleRegion,
	res *resolver.Resolver,
	o options,
) error {
	r, ok, err := log.ModuleReader(m.ID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if o.base {
		if err := dec.PrintDescription(w, m.Version); err != nil {
			return err
		}
	}

	for {
		rec, err := dec.DecodeOne(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return &registry.DecodeError{Module: m.ID, Version: m.Version, Err: err}
		}

		path := res.Path(rec.RecordID(), m.ID)
		mount, fsType := res.MountFor(path)

		if o.base {
			if err := dec.PrintRecord(w, rec, path, mount, fsType); err != nil {
				return err
			}
		}

		if eng != nil {
			pf, ok := rec.(registry.PerfFields)
			if !ok {
				continue
			}
			if err := eng.Fold(pf); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
				continue
			}
			if err := eng.FoldPerf(pf); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		}
	}
	return nil
}

func printJobHeader(w io.Writer, log *logfile.Log, jb *job.Job) {
	fmt.Fprintf(w, "# log version: %s\n", log.Version())
	fmt.Fprintf(w, "# compression: %s\n", log.Compression())
	fmt.Fprintf(w, "# exe: %s\n", jb.Exe)
	fmt.Fprintf(w, "# uid: %d\n", jb.UID)
	fmt.Fprintf(w, "# jobid: %d\n", jb.JobID)
	fmt.Fprintf(w, "# start_time: %d %s\n", jb.StartTime, time.Unix(jb.StartTime, 0).UTC().Format(time.UnixDate))
	fmt.Fprintf(w, "# end_time: %d %s\n", jb.EndTime, time.Unix(jb.EndTime, 0).UTC().Format(time.UnixDate))
	fmt.Fprintf(w, "# nprocs: %d\n", jb.NProcs)
	fmt.Fprintf(w, "# run time: %d\n", jb.RunTime())
	for _, md := range jb.Metadata {
		fmt.Fprintf(w, "# metadata: %s = %s\n", md.Key, md.Value)
	}
}

func printRegionSizes(w io.Writer, log *logfile.Log) {
	fmt.Fprintf(w, "# header bytes: %d\n", log.HeaderSize())
	fmt.Fprintf(w, "# job bytes: %d\n", log.Job().Length)
	fmt.Fprintf(w, "# record-table bytes: %d\n", log.NameHash().Length)
	for _, m := range log.Modules() {
		fmt.Fprintf(w, "# module bytes: %s %d version %s\n", m.ID, m.Region.Length, m.Version)
	}
}

func printMountTable(w io.Writer, jb *job.Job) {
	for _, e := range jb.Mounts.Entries() {
		fmt.Fprintf(w, "# mount entry:\t%s\t%s\n", e.Path, e.FSType)
	}
}

func printTotals(w io.Writer, engines map[registry.ModuleID]*aggregate.Engine) {
	for _, id := range sortedModuleIDs(engines) {
		t := engines[id].Totals()
		fmt.Fprintf(w, "# %s totals\n", id)
		fmt.Fprintf(w, "total_procs: %d\n", t.Procs)
		fmt.Fprintf(w, "total_cumul_io_total_time: %f\n", t.CumulIOTotalTime)
		fmt.Fprintf(w, "total_slowest_io_total_time: %f\n", t.SlowestIOTotalTime)
	}
}

func printFileTallies(w io.Writer, engines map[registry.ModuleID]*aggregate.Engine) {
	for _, id := range sortedModuleIDs(engines) {
		tally := engines[id].FinalizeFiles()
		fmt.Fprintf(w, "# %s file tally\n", id)
		printBucket(w, "total", tally.Total)
		printBucket(w, "read_only", tally.ReadOnly)
		printBucket(w, "write_only", tally.WriteOnly)
		printBucket(w, "read_write", tally.ReadWrite)
		printBucket(w, "unique", tally.Unique)
		printBucket(w, "shared", tally.Shared)
	}
}

func printBucket(w io.Writer, name string, b aggregate.Bucket) {
	fmt.Fprintf(w, "%s: %d %d %d\n", name, b.Count, b.Bytes, b.MaxBytes)
}

func printPerf(w io.Writer, engines map[registry.ModuleID]*aggregate.Engine) {
	for _, id := range sortedModuleIDs(engines) {
		r := engines[id].FinalizePerf()
		fmt.Fprintf(w, "# %s performance\n", id)
		fmt.Fprintf(w, "total_bytes: %d\n", r.TotalBytes)
		fmt.Fprintf(w, "slowest_rank: %d\n", r.SlowestRankIndex)
		fmt.Fprintf(w, "slowest_rank_io_total_time: %f\n", r.SlowestRankIOTotalTime)
		fmt.Fprintf(w, "slowest_rank_md_only_time: %f\n", r.SlowestRankMDOnlyTime)
		fmt.Fprintf(w, "slowest_rank_rw_only_time: %f\n", r.SlowestRankRWOnlyTime)
		fmt.Fprintf(w, "agg_time_by_slowest: %f\n", r.AggTimeBySlowest)
		fmt.Fprintf(w, "agg_perf_by_slowest: %f\n", r.AggPerfBySlowest)
	}
}

func sortedModuleIDs(engines map[registry.ModuleID]*aggregate.Engine) []registry.ModuleID {
	ids := make([]registry.ModuleID, 0, len(engines))
	for id := range engines {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
