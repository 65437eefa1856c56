// Package proc provides raw, dependency-free readers over Linux's /proc
// filesystem: the low-level substrate the process/resource sampler
// (pkg/sampler) walks once per tick.
//
// # What lives here
//
//   - Per-process: ReadStaticInfo (ppid/pgid/comm/state/uid/gid from
//     stat+status), ReadProcStat (cpu jiffies + fault counters),
//     ReadProcIO, ReadProcRSS / ReadProcRSSAnon, ReadProcVSize,
//     ReadProcCgroup, ReadProcChildren.
//   - System-wide: ReadSystemCPU (per-tick aggregate jiffies from
//     /proc/stat), BootTimeSec (btime, the non-batch epoch source),
//     PidMax, ClockTicks, PageSize, ListPIDs.
//
// Every reader takes a single snapshot; none retain state between calls.
// The sampler is responsible for computing deltas, applying filters, and
// grouping results — this package only knows how to parse one file.
//
// # Error handling
//
// A read failing because a process exited mid-walk returns the
// underlying os error (ENOENT); a parse failure on a half-written /proc
// entry is reported through the errors in errs.go. Callers walking the
// whole process table are expected to skip the pid and continue rather
// than fail the tick.
package proc
