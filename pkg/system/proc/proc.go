//go:build linux

package proc

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// defaultPidMax is the fallback ceiling for synthesized rollup pids when the
// kernel's configured maximum cannot be read. 4194304 is the largest
// value /proc/sys/kernel/pid_max accepts on 64-bit kernels.
const defaultPidMax = 4194304

// PidMax reads /proc/sys/kernel/pid_max, falling back to defaultPidMax.
func PidMax() int {
	b, err := os.ReadFile("/proc/sys/kernel/pid_max")
	if err != nil {
		return defaultPidMax
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || v <= 0 {
		return defaultPidMax
	}
	return v
}

// BootTimeSec reads the "btime" line of /proc/stat: seconds since the
// epoch at which the kernel booted. It changes only across a reboot,
// which is exactly the signal non-batch job identity keys off of.
func BootTimeSec() (uint64, error) {
	f, err := os.Open("/proc/stat")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fs := strings.Fields(sc.Text())
		if len(fs) == 2 && fs[0] == "btime" {
			v, err := strconv.ParseUint(fs[1], 10, 64)
			return v, err
		}
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, ErrNoBootTime
}

// ListPIDs returns every numeric entry directly under /proc, i.e. every
// process currently visible to this (unprivileged) agent.
func ListPIDs() ([]int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}
	pids := make([]int, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

// StaticInfo carries the fields of /proc/<pid>/stat and /proc/<pid>/status
// that stay (mostly) fixed across the life of a process and are needed to
// place it in the process tree and attribute it to a user/job.
type StaticInfo struct {
	Pid     int
	Ppid    int
	Pgid    int
	Comm    string
	State   byte // first char of the stat `state` field, e.g. 'R', 'S', 'Z'
	Uid     int
	Gid     int
	Threads int
}

// ReadStaticInfo parses /proc/<pid>/stat and /proc/<pid>/status together.
// /proc/<pid>/stat supplies ppid/pgid/comm/state (cheap, single read);
// /proc/<pid>/status supplies the real uid/gid (stat's fields are not
// reliable for that across kernel versions).
func ReadStaticInfo(pid int) (StaticInfo, error) {
	info := StaticInfo{Pid: pid}

	statLine, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return info, err
	}
	line := string(statLine)

	open := strings.IndexByte(line, '(')
	close := strings.LastIndex(line, ")")
	if open < 0 || close < 0 || close < open {
		return info, ErrNoStat
	}
	info.Comm = line[open+1 : close]

	rest := strings.Fields(line[close+2:])
	if len(rest) < 3 {
		return info, ErrShortStat
	}
	info.State = rest[0][0]
	if v, err := strconv.Atoi(rest[1]); err == nil {
		info.Ppid = v
	}
	if v, err := strconv.Atoi(rest[2]); err == nil {
		info.Pgid = v
	}

	statusFile, err := os.Open(fmt.Sprintf("/proc/%d/status", pid))
	if err != nil {
		return info, err
	}
	defer statusFile.Close()

	sc := bufio.NewScanner(statusFile)
	for sc.Scan() {
		t := sc.Text()
		switch {
		case strings.HasPrefix(t, "Uid:"):
			fs := strings.Fields(t)
			if len(fs) >= 2 {
				if v, err := strconv.Atoi(fs[1]); err == nil {
					info.Uid = v
				}
			}
		case strings.HasPrefix(t, "Gid:"):
			fs := strings.Fields(t)
			if len(fs) >= 2 {
				if v, err := strconv.Atoi(fs[1]); err == nil {
					info.Gid = v
				}
			}
		case strings.HasPrefix(t, "Threads:"):
			fs := strings.Fields(t)
			if len(fs) >= 2 {
				if v, err := strconv.Atoi(fs[1]); err == nil {
					info.Threads = v
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return info, err
	}
	return info, nil
}

// ReadProcRSSAnon returns RssAnon from /proc/<pid>/status in bytes,
// preferred over the combined RSS figure because it excludes shared
// file-backed mappings that would otherwise be double-counted across
// every process mapping the same library or data file.
func ReadProcRSSAnon(pid int) (uint64, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/status", pid))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		t := sc.Text()
		if strings.HasPrefix(t, "RssAnon:") {
			fs := strings.Fields(t)
			if len(fs) >= 2 {
				kb, err := strconv.ParseUint(fs[1], 10, 64)
				return kb * 1024, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, ErrNoStatus
}

// ReadProcVSize returns the virtual memory size of a process in bytes,
// from field 23 of /proc/<pid>/stat.
func ReadProcVSize(pid int) (uint64, error) {
	line, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return 0, err
	}
	i := strings.LastIndex(string(line), ") ")
	if i < 0 {
		return 0, ErrNoStat
	}
	fields := strings.Fields(string(line)[i+2:])
	// vsize is field 23 overall => fields[20] relative to the post-comm slice.
	const idx = 20
	if idx >= len(fields) {
		return 0, ErrShortStat
	}
	return strconv.ParseUint(fields[idx], 10, 64)
}

// ReadProcCgroup returns the cgroup path(s) of a process from
// /proc/<pid>/cgroup, one path per line in file order, with the
// hierarchy id and controller list dropped. Callers looking for Slurm job placement scan the returned
// paths for a "/slurm/" or "/system.slice/slurmstepd.scope/job_<id>"
// style segment.
func ReadProcCgroup(pid int) ([]string, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/cgroup", pid))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var paths []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		parts := strings.SplitN(sc.Text(), ":", 3)
		if len(parts) == 3 {
			paths = append(paths, parts[2])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrVanished
	}
	return paths, nil
}

// ClockTicks returns the number of jiffies (clock ticks) per second.
// It first checks the env var CLK_TCK (useful for testing), otherwise
// falls back to 100 (common default).
//
// Note: On real systems, the authoritative way is `sysconf(_SC_CLK_TCK)`,
// but calling that requires cgo. For portability in a pure-Go library,
// this simplified approach is acceptable.
func ClockTicks() int {
	v, _ := strconv.Atoi(os.Getenv("CLK_TCK"))
	if v > 0 {
		return v
	}
	return 100
}

// PageSize returns the system memory page size in bytes.
// Like ClockTicks, it first checks an env override (PAGE_SIZE)
// to ease testing, then falls back to os.Getpagesize().
func PageSize() int {
	if ps := os.Getenv("PAGE_SIZE"); ps != "" {
		if v, _ := strconv.Atoi(ps); v > 0 {
			return v
		}
	}
	return os.Getpagesize()
}

// Exists reports whether a given PID currently exists in /proc.
// It simply checks if /proc/<pid> is a valid directory.
func Exists(pid int) bool {
	_, err := os.Stat(fmt.Sprintf("/proc/%d", pid))
	return err == nil
}

//
// Per-PID readers
//

// ReadProcStat parses /proc/<pid>/stat and extracts four fields:
// - utime: user CPU jiffies
// - stime: system CPU jiffies
// - minflt: minor page faults (no I/O required)
// - majflt: major page faults (required I/O)
//
// Caveats:
//   - Field order is fixed, but comm (2nd field) is in parens and may contain
//     spaces. We strip everything before the closing ") " safely.
//   - Returns uint64 counters (monotonic increasing).
func ReadProcStat(pid int) (utime, stime, minflt, majflt uint64, err error) {
	f, e := os.Open(fmt.Sprintf("/proc/%d/stat", pid))
	if e != nil {
		return 0, 0, 0, 0, e
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return 0, 0, 0, 0, ErrNoStat
	}
	line := sc.Text()

	// Everything before ") " is pid + comm; after that are numeric fields.
	i := strings.LastIndex(line, ") ")
	if i < 0 {
		return 0, 0, 0, 0, ErrNoStat
	}
	fields := strings.Fields(line[i+2:])

	get := func(idx int) (uint64, error) {
		if idx >= len(fields) {
			return 0, ErrShortStat
		}
		return strconv.ParseUint(fields[idx], 10, 64)
	}

	// Indexes relative to fields slice:
	// minflt (10th overall) => fields[7]
	// majflt (12th overall) => fields[9]
	// utime (14th overall) => fields[11]
	// stime (15th overall) => fields[12]
	minflt, _ = get(7)
	majflt, _ = get(9)
	utime, _ = get(11)
	stime, _ = get(12)
	return
}

// ReadProcIO reads /proc/<pid>/io and returns read_bytes and write_bytes.
// These counters are monotonic and in bytes.
//
// Note: Not all processes expose this file (some kernel threads); in that case
// you’ll get an error.
func ReadProcIO(pid int) (readBytes, writeBytes uint64, err error) {
	f, e := os.Open(fmt.Sprintf("/proc/%d/io", pid))
	if e != nil {
		return 0, 0, e
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "read_bytes:") {
			v := strings.TrimSpace(strings.TrimPrefix(line, "read_bytes:"))
			readBytes, _ = strconv.ParseUint(v, 10, 64)
		} else if strings.HasPrefix(line, "write_bytes:") {
			v := strings.TrimSpace(strings.TrimPrefix(line, "write_bytes:"))
			writeBytes, _ = strconv.ParseUint(v, 10, 64)
		}
	}
	return readBytes, writeBytes, sc.Err()
}

// ReadProcRSS returns the Resident Set Size (RSS) in bytes for a PID.
// It prefers smaps_rollup (aggregated, since kernel 4.14) for accuracy.
// If unavailable, falls back to statm’s resident page count.
//
// Returns error if neither source is available.
func ReadProcRSS(pid int) (uint64, error) {
	// Prefer smaps_rollup
	if f, err := os.Open(fmt.Sprintf("/proc/%d/smaps_rollup", pid)); err == nil {
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			if strings.HasPrefix(sc.Text(), "Rss:") {
				fs := strings.Fields(sc.Text())
				if len(fs) >= 2 {
					kb, _ := strconv.ParseUint(fs[1], 10, 64)
					return kb * 1024, nil
				}
			}
		}
	}
	// Fallback: statm field 2 × page size
	if b, err := os.ReadFile(fmt.Sprintf("/proc/%d/statm", pid)); err == nil {
		fs := strings.Fields(string(b))
		if len(fs) >= 2 {
			pages, _ := strconv.ParseUint(fs[1], 10, 64)
			return pages * uint64(PageSize()), nil
		}
	}
	return 0, ErrNoRSS
}

// ReadProcStartTime returns field 22 of /proc/<pid>/stat: the process's
// start time in clock ticks since boot. Combined with BootTimeSec and
// ClockTicks, this gives the process's absolute start time, which
// cpu_avg needs to turn cumulative cpu-seconds into an average rate.
func ReadProcStartTime(pid int) (uint64, error) {
	line, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return 0, err
	}
	i := strings.LastIndex(string(line), ") ")
	if i < 0 {
		return 0, ErrNoStat
	}
	fields := strings.Fields(string(line)[i+2:])
	// starttime (22nd overall) => fields[19] relative to the post-comm slice.
	const idx = 19
	if idx >= len(fields) {
		return 0, ErrShortStat
	}
	return strconv.ParseUint(fields[idx], 10, 64)
}

//
// System-level readers
//

// ReadSystemCPU parses /proc/stat for the aggregate CPU line and returns:
// - active: user + nice + system + irq + softirq + steal
// - total:  active + idle + iowait
//
// These are jiffy counters (monotonic increasing). You need to take
// deltas between samples to compute utilization.
func ReadSystemCPU() (active, total uint64, err error) {
	f, e := os.Open("/proc/stat")
	if e != nil {
		return 0, 0, e
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fs := strings.Fields(sc.Text())
		if len(fs) == 0 || fs[0] != "cpu" {
			continue
		}
		if len(fs) < 8 {
			return 0, 0, ErrNoCPU
		}
		var vals []uint64
		for _, s := range fs[1:] {
			v, _ := strconv.ParseUint(s, 10, 64)
			vals = append(vals, v)
		}
		active = vals[0] + vals[1] + vals[2] + vals[5] + vals[6] + vals[7]
		total = active + vals[3] + vals[4]
		return active, total, nil
	}
	return 0, 0, ErrNoCPU
}

// ReadPerCPUTotals parses the per-core "cpuN" lines of /proc/stat and
// returns, for each core in order, the cumulative jiffies spent in any
// state since boot. This is the node-wide CPU array a sample envelope
// reports; callers take deltas between ticks to get utilization.
func ReadPerCPUTotals() ([]uint64, error) {
	f, err := os.Open("/proc/stat")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var totals []uint64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fs := strings.Fields(sc.Text())
		if len(fs) < 2 || !strings.HasPrefix(fs[0], "cpu") || fs[0] == "cpu" {
			continue
		}
		var sum uint64
		for _, s := range fs[1:] {
			v, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				continue
			}
			sum += v
		}
		totals = append(totals, sum)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if totals == nil {
		return nil, ErrNoCPU
	}
	return totals, nil
}

// ReadMemInfo reads total, free, and reclaimable buffers/cache memory
// in bytes from /proc/meminfo.
func ReadMemInfo() (totalBytes, freeBytes, reclaimableBytes uint64, err error) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0, 0, err
	}
	defer f.Close()

	var buffers, cached, sReclaimable uint64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fs := strings.Fields(sc.Text())
		if len(fs) < 2 {
			continue
		}
		v, perr := strconv.ParseUint(fs[1], 10, 64)
		if perr != nil {
			continue
		}
		switch strings.TrimSuffix(fs[0], ":") {
		case "MemTotal":
			totalBytes = v * 1024
		case "MemFree":
			freeBytes = v * 1024
		case "Buffers":
			buffers = v * 1024
		case "Cached":
			cached = v * 1024
		case "SReclaimable":
			sReclaimable = v * 1024
		}
	}
	if err := sc.Err(); err != nil {
		return 0, 0, 0, err
	}
	reclaimableBytes = buffers + cached + sReclaimable
	if totalBytes == 0 {
		return 0, 0, 0, ErrNoMemInfo
	}
	return totalBytes, freeBytes, reclaimableBytes, nil
}

//
// Process tree
//

// ReadProcChildren returns the direct child PIDs of a process by reading
// /proc/<pid>/task/*/children files. Each children file lists space-separated
// PIDs for that thread’s children.
//
// Notes:
//   - Kernel 3.5+ exposes this interface.
//   - We deduplicate across threads by using a set.
//   - If no children are found, returns error.
func ReadProcChildren(pid int) ([]int, error) {
	glob := fmt.Sprintf("/proc/%d/task/*/children", pid)
	paths, _ := filepath.Glob(glob)
	set := map[int]struct{}{}
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		for _, s := range strings.Fields(string(b)) {
			if id, err := strconv.Atoi(s); err == nil {
				set[id] = struct{}{}
			}
		}
	}
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, ErrNoChildren
	}
	return out, nil
}
