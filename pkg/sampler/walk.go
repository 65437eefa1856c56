package sampler

import (
	"fmt"
	"os/user"
	"strconv"

	"github.com/hpctools/sonar/pkg/system/proc"
)

// record is one process as captured by a single walk, before rollup
// grouping, filtering, job attribution, or GPU merge.
type record struct {
	Pid     int
	Ppid    int
	Pgid    int
	Uid     int
	User    string
	Command string

	CPUTicks   uint64 // utime+stime, in clock ticks
	StartTicks uint64 // process start time, in clock ticks since boot

	ResidentBytes uint64
	VirtualBytes  uint64
	ReadBytes     uint64
	WriteBytes    uint64

	CgroupPaths []string

	Rolledup int
}

// walk snapshots every process currently visible in /proc. A process
// that exits mid-walk is silently skipped, per the sampler's error
// semantics; only a failure of the top-level directory listing is
// returned as an error.
func walk() ([]record, error) {
	pids, err := proc.ListPIDs()
	if err != nil {
		return nil, fmt.Errorf("sampler: walk: %w", err)
	}

	out := make([]record, 0, len(pids))
	for _, pid := range pids {
		r, ok := readOne(pid)
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func readOne(pid int) (record, bool) {
	static, err := proc.ReadStaticInfo(pid)
	if err != nil {
		return record{}, false
	}

	utime, stime, _, _, err := proc.ReadProcStat(pid)
	if err != nil {
		return record{}, false
	}
	startTicks, _ := proc.ReadProcStartTime(pid)

	rss, _ := proc.ReadProcRSS(pid)
	vsize, _ := proc.ReadProcVSize(pid)
	readBytes, writeBytes, _ := proc.ReadProcIO(pid)
	cgroupPaths, _ := proc.ReadProcCgroup(pid)

	command := static.Comm
	if static.State == 'Z' {
		command += " <defunct>"
	}

	r := record{
		Pid:           static.Pid,
		Ppid:          static.Ppid,
		Pgid:          static.Pgid,
		Uid:           static.Uid,
		User:          resolveUser(static.Uid),
		Command:       command,
		CPUTicks:      utime + stime,
		StartTicks:    startTicks,
		ResidentBytes: rss,
		VirtualBytes:  vsize,
		ReadBytes:     readBytes,
		WriteBytes:    writeBytes,
		CgroupPaths:   cgroupPaths,
	}
	return r, true
}

// resolveUser looks up uid in the passwd database, falling back to the
// "_user_<uid>" synthetic name the spec calls for when uid is otherwise
// unresolvable (a uid with no passwd entry still names a real user on
// most HPC setups, typically via LDAP/NSS lookups that os/user already
// performs).
func resolveUser(uid int) string {
	u, err := user.LookupId(strconv.Itoa(uid))
	if err != nil || u.Username == "" {
		return "_user_" + strconv.Itoa(uid)
	}
	return u.Username
}
