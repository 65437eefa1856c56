//go:build linux

package cgroup

import (
	"regexp"
	"strconv"
)

// jobPattern matches the job_<id> segment Slurm's cgroup plugin writes
// under both the v1 "/slurm/uid_<uid>/job_<id>/step_<step>" layout and the
// v2 "/system.slice/slurmstepd.scope/job_<id>/step_<step>" layout.
var jobPattern = regexp.MustCompile(`job_(\d+)`)

// stepPattern matches the step_<name> segment, where <name> is either a
// numeric step id or a named step such as "extern" or "batch".
var stepPattern = regexp.MustCompile(`step_([A-Za-z0-9]+)`)

// SlurmJobID reports whether one of the given cgroup paths (as produced
// by proc.ReadProcCgroup) places the process under Slurm's control, and
// if so the job id and step name it was placed in. An empty step means
// the path names a job but not a specific step (the cgroup sits at the
// job level, not a step subdirectory).
func SlurmJobID(paths []string) (jobID int64, step string, ok bool) {
	for _, p := range paths {
		m := jobPattern.FindStringSubmatch(p)
		if m == nil {
			continue
		}
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		if sm := stepPattern.FindStringSubmatch(p); sm != nil {
			step = sm[1]
		}
		return id, step, true
	}
	return 0, "", false
}
