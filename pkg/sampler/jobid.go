package sampler

import "github.com/hpctools/sonar/pkg/system/cgroup"

// JobIdentity resolves a process's owning job id and epoch. Under Slurm
// control, the job id comes from the process's cgroup placement and the
// epoch is omitted (a Slurm job id is already globally unique for the
// life of the job). Off Slurm ("batchless"), the job id is the process
// group id and the epoch is the node's boot time, so that a pgid reused
// after a reboot is never mistaken for the job it used to name.
func JobIdentity(cgroupPaths []string, pgid int, epoch uint64) (jobID int64, outEpoch uint64) {
	if id, _, ok := cgroup.SlurmJobID(cgroupPaths); ok {
		return id, 0
	}
	return int64(pgid), epoch
}
