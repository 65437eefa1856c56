package sampler

import "github.com/hpctools/sonar/pkg/system/proc"

// NodeEpoch returns the node's current epoch: the kernel boot time in
// seconds since the Unix epoch. It changes only across a reboot, which
// is exactly the event that invalidates a batchless job identity built
// from a process group id (pgids are reused across boots).
func NodeEpoch() (uint64, error) {
	return proc.BootTimeSec()
}
