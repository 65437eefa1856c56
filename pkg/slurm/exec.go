package slurm

import (
	"context"
	"time"

	"github.com/hpctools/sonar/internal/osexec"
	"github.com/rs/zerolog"
)

// Tools bundles the bounded subprocess runners for the three Slurm CLI
// tools the extractors invoke. An empty Name on any runner disables
// that tool's operations (§4.3's subprocess discipline).
type Tools struct {
	Sacct    osexec.Runner
	Scontrol osexec.Runner
	Sinfo    osexec.Runner
}

// NewTools builds a Tools set from configured command paths. Empty
// paths disable the corresponding tool. Mock env vars let tests
// substitute file contents for real subprocess output.
func NewTools(sacct, scontrol, sinfo string, log zerolog.Logger) Tools {
	return Tools{
		Sacct: osexec.Runner{
			Name: sacct, Timeout: 30 * time.Second,
			MockEnvVar: "SONARTEST_MOCK_SACCT", Log: log,
		},
		Scontrol: osexec.Runner{
			Name: scontrol, Timeout: 15 * time.Second,
			MockEnvVar: "SONARTEST_MOCK_SCONTROL", Log: log,
		},
		Sinfo: osexec.Runner{
			Name: sinfo, Timeout: 15 * time.Second,
			Log: log,
		},
	}
}

// sacctFields is the fixed field list requested from the accounting
// tool, in the order the jobs op expects columns to appear.
var sacctFields = []string{
	"JobID", "User", "Account", "Partition", "State",
	"Submit", "Start", "End", "NodeList", "ReqTRES", "AllocTRES",
}

// RunSacct invokes the accounting tool over [since, now) and returns
// its raw pipe-separated output.
func (t Tools) RunSacct(ctx context.Context, since time.Time) ([]byte, error) {
	args := []string{
		"--noheader", "--parsable2", "--allocations",
		"--starttime=" + since.Format("2006-01-02T15:04:05"),
		"--format=" + joinComma(sacctFields),
	}
	return t.Sacct.Run(ctx, args...)
}

// RunScontrolShowJob invokes the control tool for currently-running job
// enrichment (ReqTRES/TRES lines sacct omits for active jobs).
func (t Tools) RunScontrolShowJob(ctx context.Context) ([]byte, error) {
	return t.Scontrol.Run(ctx, "show", "job", "--details")
}

// RunSinfoPartitions invokes the info tool for the partition -> node
// set query.
func (t Tools) RunSinfoPartitions(ctx context.Context) ([]byte, error) {
	return t.Sinfo.Run(ctx, "--noheader", "--format=%R|%N")
}

// RunSinfoNodes invokes the info tool for the node -> state query.
func (t Tools) RunSinfoNodes(ctx context.Context) ([]byte, error) {
	return t.Sinfo.Run(ctx, "--noheader", "--format=%N|%T")
}

func joinComma(fields []string) string {
	out := fields[0]
	for _, f := range fields[1:] {
		out += "," + f
	}
	return out
}
