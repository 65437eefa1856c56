package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobIdentity_SlurmCgroupWins(t *testing.T) {
	paths := []string{"/system.slice/slurmstepd.scope/job_1234/step_0"}
	jobID, epoch := JobIdentity(paths, 5555, 999)
	assert.Equal(t, int64(1234), jobID)
	assert.Zero(t, epoch)
}

func TestJobIdentity_BatchlessFallsBackToPgidAndEpoch(t *testing.T) {
	jobID, epoch := JobIdentity(nil, 5555, 999)
	assert.Equal(t, int64(5555), jobID)
	assert.Equal(t, uint64(999), epoch)
}
