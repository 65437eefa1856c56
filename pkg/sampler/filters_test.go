package sampler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilters_Keep(t *testing.T) {
	f := NewFilters([]string{"sshd"}, []string{"nobody"}, true, 2*time.Second)

	assert.False(t, f.Keep(1000, "alice", "sshd", 5*time.Second), "excluded command")
	assert.False(t, f.Keep(1000, "nobody", "bash", 5*time.Second), "excluded user")
	assert.False(t, f.Keep(500, "root", "init", 5*time.Second), "system uid excluded")
	assert.False(t, f.Keep(1000, "alice", "bash", time.Second), "below min cpu time")
	assert.True(t, f.Keep(1000, "alice", "bash", 5*time.Second))
}

func TestFilters_SystemJobsAllowedWhenNotExcluded(t *testing.T) {
	f := NewFilters(nil, nil, false, 0)
	assert.True(t, f.Keep(0, "root", "init", 0))
}
