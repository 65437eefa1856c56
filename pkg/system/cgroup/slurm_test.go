//go:build linux

package cgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlurmJobID(t *testing.T) {
	cases := []struct {
		name    string
		paths   []string
		wantID  int64
		wantStp string
		wantOK  bool
	}{
		{
			name:    "v1 step",
			paths:   []string{"/slurm/uid_1000/job_12345/step_0"},
			wantID:  12345,
			wantStp: "0",
			wantOK:  true,
		},
		{
			name:    "v2 extern step",
			paths:   []string{"/system.slice/slurmstepd.scope/job_98765/step_extern"},
			wantID:  98765,
			wantStp: "extern",
			wantOK:  true,
		},
		{
			name:   "job level, no step",
			paths:  []string{"/slurm/uid_1000/job_55"},
			wantID: 55,
			wantOK: true,
		},
		{
			name:   "not a slurm cgroup",
			paths:  []string{"/user.slice/user-1000.slice"},
			wantOK: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, step, ok := SlurmJobID(tc.paths)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.wantID, id)
				assert.Equal(t, tc.wantStp, step)
			}
		})
	}
}
