package slurm

import (
	"fmt"
	"strconv"
	"strings"
)

// RawID is a decoded Slurm accounting job id: the raw string as
// reported by sacct's JobID field, split into its step, array, and
// heterogeneous-job components.
type RawID struct {
	JobID        int64
	Step         string
	ArrayJobID   int64
	ArrayTaskID  int64
	HetJobID     int64
	HetJobOffset int64
}

// DecodeRawID parses a raw sacct JobID field. The forms recognized:
//
//	n.s    -> job_id=n, step=s
//	n_m.s  -> array_job_id=n, array_task_id=m, job_id=n+m, step=s
//	n+m.s  -> het_job_id=n, het_job_offset=m, job_id=n+m, step=s
//
// A raw id with no "." suffix names the top step, which has step="".
func DecodeRawID(raw string) (RawID, error) {
	body, step, _ := strings.Cut(raw, ".")

	switch {
	case strings.Contains(body, "_"):
		n, m, err := splitPair(body, "_")
		if err != nil {
			return RawID{}, fmt.Errorf("slurm: bad array raw id %q: %w", raw, err)
		}
		return RawID{
			JobID:       n + m,
			Step:        step,
			ArrayJobID:  n,
			ArrayTaskID: m,
		}, nil

	case strings.Contains(body, "+"):
		n, m, err := splitPair(body, "+")
		if err != nil {
			return RawID{}, fmt.Errorf("slurm: bad het raw id %q: %w", raw, err)
		}
		return RawID{
			JobID:        n + m,
			Step:         step,
			HetJobID:     n,
			HetJobOffset: m,
		}, nil

	default:
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return RawID{}, fmt.Errorf("slurm: bad raw id %q: %w", raw, err)
		}
		return RawID{JobID: n, Step: step}, nil
	}
}

func splitPair(s, sep string) (a, b int64, err error) {
	left, right, ok := strings.Cut(s, sep)
	if !ok {
		return 0, 0, fmt.Errorf("missing %q separator", sep)
	}
	a, err = strconv.ParseInt(left, 10, 64)
	if err != nil {
		return 0, 0, err
	}
	b, err = strconv.ParseInt(right, 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
