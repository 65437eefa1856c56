package sampler

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampler_Sample_ProducesNodeWideAndProcessData(t *testing.T) {
	f := NewFilters(nil, nil, false, 0)
	s := New("testcluster", "node01", f, false, true, true, nil, nil, zerolog.Nop())

	attrs, errs := s.Sample(time.Now())
	assert.Empty(t, errs)
	assert.Equal(t, "testcluster", attrs.Cluster)
	assert.NotEmpty(t, attrs.CPUSeconds)
	assert.NotZero(t, attrs.UsedMemory)
	assert.NotEmpty(t, attrs.Jobs)

	var total int
	for _, j := range attrs.Jobs {
		total += len(j.Processes)
	}
	assert.Greater(t, total, 0)
}

func TestSampler_Sample_CPUUtilPopulatedOnSecondTick(t *testing.T) {
	f := NewFilters(nil, nil, false, 0)
	s := New("testcluster", "node01", f, false, true, false, nil, nil, zerolog.Nop())

	_, errs1 := s.Sample(time.Now())
	assert.Empty(t, errs1)

	time.Sleep(10 * time.Millisecond)
	attrs, errs2 := s.Sample(time.Now())
	assert.Empty(t, errs2)
	require.NotEmpty(t, attrs.Jobs)
}

func TestSampler_Sample_FiltersExcludeSystemJobs(t *testing.T) {
	f := NewFilters(nil, nil, true, 0)
	s := New("testcluster", "node01", f, false, true, false, nil, nil, zerolog.Nop())

	attrs, _ := s.Sample(time.Now())
	for _, j := range attrs.Jobs {
		for _, p := range j.Processes {
			assert.NotEqual(t, "root", p.User)
		}
	}
}
