package main

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/hpctools/sonar/pkg/config"
	"github.com/hpctools/sonar/pkg/envelope"
	"github.com/hpctools/sonar/pkg/gpu"
	"github.com/hpctools/sonar/pkg/metrics"
)

func TestTopicFor_NoPrefix(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, "sample", topicFor(cfg, envelope.TypeSample))
}

func TestTopicFor_WithPrefix(t *testing.T) {
	cfg := &config.Config{Global: config.Global{TopicPrefix: "hpc01"}}
	assert.Equal(t, "hpc01-sample", topicFor(cfg, envelope.TypeSample))
}

func TestErrorRecord(t *testing.T) {
	now := time.Now()
	rec := errorRecord("cluster0", "node0", now, errors.New("boom"))
	assert.Equal(t, "cluster0", rec.Cluster)
	assert.Equal(t, "node0", rec.Node)
	assert.Equal(t, "boom", rec.Detail)
	assert.Equal(t, now, rec.Time)
}

func TestIsUsageError(t *testing.T) {
	assert.True(t, isUsageError(usageError{errors.New("bad flag")}))
	assert.False(t, isUsageError(errors.New("operational failure")))
}

func TestCountProcesses_SumsAcrossJobs(t *testing.T) {
	attrs := envelope.SampleAttributes{Jobs: []envelope.JobProcesses{
		{Processes: make([]envelope.ProcessSample, 3)},
		{Processes: make([]envelope.ProcessSample, 2)},
	}}
	assert.Equal(t, 5, countProcesses(attrs))
}

func TestReportGPUBackends_NilFacadeIsNoop(t *testing.T) {
	reportGPUBackends(nil)
}

func TestReportGPUBackends_SetsGaugePerBackend(t *testing.T) {
	reportGPUBackends(gpu.Discover())
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.GPUBackendActive.WithLabelValues("noop")))
}
