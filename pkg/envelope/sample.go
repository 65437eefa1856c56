package envelope

import (
	"time"

	"github.com/hpctools/sonar/pkg/types"
)

// ProcessGPU is one card's usage contribution to a process sample.
type ProcessGPU struct {
	UUID      string      `json:"uuid"`
	GPUUtil   float64     `json:"gpu_util"`
	MemUtil   float64     `json:"mem_util,omitempty"`
	MemBytes  types.Bytes `json:"mem_bytes"`
}

// ProcessSample is one process (or rolled-up pseudo-process) inside a
// sample envelope.
type ProcessSample struct {
	Pid             int          `json:"pid"`
	Ppid            int          `json:"ppid,omitempty"`
	Pgid            int          `json:"pgid,omitempty"`
	User            string       `json:"user"`
	Command         string       `json:"command"`
	CPUAvg          float64      `json:"cpu_avg"`
	CPUUtil         float64      `json:"cpu_util"`
	ResidentMemory  types.Bytes  `json:"resident_memory"`
	VirtualMemory   types.Bytes  `json:"virtual_memory,omitempty"`
	ReadBytes       types.Bytes  `json:"read_bytes,omitempty"`
	WriteBytes      types.Bytes  `json:"write_bytes,omitempty"`
	Rolledup        int          `json:"rolledup,omitempty"`
	GPUCards        []ProcessGPU `json:"gpu_cards,omitempty"`
}

// JobProcesses groups process samples under the job (Slurm or
// process-group-derived) that owns them.
type JobProcesses struct {
	JobID     int64           `json:"job_id"`
	Epoch     uint64          `json:"epoch,omitempty"`
	Processes []ProcessSample `json:"processes"`
}

// GPUCardState is one card's per-tick operating state, reported at the
// node level alongside the per-process breakdown.
type GPUCardState struct {
	UUID           string      `json:"uuid"`
	FanPercent     float64     `json:"fan_percent,omitempty"`
	ComputeMode    string      `json:"compute_mode,omitempty"`
	PerfState      int         `json:"perf_state"`
	MemoryUsed     types.Bytes `json:"memory_used"`
	MemoryReserved types.Bytes `json:"memory_reserved,omitempty"`
	CEUtil         float64     `json:"ce_util"`
	MemUtil        float64     `json:"mem_util"`
	TemperatureC   float64     `json:"temperature_c"`
	PowerW         float64     `json:"power_w"`
	PowerLimitW    float64     `json:"power_limit_w"`
	CEClockMHz     uint64      `json:"ce_clock_mhz,omitempty"`
	MemClockMHz    uint64      `json:"memory_clock_mhz,omitempty"`
}

// SampleAttributes is the per-tick "sample" record: a node-wide view
// plus the jobs/processes discovered on it.
type SampleAttributes struct {
	Cluster    string         `json:"cluster"`
	Node       string         `json:"node"`
	Time       time.Time      `json:"time"`
	Load       []float64      `json:"load,omitempty"`
	CPUSeconds []uint64       `json:"cpus"`
	UsedMemory types.Bytes    `json:"used_memory"`
	Jobs       []JobProcesses `json:"jobs"`
	GPUCards   []GPUCardState `json:"gpu_cards,omitempty"`
}
