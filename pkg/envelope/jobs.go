package envelope

import (
	"time"
)

// JobRecord is one Slurm job or job step, shaped per the raw-id
// decoding rules: exactly one of {plain, array, het} is populated,
// expressed here as ArrayJobID and HetJobID being zero together,
// or exactly one of them being positive.
type JobRecord struct {
	JobID         int64     `json:"job_id"`
	Step          string    `json:"step,omitempty"`
	ArrayJobID    int64     `json:"array_job_id,omitempty"`
	ArrayTaskID   int64     `json:"array_task_id,omitempty"`
	HetJobID      int64     `json:"het_job_id,omitempty"`
	HetJobOffset  int64     `json:"het_job_offset,omitempty"`
	User          string    `json:"user"`
	Account       string    `json:"account,omitempty"`
	Partition     string    `json:"partition,omitempty"`
	State         string    `json:"state"`
	SubmitTime    time.Time `json:"submit_time,omitempty"`
	StartTime     time.Time `json:"start_time,omitempty"`
	EndTime       time.Time `json:"end_time,omitempty"`
	NodeList      string    `json:"node_list,omitempty"`
	ReqCPUs       int       `json:"req_cpus,omitempty"`
	ReqMemoryKiB  uint64    `json:"req_memory_kib,omitempty"`
	ReqGPUs       int       `json:"req_gpus,omitempty"`
	AllocTRES     string    `json:"alloc_tres,omitempty"`
}

// JobsAttributes is one batch of Slurm job/step records, emitted by the
// "jobs" operation and capped at the configured batch size.
type JobsAttributes struct {
	Cluster string      `json:"cluster"`
	Jobs    []JobRecord `json:"slurm_jobs"`
}
