package envelope

import (
	"time"

	"github.com/hpctools/sonar/pkg/types"
)

// CardInfo is the static (per-boot-stable) description of one GPU card.
type CardInfo struct {
	UUID            string      `json:"uuid"`
	BusAddr         string      `json:"bus_addr"`
	Model           string      `json:"model"`
	Arch            string      `json:"arch,omitempty"`
	Driver          string      `json:"driver,omitempty"`
	Firmware        string      `json:"firmware,omitempty"`
	TotalMemory     types.Bytes `json:"total_memory"`
	MinPowerLimitW  float64     `json:"min_power_limit_w,omitempty"`
	MaxPowerLimitW  float64     `json:"max_power_limit_w,omitempty"`
	MaxCEClockMHz   uint64      `json:"max_ce_clock_mhz,omitempty"`
	MaxMemClockMHz  uint64      `json:"max_memory_clock_mhz,omitempty"`
}

// SysinfoAttributes is the node's static hardware/software inventory,
// sampled at its own (typically much slower) cadence.
type SysinfoAttributes struct {
	Cluster        string     `json:"cluster"`
	Node           string     `json:"node"`
	Time           time.Time  `json:"time"`
	OSName         string     `json:"os_name"`
	KernelVersion  string     `json:"kernel_version"`
	CPUModel       string     `json:"cpu_model"`
	Sockets        int        `json:"sockets"`
	CoresPerSocket int        `json:"cores_per_socket"`
	ThreadsPerCore int        `json:"threads_per_core"`
	CPUTotal       int        `json:"cpu_total"`
	MemTotal       types.Bytes `json:"mem_total"`
	GPUCards       []CardInfo `json:"gpu_cards,omitempty"`
}
