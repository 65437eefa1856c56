//go:build linux

// Package sysinfo collects the node's static hardware/software
// inventory: OS release, kernel version, CPU topology, installed
// memory, and the GPU cards the capability facade discovers. It is
// sampled at its own, typically much slower, cadence than the process
// sampler.
package sysinfo

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/hpctools/sonar/pkg/envelope"
	"github.com/hpctools/sonar/pkg/gpu"
	"github.com/hpctools/sonar/pkg/system/proc"
	"github.com/hpctools/sonar/pkg/types"
)

// Collect builds a SysinfoAttributes snapshot for cluster/node,
// reading /proc/cpuinfo and /proc/meminfo plus the kernel's uname(2)
// result, and the card inventory from gpuFacade (nil is treated as no
// cards present).
func Collect(cluster, node string, gpuFacade *gpu.Facade) (envelope.SysinfoAttributes, error) {
	attrs := envelope.SysinfoAttributes{Cluster: cluster, Node: node}

	osName, kernelVersion, err := readUname()
	if err != nil {
		return attrs, fmt.Errorf("sysinfo: %w", err)
	}
	attrs.OSName = osName
	attrs.KernelVersion = kernelVersion

	topo, err := readCPUTopology()
	if err != nil {
		return attrs, fmt.Errorf("sysinfo: %w", err)
	}
	attrs.CPUModel = topo.model
	attrs.Sockets = topo.sockets
	attrs.CoresPerSocket = topo.coresPerSocket
	attrs.ThreadsPerCore = topo.threadsPerCore
	attrs.CPUTotal = topo.total

	total, _, _, err := proc.ReadMemInfo()
	if err != nil {
		return attrs, fmt.Errorf("sysinfo: %w", err)
	}
	attrs.MemTotal = types.Bytes(total)

	if gpuFacade != nil {
		attrs.GPUCards = gpuFacade.AllCardInfo()
	}
	return attrs, nil
}

// readUname reports the running kernel's name/release via the uname(2)
// syscall, avoiding a subprocess for information the kernel already
// hands back directly.
func readUname() (osName, kernelVersion string, err error) {
	var uts syscall.Utsname
	if err := syscall.Uname(&uts); err != nil {
		return "", "", err
	}
	return utsString(uts.Sysname[:]), utsString(uts.Release[:]), nil
}

func utsString(b []int8) string {
	buf := make([]byte, 0, len(b))
	for _, c := range b {
		if c == 0 {
			break
		}
		buf = append(buf, byte(c))
	}
	return string(buf)
}

type cpuTopology struct {
	model          string
	sockets        int
	coresPerSocket int
	threadsPerCore int
	total          int
}

// readCPUTopology parses /proc/cpuinfo's per-logical-cpu blocks,
// counting distinct physical ids for socket count and distinct
// core ids per socket for cores-per-socket; threads-per-core is
// derived from the ratio of logical cpus to physical cores.
func readCPUTopology() (cpuTopology, error) {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return cpuTopology{}, err
	}
	defer f.Close()

	var model string
	sockets := map[string]struct{}{}
	cores := map[string]struct{}{} // "physicalID/coreID"
	logical := 0

	var curPhysical, curCore string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			if curPhysical != "" || curCore != "" {
				cores[curPhysical+"/"+curCore] = struct{}{}
			}
			curPhysical, curCore = "", ""
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		switch key {
		case "processor":
			logical++
		case "model name":
			if model == "" {
				model = val
			}
		case "physical id":
			curPhysical = val
			sockets[val] = struct{}{}
		case "core id":
			curCore = val
		}
	}
	if curPhysical != "" || curCore != "" {
		cores[curPhysical+"/"+curCore] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return cpuTopology{}, err
	}
	if logical == 0 {
		return cpuTopology{}, fmt.Errorf("sysinfo: no processor entries in /proc/cpuinfo")
	}

	nSockets := len(sockets)
	if nSockets == 0 {
		nSockets = 1
	}
	nCores := len(cores)
	if nCores == 0 {
		nCores = logical
	}
	coresPerSocket := nCores / nSockets
	if coresPerSocket == 0 {
		coresPerSocket = 1
	}
	threadsPerCore := logical / nCores
	if threadsPerCore == 0 {
		threadsPerCore = 1
	}

	return cpuTopology{
		model:          model,
		sockets:        nSockets,
		coresPerSocket: coresPerSocket,
		threadsPerCore: threadsPerCore,
		total:          logical,
	}, nil
}
