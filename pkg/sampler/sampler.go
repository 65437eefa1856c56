// Package sampler implements the process/resource sampling operation:
// one /proc walk per tick, turned into a node-wide CPU/memory view plus
// per-job, per-process records, with optional rollup compression and
// GPU usage merged in by pid.
package sampler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hpctools/sonar/pkg/envelope"
	"github.com/hpctools/sonar/pkg/gpu"
	"github.com/hpctools/sonar/pkg/system/proc"
	"github.com/hpctools/sonar/pkg/system/util"
	"github.com/hpctools/sonar/pkg/types"
)

// Sampler holds the state that must survive across ticks: the previous
// tick's per-process cpu counters (to compute cpu_util), the rollup pid
// pool, and node identity.
type Sampler struct {
	Cluster   string
	Node      string
	Filters   Filters
	Rollup    bool
	Batchless bool
	ReportLoad bool
	GPU       *gpu.Facade
	Pool      *PidPool
	Log       zerolog.Logger

	prevTick time.Time
	prevCPU  map[int]uint64

	// groupPids remembers each rollup group's synthetic pid across
	// ticks, so a consumer correlating by pid sees the same pid for the
	// same logical group every time it appears.
	groupPids map[rollupKey]int
}

// New builds a Sampler. gpuFacade and pool may be nil: a nil facade
// means no GPU merge is attempted, a nil pool means rolled-up processes
// always get pid 0 (the one-shot CLI's behavior, since there is no next
// tick to correlate against).
func New(cluster, node string, filters Filters, rollupEnabled, batchless, reportLoad bool, gpuFacade *gpu.Facade, pool *PidPool, log zerolog.Logger) *Sampler {
	return &Sampler{
		Cluster: cluster, Node: node, Filters: filters,
		Rollup: rollupEnabled, Batchless: batchless, ReportLoad: reportLoad,
		GPU: gpuFacade, Pool: pool, Log: log,
		prevCPU:   make(map[int]uint64),
		groupPids: make(map[rollupKey]int),
	}
}

// Sample produces one tick's attributes, plus any recoverable errors
// observed along the way (a failed GPU probe, a missing /proc/stat
// line); those never abort the tick, per §4.2's error semantics.
func (s *Sampler) Sample(now time.Time) (envelope.SampleAttributes, []envelope.ErrorRecord) {
	var errs []envelope.ErrorRecord
	fail := func(detail string) {
		errs = append(errs, envelope.ErrorRecord{Time: now, Detail: detail, Cluster: s.Cluster, Node: s.Node})
	}

	if s.Pool != nil {
		s.Pool.Tick()
	}

	records, err := walk()
	if err != nil {
		fail(fmt.Sprintf("sample: %v", err))
		records = nil
	}

	clockTicks := proc.ClockTicks()
	epoch, epochErr := NodeEpoch()
	if epochErr != nil {
		fail(fmt.Sprintf("sample: node epoch: %v", epochErr))
	}

	bootTime, bootErr := proc.BootTimeSec()

	filtered := records[:0:0]
	for _, r := range records {
		cpuTime := time.Duration(r.CPUTicks) * time.Second / time.Duration(clockTicks)
		if !s.Filters.Keep(r.Uid, r.User, r.Command, cpuTime) {
			continue
		}
		filtered = append(filtered, r)
	}

	if s.Rollup {
		filtered, err = rollup(filtered, s.Pool, s.groupPids)
		if err != nil {
			fail(fmt.Sprintf("sample: rollup: %v", err))
		}
	}

	currCPU := make(map[int]uint64, len(filtered))
	deltaWall := 0.0
	if !s.prevTick.IsZero() {
		deltaWall = now.Sub(s.prevTick).Seconds()
	}

	gpuByPid := map[int][]envelope.ProcessGPU{}
	if s.GPU != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					fail(fmt.Sprintf("sample: gpu probe panic: %v", r))
				}
			}()
			gpuByPid = s.GPU.MergeByPid(s.GPU.ProcessUsages())
		}()
	}

	jobMap := map[int64][]envelope.ProcessSample{}
	for _, r := range filtered {
		currCPU[r.Pid] = r.CPUTicks

		cpuAvg := 0.0
		if bootErr == nil && clockTicks > 0 && r.StartTicks > 0 {
			startedAt := float64(bootTime) + float64(r.StartTicks)/float64(clockTicks)
			age := now.Sub(time.Unix(int64(startedAt), 0)).Seconds()
			if age > 0 {
				cpuAvg = util.SafeDiv(float64(r.CPUTicks)/float64(clockTicks), age)
			}
		}

		cpuUtil := 0.0
		if prev, ok := s.prevCPU[r.Pid]; ok && deltaWall > 0 {
			ticksDelta := util.DeltaU64(r.CPUTicks, prev)
			cpuUtil = util.SafeDiv(float64(ticksDelta)/float64(clockTicks), deltaWall)
		}

		jobID, _ := JobIdentity(r.CgroupPaths, r.Pgid, epoch)

		jobMap[jobID] = append(jobMap[jobID], envelope.ProcessSample{
			Pid:            r.Pid,
			Ppid:           r.Ppid,
			Pgid:           r.Pgid,
			User:           r.User,
			Command:        r.Command,
			CPUAvg:         cpuAvg,
			CPUUtil:        cpuUtil,
			ResidentMemory: types.Bytes(r.ResidentBytes),
			VirtualMemory:  types.Bytes(r.VirtualBytes),
			ReadBytes:      types.Bytes(r.ReadBytes),
			WriteBytes:     types.Bytes(r.WriteBytes),
			Rolledup:       r.Rolledup,
			GPUCards:       gpuByPid[r.Pid],
		})
	}

	jobs := make([]envelope.JobProcesses, 0, len(jobMap))
	for jobID, procs := range jobMap {
		e := uint64(0)
		if s.Batchless {
			e = epoch
		}
		jobs = append(jobs, envelope.JobProcesses{JobID: jobID, Epoch: e, Processes: procs})
	}

	cpus, cpuErr := proc.ReadPerCPUTotals()
	if cpuErr != nil {
		fail(fmt.Sprintf("sample: %v", cpuErr))
	}

	total, free, reclaimable, memErr := proc.ReadMemInfo()
	usedMemory := types.Bytes(0)
	if memErr != nil {
		fail(fmt.Sprintf("sample: %v", memErr))
	} else if total > free+reclaimable {
		usedMemory = types.Bytes(total - free - reclaimable)
	}

	var load []float64
	if s.ReportLoad {
		if l, err := readLoadAvg(); err == nil {
			load = l
		} else {
			fail(fmt.Sprintf("sample: %v", err))
		}
	}

	var gpuStates []envelope.GPUCardState
	if s.GPU != nil {
		gpuStates = s.GPU.AllCardStates()
	}

	s.prevTick = now
	s.prevCPU = currCPU

	return envelope.SampleAttributes{
		Cluster:    s.Cluster,
		Node:       s.Node,
		Time:       now,
		Load:       load,
		CPUSeconds: cpus,
		UsedMemory: usedMemory,
		Jobs:       jobs,
		GPUCards:   gpuStates,
	}, errs
}
