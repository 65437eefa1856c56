package sampler

// rollupKey groups leaf processes that share a parent and a command.
type rollupKey struct {
	ppid int
	cmd  string
}

// rollup replaces each group of ≥2 leaf processes sharing (ppid, cmd)
// with one pseudo-process summing the group's counters, tagged with
// rolledup=n-1. A leaf is any pid that is nobody else's ppid in this
// snapshot. Non-leaf processes, and leaf groups of size 1, pass through
// unchanged. pool supplies the synthetic pid for each emitted group;
// callers that did not configure a pool (one-shot CLI invocations) pass
// nil, in which case rolled-up entries get pid 0.
//
// groupPids persists each group's synthetic pid across ticks (keyed on
// the same (ppid, cmd) identity the group is formed from), so a
// consumer correlating samples by pid sees the same pid for the same
// logical group every tick per spec.md §4.2, rather than a fresh pid
// each time. A group's pid is released back to pool, and its entry
// dropped from groupPids, the first tick the group stops appearing —
// callers that did not configure a pool pass a nil groupPids too, since
// there is nothing to persist without a pool issuing the pids.
func rollup(records []record, pool *PidPool, groupPids map[rollupKey]int) ([]record, error) {
	isParent := make(map[int]struct{}, len(records))
	for _, r := range records {
		isParent[r.Ppid] = struct{}{}
	}

	groups := make(map[rollupKey][]int)
	for i, r := range records {
		if _, hasChildren := isParent[r.Pid]; hasChildren {
			continue
		}
		k := rollupKey{ppid: r.Ppid, cmd: r.Command}
		groups[k] = append(groups[k], i)
	}

	rolled := make(map[int]struct{})
	seen := make(map[rollupKey]struct{}, len(groups))
	var out []record
	for k, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		seen[k] = struct{}{}

		sum := records[idxs[0]]
		for _, i := range idxs[1:] {
			sum.CPUTicks += records[i].CPUTicks
			sum.ResidentBytes += records[i].ResidentBytes
			sum.VirtualBytes += records[i].VirtualBytes
			sum.ReadBytes += records[i].ReadBytes
			sum.WriteBytes += records[i].WriteBytes
		}
		sum.Rolledup = len(idxs) - 1
		sum.Command = k.cmd
		sum.Ppid = k.ppid
		if pool != nil {
			pid, ok := groupPids[k]
			if !ok {
				var err error
				pid, err = pool.Allocate()
				if err != nil {
					return nil, err
				}
				groupPids[k] = pid
			}
			sum.Pid = pid
		} else {
			sum.Pid = 0
		}
		for _, i := range idxs {
			rolled[i] = struct{}{}
		}
		out = append(out, sum)
	}

	if pool != nil {
		for k, pid := range groupPids {
			if _, ok := seen[k]; !ok {
				pool.Release(pid)
				delete(groupPids, k)
			}
		}
	}

	for i, r := range records {
		if _, done := rolled[i]; done {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
