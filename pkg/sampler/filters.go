package sampler

import "time"

// Filters controls which processes a sample tick keeps, per
// configuration's [sample] section.
type Filters struct {
	ExcludeCommands   map[string]struct{}
	ExcludeUsers      map[string]struct{}
	ExcludeSystemJobs bool
	MinCPUTime        time.Duration
}

// NewFilters builds a Filters from the comma-separated lists config
// parses into slices.
func NewFilters(excludeCommands, excludeUsers []string, excludeSystemJobs bool, minCPUTime time.Duration) Filters {
	f := Filters{
		ExcludeCommands:   toSet(excludeCommands),
		ExcludeUsers:      toSet(excludeUsers),
		ExcludeSystemJobs: excludeSystemJobs,
		MinCPUTime:        minCPUTime,
	}
	return f
}

func toSet(items []string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, i := range items {
		s[i] = struct{}{}
	}
	return s
}

// Keep reports whether a process survives filtering.
func (f Filters) Keep(uid int, user, command string, cpuTime time.Duration) bool {
	if _, excluded := f.ExcludeCommands[command]; excluded {
		return false
	}
	if _, excluded := f.ExcludeUsers[user]; excluded {
		return false
	}
	if f.ExcludeSystemJobs && uid < 1000 {
		return false
	}
	if cpuTime < f.MinCPUTime {
		return false
	}
	return true
}
