package sampler

import "fmt"

// ErrPoolExhausted is returned by PidPool.Allocate when no free pid
// remains, either because the whole pool is checked out or because
// every candidate is still sitting in its min-idle cooldown.
var ErrPoolExhausted = fmt.Errorf("sampler: rollup pid pool exhausted")

// PidPool hands out stable synthetic pids above pid_max for rolled-up
// pseudo-processes, so a consumer can correlate the same rollup group
// across ticks. Freed pids sit in a cooldown queue for MinIdle ticks
// before they are eligible for reuse, so a pid is never reassigned to
// an unrelated group immediately after the group it named disappears.
type PidPool struct {
	base    int
	size    int
	minIdle int

	tick     int
	free     []int
	cooldown map[int]int // pid -> tick it becomes eligible again
	inUse    map[int]struct{}
}

// NewPidPool builds a pool of size synthetic pids starting at base
// (normally proc.PidMax()+1), each subject to minIdle ticks of cooldown
// after being freed.
func NewPidPool(base, size, minIdle int) *PidPool {
	p := &PidPool{
		base: base, size: size, minIdle: minIdle,
		cooldown: make(map[int]int),
		inUse:    make(map[int]struct{}),
	}
	p.free = make([]int, size)
	for i := range p.free {
		p.free[i] = base + i
	}
	return p
}

// Tick advances the pool's notion of time by one sample, releasing any
// cooldown pids whose wait has elapsed back into the free list. Call
// this once per sample, before any Allocate/Release calls for the tick.
func (p *PidPool) Tick() {
	p.tick++
	for pid, eligible := range p.cooldown {
		if p.tick >= eligible {
			delete(p.cooldown, pid)
			p.free = append(p.free, pid)
		}
	}
}

// Allocate checks out one pid for the current tick's rollup group.
func (p *PidPool) Allocate() (int, error) {
	if len(p.free) == 0 {
		return 0, ErrPoolExhausted
	}
	pid := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.inUse[pid] = struct{}{}
	return pid, nil
}

// Release returns a previously allocated pid, starting its cooldown.
func (p *PidPool) Release(pid int) {
	if _, ok := p.inUse[pid]; !ok {
		return
	}
	delete(p.inUse, pid)
	p.cooldown[pid] = p.tick + p.minIdle
}

// InUse reports how many pids are currently checked out.
func (p *PidPool) InUse() int { return len(p.inUse) }
