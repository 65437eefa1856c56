package gpu

import (
	"github.com/hpctools/sonar/pkg/envelope"
	"github.com/hpctools/sonar/pkg/types"
)

// Facade presents every discovered backend's cards as one flat,
// 0-indexed card list, in backend-registration order.
type Facade struct {
	backends []Backend
}

// Backends returns the discovered backends, in registration order, for
// callers that need per-backend identity (e.g. reporting which vendor
// backends are active).
func (f *Facade) Backends() []Backend { return f.backends }

// cardRef locates a global card index within its owning backend.
func (f *Facade) cardRef(global int) (Backend, int, bool) {
	for _, b := range f.backends {
		n, err := b.DeviceCount()
		if err != nil {
			continue
		}
		if global < n {
			return b, global, true
		}
		global -= n
	}
	return nil, 0, false
}

// CardCount returns the total number of cards across every backend.
func (f *Facade) CardCount() int {
	total := 0
	for _, b := range f.backends {
		n, err := b.DeviceCount()
		if err == nil {
			total += n
		}
	}
	return total
}

// CardInfo returns the static description of global card index i.
func (f *Facade) CardInfo(i int) (envelope.CardInfo, error) {
	b, local, ok := f.cardRef(i)
	if !ok {
		return envelope.CardInfo{}, ErrNoSuchCard
	}
	return b.CardInfo(local)
}

// CardState returns the live state of global card index i.
func (f *Facade) CardState(i int) (envelope.GPUCardState, error) {
	b, local, ok := f.cardRef(i)
	if !ok {
		return envelope.GPUCardState{}, ErrNoSuchCard
	}
	return b.CardState(local)
}

// AllCardInfo and AllCardStates walk every card in the facade, skipping
// any that error (a single card read failure is operational-recoverable,
// not fatal to the whole probe per §4.2's error semantics).
func (f *Facade) AllCardInfo() []envelope.CardInfo {
	out := make([]envelope.CardInfo, 0, f.CardCount())
	for i := 0; i < f.CardCount(); i++ {
		if info, err := f.CardInfo(i); err == nil {
			out = append(out, info)
		}
	}
	return out
}

func (f *Facade) AllCardStates() []envelope.GPUCardState {
	out := make([]envelope.GPUCardState, 0, f.CardCount())
	for i := 0; i < f.CardCount(); i++ {
		if st, err := f.CardState(i); err == nil {
			out = append(out, st)
		}
	}
	return out
}

// ProcessUsages returns every process's usage across every card.
func (f *Facade) ProcessUsages() []ProcessUsage {
	var out []ProcessUsage
	offset := 0
	for _, b := range f.backends {
		n, err := b.DeviceCount()
		if err != nil {
			continue
		}
		usages, err := b.ProcessUsages(-1)
		if err == nil {
			for _, u := range usages {
				if u.isAggregate() {
					u.CardBitmap <<= uint(offset)
				} else {
					u.CardIndex += offset
				}
				out = append(out, u)
			}
		}
		offset += n
	}
	return out
}

// FreeProcesses releases every backend's temporary probe buffers.
func (f *Facade) FreeProcesses() {
	for _, b := range f.backends {
		b.FreeProcesses()
	}
}

// MergeByPid groups process usages by pid into per-process GPU card
// entries, looking up each usage's UUID via the owning card's CardInfo.
// Cards whose info cannot be read are skipped for that process (an
// operational-recoverable gap, not a fatal error). A usage that only
// reports one combined figure across several cards (CardBitmap set) is
// split evenly across the cards it names, per §4.2's GPU merge policy:
// one process's 2-card 40% aggregate utilization becomes two
// ProcessGPU entries at 20% each, one per card.
func (f *Facade) MergeByPid(usages []ProcessUsage) map[int][]envelope.ProcessGPU {
	out := map[int][]envelope.ProcessGPU{}
	for _, u := range usages {
		if u.isAggregate() {
			for _, entry := range f.splitAggregate(u) {
				out[u.Pid] = append(out[u.Pid], entry)
			}
			continue
		}
		info, err := f.CardInfo(u.CardIndex)
		if err != nil {
			continue
		}
		out[u.Pid] = append(out[u.Pid], envelope.ProcessGPU{
			UUID:     info.UUID,
			GPUUtil:  u.GPUUtil,
			MemUtil:  u.MemUtil,
			MemBytes: bytesFromUsage(u.MemBytes, u.MemUtil, info),
		})
	}
	return out
}

// splitAggregate divides one multi-card usage evenly across the cards
// named in its bitmap, skipping any card whose info cannot be read.
func (f *Facade) splitAggregate(u ProcessUsage) []envelope.ProcessGPU {
	cards := bitmapCards(u.CardBitmap)
	if len(cards) == 0 {
		return nil
	}
	share := 1.0 / float64(len(cards))

	var out []envelope.ProcessGPU
	for _, idx := range cards {
		info, err := f.CardInfo(idx)
		if err != nil {
			continue
		}
		out = append(out, envelope.ProcessGPU{
			UUID:     info.UUID,
			GPUUtil:  u.GPUUtil * share,
			MemUtil:  u.MemUtil * share,
			MemBytes: bytesFromUsage(u.MemBytes, u.MemUtil, info) / types.Bytes(len(cards)),
		})
	}
	return out
}

// bytesFromUsage applies the GPU merge policy from §4.2: when a source
// gives only memory percent (no absolute bytes), the absolute value is
// derived from the card's total memory.
func bytesFromUsage(memBytes uint64, memUtil float64, info envelope.CardInfo) types.Bytes {
	if memBytes > 0 {
		return types.Bytes(memBytes)
	}
	if memUtil > 0 {
		return types.Bytes(memUtil / 100 * float64(info.TotalMemory))
	}
	return 0
}
