// Package gpu provides a uniform capability facade over GPU vendor
// families (NVIDIA, AMD, Intel XPU, Intel Habana), with a no-op
// fallback backend used whenever a vendor's library isn't present on
// the host. The facade is single-threaded; the sampler serializes
// access across one tick.
package gpu

import "github.com/hpctools/sonar/pkg/envelope"

// ProcessUsage is one process's GPU usage, as reported by
// probe_processes. Most vendor libraries report usage per card, in
// which case CardIndex names the card directly and CardBitmap is 0.
// A source that can only report one combined figure across the set of
// cards a process touched (some vendor "process accounting" APIs work
// this way when a process spans multiple cards under one context)
// instead sets CardIndex to -1 and CardBitmap to a bitmask of
// backend-local card indices the usage covers; Facade.MergeByPid
// divides that usage evenly across the indicated cards.
type ProcessUsage struct {
	Pid        int
	CardIndex  int
	CardBitmap uint64
	GPUUtil    float64
	MemUtil    float64
	MemBytes   uint64
}

// isAggregate reports whether u describes combined usage across
// multiple cards (CardBitmap) rather than one card (CardIndex).
func (u ProcessUsage) isAggregate() bool { return u.CardIndex < 0 && u.CardBitmap != 0 }

// bitmapCards returns the backend-local card indices set in bitmap, in
// ascending order.
func bitmapCards(bitmap uint64) []int {
	var cards []int
	for i := 0; i < 64; i++ {
		if bitmap&(1<<uint(i)) != 0 {
			cards = append(cards, i)
		}
	}
	return cards
}

// Backend is the per-vendor capability contract. Implementations load
// their vendor library lazily and must tolerate its absence by
// reporting DeviceCount() == 0 rather than erroring.
type Backend interface {
	// Name identifies the backend for logging ("nvidia", "amd", "xpu",
	// "habana", "noop").
	Name() string
	// DeviceCount returns the number of cards visible to this backend,
	// 0 when the vendor library or hardware is absent.
	DeviceCount() (int, error)
	// CardInfo returns the static description of card i.
	CardInfo(i int) (envelope.CardInfo, error)
	// CardState returns the live operating state of card i.
	CardState(i int) (envelope.GPUCardState, error)
	// ProcessUsages returns per-process usage across all cards (or one
	// card, when the backend only supports per-card queries and i>=0).
	ProcessUsages(i int) ([]ProcessUsage, error)
	// FreeProcesses releases any temporary buffers allocated by
	// ProcessUsages. Safe to call even if nothing was allocated.
	FreeProcesses()
}
