package gpu

import (
	"testing"

	"github.com/hpctools/sonar/pkg/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover_NoBackendsRegistered_FallsBackToNoop(t *testing.T) {
	saved := registry
	registry = nil
	defer func() { registry = saved }()

	f := Discover()
	assert.Equal(t, 0, f.CardCount())
	assert.Empty(t, f.AllCardInfo())
	assert.Empty(t, f.ProcessUsages())
}

type fakeBackend struct {
	name  string
	cards []envelope.CardInfo
	usage []ProcessUsage
}

func (f fakeBackend) Name() string                 { return f.name }
func (f fakeBackend) DeviceCount() (int, error)     { return len(f.cards), nil }
func (f fakeBackend) CardInfo(i int) (envelope.CardInfo, error) {
	if i < 0 || i >= len(f.cards) {
		return envelope.CardInfo{}, ErrNoSuchCard
	}
	return f.cards[i], nil
}
func (f fakeBackend) CardState(i int) (envelope.GPUCardState, error) {
	if i < 0 || i >= len(f.cards) {
		return envelope.GPUCardState{}, ErrNoSuchCard
	}
	return envelope.GPUCardState{UUID: f.cards[i].UUID}, nil
}
func (f fakeBackend) ProcessUsages(int) ([]ProcessUsage, error) { return f.usage, nil }
func (f fakeBackend) FreeProcesses()                            {}

func TestFacade_Backends_ReturnsRegistrationOrder(t *testing.T) {
	f := &Facade{backends: []Backend{
		fakeBackend{name: "nvidia"},
		fakeBackend{name: "amd"},
	}}
	got := f.Backends()
	require.Len(t, got, 2)
	assert.Equal(t, "nvidia", got[0].Name())
	assert.Equal(t, "amd", got[1].Name())
}

func TestFacade_MultiBackendIndexing(t *testing.T) {
	saved := registry
	registry = nil
	defer func() { registry = saved }()

	Register(func() Backend {
		return fakeBackend{name: "a", cards: []envelope.CardInfo{{UUID: "a0"}, {UUID: "a1"}}}
	})
	Register(func() Backend {
		return fakeBackend{name: "b", cards: []envelope.CardInfo{{UUID: "b0"}}}
	})

	f := Discover()
	require.Equal(t, 3, f.CardCount())

	info, err := f.CardInfo(0)
	require.NoError(t, err)
	assert.Equal(t, "a0", info.UUID)

	info, err = f.CardInfo(2)
	require.NoError(t, err)
	assert.Equal(t, "b0", info.UUID)

	_, err = f.CardInfo(3)
	assert.ErrorIs(t, err, ErrNoSuchCard)
}

func TestFacade_MergeByPid_DerivesBytesFromPercent(t *testing.T) {
	saved := registry
	registry = nil
	defer func() { registry = saved }()

	Register(func() Backend {
		return fakeBackend{name: "a", cards: []envelope.CardInfo{{UUID: "a0", TotalMemory: 1000}}}
	})
	f := Discover()

	usages := []ProcessUsage{{Pid: 1, CardIndex: 0, MemUtil: 50}}
	merged := f.MergeByPid(usages)
	require.Len(t, merged[1], 1)
	assert.Equal(t, uint64(500), uint64(merged[1][0].MemBytes))
}

func TestFacade_MergeByPid_PrefersAbsoluteBytes(t *testing.T) {
	saved := registry
	registry = nil
	defer func() { registry = saved }()

	Register(func() Backend {
		return fakeBackend{name: "a", cards: []envelope.CardInfo{{UUID: "a0", TotalMemory: 1000}}}
	})
	f := Discover()

	usages := []ProcessUsage{{Pid: 1, CardIndex: 0, MemBytes: 777, MemUtil: 50}}
	merged := f.MergeByPid(usages)
	require.Len(t, merged[1], 1)
	assert.Equal(t, uint64(777), uint64(merged[1][0].MemBytes))
}

func TestFacade_MergeByPid_SplitsAggregateUsageAcrossBitmapCards(t *testing.T) {
	saved := registry
	registry = nil
	defer func() { registry = saved }()

	Register(func() Backend {
		return fakeBackend{name: "a", cards: []envelope.CardInfo{
			{UUID: "a0", TotalMemory: 1000},
			{UUID: "a1", TotalMemory: 1000},
		}}
	})
	f := Discover()

	// cards 0 and 1 set (bitmap 0b11): a process using both at a
	// combined 40% utilization and 800 bytes should show up as two
	// entries, one per card, each at half the combined figures.
	usages := []ProcessUsage{{Pid: 1, CardIndex: -1, CardBitmap: 0b11, GPUUtil: 40, MemBytes: 800}}
	merged := f.MergeByPid(usages)
	require.Len(t, merged[1], 2)

	byUUID := map[string]envelope.ProcessGPU{}
	for _, g := range merged[1] {
		byUUID[g.UUID] = g
	}
	require.Contains(t, byUUID, "a0")
	require.Contains(t, byUUID, "a1")
	assert.InDelta(t, 20, byUUID["a0"].GPUUtil, 0.001)
	assert.InDelta(t, 20, byUUID["a1"].GPUUtil, 0.001)
	assert.Equal(t, uint64(400), uint64(byUUID["a0"].MemBytes))
	assert.Equal(t, uint64(400), uint64(byUUID["a1"].MemBytes))
}

func TestProcessUsages_ShiftsAggregateBitmapByBackendOffset(t *testing.T) {
	saved := registry
	registry = nil
	defer func() { registry = saved }()

	Register(func() Backend {
		return fakeBackend{
			name:  "a",
			cards: []envelope.CardInfo{{UUID: "a0"}},
		}
	})
	Register(func() Backend {
		return fakeBackend{
			name:  "b",
			cards: []envelope.CardInfo{{UUID: "b0"}, {UUID: "b1"}},
			usage: []ProcessUsage{{Pid: 1, CardIndex: -1, CardBitmap: 0b11}},
		}
	})

	f := Discover()
	usages := f.ProcessUsages()
	require.Len(t, usages, 1)
	// backend "b" starts at global offset 1, so local bits 0,1 become
	// global bits 1,2.
	assert.Equal(t, uint64(0b110), usages[0].CardBitmap)
}

func TestSynthesizeUUID_DeterministicAndStableAcrossBoot(t *testing.T) {
	u1 := SynthesizeUUID("node1", 1000, "0000:01:00.0")
	u2 := SynthesizeUUID("node1", 1000, "0000:01:00.0")
	assert.Equal(t, u1, u2)

	u3 := SynthesizeUUID("node1", 2000, "0000:01:00.0")
	assert.NotEqual(t, u1, u3)
}

func TestNoop_ZeroDevices(t *testing.T) {
	var n Noop
	count, err := n.DeviceCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}
