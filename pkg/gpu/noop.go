package gpu

import "github.com/hpctools/sonar/pkg/envelope"

// Noop is the fallback Backend used when a vendor library cannot be
// loaded, or when no vendor backend claims the host at all. It reports
// zero devices and never errors, matching §4.4's "dynamic loading"
// requirement that absence be side-effect-free.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) DeviceCount() (int, error) { return 0, nil }

func (Noop) CardInfo(int) (envelope.CardInfo, error) { return envelope.CardInfo{}, ErrNoSuchCard }

func (Noop) CardState(int) (envelope.GPUCardState, error) {
	return envelope.GPUCardState{}, ErrNoSuchCard
}

func (Noop) ProcessUsages(int) ([]ProcessUsage, error) { return nil, nil }

func (Noop) FreeProcesses() {}
