package gpu

import "errors"

// ErrNoSuchCard is returned by CardInfo/CardState for an out-of-range
// or otherwise unavailable card index.
var ErrNoSuchCard = errors.New("gpu: no such card")

// Probe is a lazily-invoked constructor for one vendor Backend. It must
// not have side effects beyond detecting whether its vendor library is
// loadable; detection failure is reported by returning a Backend whose
// DeviceCount() is 0, not by returning an error.
type Probe func() Backend

// Registry holds the probes tried, in order, to find every available
// backend on a host. Vendor backends register themselves here via
// Register from an init() in their own file, following the capability
// interface pattern of §4.4 and §9. The registry holds probes only;
// Discover decides which of the resulting backends are kept.
var registry []Probe

// Register adds a vendor probe to the registry. Called from vendor
// backend packages' init().
func Register(p Probe) {
	registry = append(registry, p)
}

// Discover runs every registered probe and returns the resulting
// backends, keeping only those reporting at least one device. When no
// registered backend reports a device, the Facade holds the Noop backend
// alone, so callers never see an empty Facade.
func Discover() *Facade {
	var active []Backend
	for _, probe := range registry {
		b := probe()
		n, err := b.DeviceCount()
		if err != nil || n == 0 {
			continue
		}
		active = append(active, b)
	}
	if len(active) == 0 {
		active = append(active, Noop{})
	}
	return &Facade{backends: active}
}
