package gpu

import (
	"strconv"

	"github.com/google/uuid"
)

// synthesisNamespace is a fixed, arbitrary namespace UUID used only to
// seed SynthesizeUUID's deterministic hash; it has no meaning beyond
// giving NewSHA1 a stable namespace argument.
var synthesisNamespace = uuid.MustParse("a3b1c2d3-e4f5-4678-9abc-def012345678")

// SynthesizeUUID derives a stable card UUID from (hostname, boot-time,
// bus-addr) for vendor backends that don't expose one natively. It is
// deterministic and stable across a single boot: a reboot changes
// bootTimeSec, and therefore the synthesized UUID, by design (§4.4).
func SynthesizeUUID(hostname string, bootTimeSec uint64, busAddr string) string {
	name := hostname + "/" + strconv.FormatUint(bootTimeSec, 10) + "/" + busAddr
	return uuid.NewSHA1(synthesisNamespace, []byte(name)).String()
}
