package rdv

import (
	"time"

	"github.com/aistorelabs/rendezvous/hk"
	"github.com/aistorelabs/rendezvous/stats"
)

const sweeperName = "rdv-sweeper" + hk.NameSuffix

// RegisterSweeper wires the registry's expiration sweep into the generic
// housekeeping scheduler, directly continuing the teacher's own
// hk.Reg(name+hk.NameSuffix, fn, interval) registration idiom rather than a
// relay-specific ticker goroutine.
func RegisterSweeper(r *Registry, interval time.Duration, tracker *stats.Tracker) {
	hk.Reg(sweeperName, func() time.Duration {
		removed := r.Sweep(time.Now())
		if tracker != nil && removed > 0 {
			tracker.TransfersExpired.Add(float64(removed))
		}
		return interval
	}, interval)
}

// UnregisterSweeper stops the sweeper. Exposed for test isolation.
func UnregisterSweeper() { hk.Unreg(sweeperName) }
