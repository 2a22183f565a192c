package sampler

import (
	"math"

	"github.com/nvandessel/neuropulse/internal/constants"
)

// BaseAppSwitches is the switch count implied by session length alone:
// one switch per five minutes.
func BaseAppSwitches(durationMs float64) int {
	return int(math.Floor(durationMs / constants.AppSwitchIntervalMs))
}

// BaseConsecutiveMinutes is the whole-minute length of the session.
func BaseConsecutiveMinutes(durationMs float64) int {
	return int(math.Floor(durationMs / constants.MillisPerMinute))
}

// IsBinge reports whether the session ran longer than two hours.
func IsBinge(durationMs float64) bool {
	return durationMs > constants.BingeThresholdMs
}

// UnlockFrequency normalizes an unlock count to an hourly rate.
func UnlockFrequency(unlocks int, durationMs float64) float64 {
	return float64(unlocks) * constants.MillisPerHour / durationMs
}
