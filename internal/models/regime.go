package models

// Regime is a time-of-day behavioral bucket. Each regime selects its own
// duration, category and unlock distributions.
type Regime string

const (
	RegimeMorning Regime = "morning" // 06:00-09:00
	RegimeWork    Regime = "work"    // 09:00-17:00
	RegimeEvening Regime = "evening" // 19:00-23:00
	RegimeNight   Regime = "night"   // everything else
)

// AllRegimes returns the four regimes in reporting order.
func AllRegimes() []Regime {
	return []Regime{RegimeMorning, RegimeWork, RegimeEvening, RegimeNight}
}

// Valid returns true if the regime is a recognized value.
func (r Regime) Valid() bool {
	switch r {
	case RegimeMorning, RegimeWork, RegimeEvening, RegimeNight:
		return true
	}
	return false
}

// String returns the string representation of the regime.
func (r Regime) String() string {
	return string(r)
}
