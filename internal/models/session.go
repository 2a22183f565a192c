package models

import (
	"fmt"
	"strconv"
)

// AddictionLevel is the three-level ordinal risk label.
type AddictionLevel int

const (
	AddictionHealthy  AddictionLevel = 0
	AddictionAtRisk   AddictionLevel = 1
	AddictionHighRisk AddictionLevel = 2
)

// NumAddictionLevels is the number of ordinal levels.
const NumAddictionLevels = 3

// String returns the display name used in reports.
func (l AddictionLevel) String() string {
	switch l {
	case AddictionHealthy:
		return "Healthy"
	case AddictionAtRisk:
		return "At Risk"
	case AddictionHighRisk:
		return "High Risk"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Valid returns true if l is one of the three levels.
func (l AddictionLevel) Valid() bool {
	return l >= AddictionHealthy && l <= AddictionHighRisk
}

// SessionRecord is one synthetic phone-usage session with its two labels.
// Records are built whole by a single sampling pass and never mutated.
type SessionRecord struct {
	UserID             string   `json:"user_id"`
	SessionDurationMs  float64  `json:"session_duration"`
	UnlockCount        int      `json:"unlock_count"`
	AppCategory        Category `json:"app_category"`
	NotifCount         int      `json:"notif_count"`
	NotifResponseLevel int      `json:"notif_response"`
	AppSwitchCount     int      `json:"app_switch_count"`
	TimeOfDay          float64  `json:"time_of_day"`
	ConsecutiveMinutes int      `json:"consecutive_same_app"`
	BingeFlag          bool     `json:"binge_flag"`
	ScrollsPerMinute   float64  `json:"scrolls_per_minute"`
	UnlockFrequency    float64  `json:"unlock_frequency"`

	DopamineSpike  bool           `json:"dopamine_spike_flag"`
	AddictionLevel AddictionLevel `json:"addiction_flag"`

	// Scoring intermediates, kept so labels can be audited against inputs.
	Regime              Regime  `json:"regime"`
	DopamineProbability float64 `json:"dopamine_probability"`
	AddictionScore      float64 `json:"addiction_score"`
}

// RawColumns is the column layout of the raw labeled table.
var RawColumns = []string{
	"user_id",
	"session_duration",
	"unlock_count",
	"app_name",
	"app_category",
	"notif_count",
	"notif_response",
	"app_switch_count",
	"time_of_day",
	"consecutive_same_app",
	"binge_flag",
	"scrolls_per_minute",
	"unlock_frequency",
	"dopamine_spike_flag",
	"addiction_flag",
}

// RawRow renders the record as strings in RawColumns order.
// Floats use the shortest representation that round-trips.
func (r SessionRecord) RawRow() []string {
	return []string{
		r.UserID,
		formatFloat(r.SessionDurationMs),
		strconv.Itoa(r.UnlockCount),
		r.AppCategory.String(),
		strconv.Itoa(int(r.AppCategory)),
		strconv.Itoa(r.NotifCount),
		strconv.Itoa(r.NotifResponseLevel),
		strconv.Itoa(r.AppSwitchCount),
		formatFloat(r.TimeOfDay),
		strconv.Itoa(r.ConsecutiveMinutes),
		boolDigit(r.BingeFlag),
		formatFloat(r.ScrollsPerMinute),
		formatFloat(r.UnlockFrequency),
		boolDigit(r.DopamineSpike),
		strconv.Itoa(int(r.AddictionLevel)),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
