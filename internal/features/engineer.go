// Package features turns labeled session records into a model-ready
// feature matrix and target vectors, and exports them for training.
//
// Everything here is deterministic. Row i of every output corresponds to
// record i of the input; no row is filtered or reordered.
package features

import (
	"github.com/nvandessel/neuropulse/internal/constants"
	"github.com/nvandessel/neuropulse/internal/models"
)

// Columns is the stable feature order: the 11 raw numeric columns followed
// by the 5 engineered ones.
var Columns = []string{
	"session_duration",
	"unlock_count",
	"app_category",
	"notif_count",
	"notif_response",
	"app_switch_count",
	"time_of_day",
	"consecutive_same_app",
	"binge_flag",
	"scrolls_per_minute",
	"unlock_frequency",
	"duration_hours",
	"high_stim_app",
	"notif_responsiveness",
	"usage_intensity",
	"evening_usage",
}

// NumColumns is len(Columns).
const NumColumns = 16

// Evening usage window. Both ends are inclusive.
const (
	eveningFrom = 0.79
	eveningTo   = 0.25
)

// Row computes the feature vector of one record.
func Row(r models.SessionRecord) [NumColumns]float64 {
	return [NumColumns]float64{
		r.SessionDurationMs,
		float64(r.UnlockCount),
		float64(r.AppCategory),
		float64(r.NotifCount),
		float64(r.NotifResponseLevel),
		float64(r.AppSwitchCount),
		r.TimeOfDay,
		float64(r.ConsecutiveMinutes),
		indicator(r.BingeFlag),
		r.ScrollsPerMinute,
		r.UnlockFrequency,
		DurationHours(r.SessionDurationMs),
		indicator(r.AppCategory.HighStimulation()),
		NotifResponsiveness(r.NotifResponseLevel),
		UsageIntensity(r.UnlockFrequency, r.ScrollsPerMinute),
		indicator(EveningUsage(r.TimeOfDay)),
	}
}

// DurationHours converts milliseconds to hours.
func DurationHours(ms float64) float64 {
	return ms / constants.MillisPerHour
}

// NotifResponsiveness scales the response level onto [0, 1].
func NotifResponsiveness(level int) float64 {
	return float64(level) / constants.MaxNotifResponseLevel
}

// UsageIntensity combines unlock frequency and scroll rate.
func UsageIntensity(unlockFrequency, scrollsPerMinute float64) float64 {
	return unlockFrequency * scrollsPerMinute / 100
}

// EveningUsage reports whether t falls in the inclusive evening/early
// window. This is wider than the late-usage risk factor, which is strict.
func EveningUsage(t float64) bool {
	return t >= eveningFrom || t <= eveningTo
}

// Engineer builds the feature matrix, one row per record.
func Engineer(records []models.SessionRecord) *Matrix {
	m := NewMatrix(len(records), Columns)
	for i, r := range records {
		row := Row(r)
		copy(m.data[i*NumColumns:(i+1)*NumColumns], row[:])
	}
	return m
}

// Targets returns the two label vectors aligned with records: the
// dopamine spike flag as 0/1 and the addiction level as 0, 1 or 2.
func Targets(records []models.SessionRecord) (dopamine, addiction []int8) {
	dopamine = make([]int8, len(records))
	addiction = make([]int8, len(records))
	for i, r := range records {
		if r.DopamineSpike {
			dopamine[i] = 1
		}
		addiction[i] = int8(r.AddictionLevel)
	}
	return dopamine, addiction
}

// TrainingSet is a feature matrix paired with its targets.
type TrainingSet struct {
	Features  *Matrix
	Dopamine  []int8
	Addiction []int8
}

// BuildTrainingSet engineers features and targets in one pass.
func BuildTrainingSet(records []models.SessionRecord) TrainingSet {
	dopamine, addiction := Targets(records)
	return TrainingSet{
		Features:  Engineer(records),
		Dopamine:  dopamine,
		Addiction: addiction,
	}
}

// Len returns the number of rows.
func (ts TrainingSet) Len() int {
	if ts.Features == nil {
		return 0
	}
	return ts.Features.Rows()
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
