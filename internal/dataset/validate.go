package dataset

import (
	"fmt"
	"math"

	"github.com/nvandessel/neuropulse/internal/constants"
	"github.com/nvandessel/neuropulse/internal/models"
	"github.com/nvandessel/neuropulse/internal/scoring"
)

// Validate checks one record against its value ranges and returns a
// *models.DomainError for the first field out of range.
func Validate(index int, r models.SessionRecord, cfg scoring.Config) error {
	type check struct {
		field string
		value float64
		ok    bool
		want  string
	}

	checks := []check{
		{"session_duration", r.SessionDurationMs,
			finite(r.SessionDurationMs) && r.SessionDurationMs >= constants.MinSessionDurationMs,
			fmt.Sprintf(">= %d", constants.MinSessionDurationMs)},
		{"unlock_count", float64(r.UnlockCount), r.UnlockCount >= constants.MinUnlockCount,
			fmt.Sprintf(">= %d", constants.MinUnlockCount)},
		{"app_category", float64(r.AppCategory), r.AppCategory.Valid(),
			fmt.Sprintf("in [0, %d)", models.NumCategories)},
		{"notif_count", float64(r.NotifCount), r.NotifCount >= 0, ">= 0"},
		{"notif_response", float64(r.NotifResponseLevel),
			r.NotifResponseLevel >= 0 && r.NotifResponseLevel <= constants.MaxNotifResponseLevel,
			fmt.Sprintf("in [0, %d]", constants.MaxNotifResponseLevel)},
		{"app_switch_count", float64(r.AppSwitchCount), r.AppSwitchCount >= 0, ">= 0"},
		{"time_of_day", r.TimeOfDay, r.TimeOfDay >= 0 && r.TimeOfDay < 1, "in [0, 1)"},
		{"consecutive_same_app", float64(r.ConsecutiveMinutes), r.ConsecutiveMinutes >= 0, ">= 0"},
		{"scrolls_per_minute", r.ScrollsPerMinute, finite(r.ScrollsPerMinute) && r.ScrollsPerMinute >= 0, "finite, >= 0"},
		{"unlock_frequency", r.UnlockFrequency, finite(r.UnlockFrequency) && r.UnlockFrequency >= 0, "finite, >= 0"},
		{"dopamine_probability", r.DopamineProbability,
			r.DopamineProbability >= 0 && r.DopamineProbability <= cfg.Ceiling,
			fmt.Sprintf("in [0, %v]", cfg.Ceiling)},
		{"addiction_score", r.AddictionScore, finite(r.AddictionScore) && r.AddictionScore >= 0, "finite, >= 0"},
		{"addiction_flag", float64(r.AddictionLevel), r.AddictionLevel.Valid(),
			fmt.Sprintf("in [0, %d)", models.NumAddictionLevels)},
	}

	for _, c := range checks {
		if !c.ok {
			return &models.DomainError{Index: index, Field: c.field, Value: c.value, Want: c.want}
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
