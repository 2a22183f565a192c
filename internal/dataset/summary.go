package dataset

import (
	"github.com/nvandessel/neuropulse/internal/models"
)

// Summary is a compact description of a generated dataset.
type Summary struct {
	Rows           int                            `json:"rows"`
	DopamineSpikes [2]int                         `json:"dopamine_spike_counts"`
	Addiction      [models.NumAddictionLevels]int `json:"addiction_level_counts"`
	Regimes        map[models.Regime]int          `json:"regimes"`
	Categories     map[string]int                 `json:"categories"`
	BingeRate      float64                        `json:"binge_rate"`
	MeanDurationMs float64                        `json:"mean_duration_ms"`
	SpikeRate      float64                        `json:"spike_rate"`
}

// Summarize counts labels, regimes and categories. Every regime and
// category is present in the maps, with zero counts where nothing was drawn.
func Summarize(records []models.SessionRecord) Summary {
	s := Summary{
		Rows:       len(records),
		Regimes:    make(map[models.Regime]int, 4),
		Categories: make(map[string]int, models.NumCategories),
	}
	for _, c := range models.AllCategories() {
		s.Categories[c.String()] = 0
	}
	for _, r := range models.AllRegimes() {
		s.Regimes[r] = 0
	}
	if len(records) == 0 {
		return s
	}

	binges := 0
	var totalDuration float64
	for _, r := range records {
		if r.DopamineSpike {
			s.DopamineSpikes[1]++
		} else {
			s.DopamineSpikes[0]++
		}
		if r.AddictionLevel.Valid() {
			s.Addiction[r.AddictionLevel]++
		}
		if r.Regime != "" {
			s.Regimes[r.Regime]++
		}
		s.Categories[r.AppCategory.String()]++
		if r.BingeFlag {
			binges++
		}
		totalDuration += r.SessionDurationMs
	}

	n := float64(len(records))
	s.BingeRate = float64(binges) / n
	s.SpikeRate = float64(s.DopamineSpikes[1]) / n
	s.MeanDurationMs = totalDuration / n
	return s
}
