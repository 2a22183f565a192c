package regime

import "github.com/nvandessel/neuropulse/internal/models"

// weights builds a category weight vector from a sparse map.
func weights(w map[models.Category]float64) []float64 {
	out := make([]float64, models.NumCategories)
	for c, v := range w {
		out[c] = v
	}
	return out
}

func uniformWeights() []float64 {
	out := make([]float64, models.NumCategories)
	for i := range out {
		out[i] = 1.0 / models.NumCategories
	}
	return out
}

// DefaultDescriptors returns the reference regime parameters in lookup
// order (morning, evening, work) followed by the night fallback.
func DefaultDescriptors() ([]Descriptor, Descriptor) {
	ordered := []Descriptor{
		{
			Regime:        models.RegimeMorning,
			Interval:      Interval{Lo: 0.25, Hi: 0.375},
			DurationMu:    7.5,
			DurationSigma: 0.8,
			UnlockRate:    5,
			CategoryWeights: weights(map[models.Category]float64{
				models.CategoryProductivity:  0.5,
				models.CategoryNews:          0.3,
				models.CategoryCommunication: 0.2,
			}),
		},
		{
			Regime:        models.RegimeEvening,
			Interval:      Interval{Lo: 0.79, Hi: 0.96},
			DurationMu:    9.5,
			DurationSigma: 1.3,
			UnlockRate:    20,
			CategoryWeights: weights(map[models.Category]float64{
				models.CategorySocial:        0.6,
				models.CategoryEntertainment: 0.25,
				models.CategoryGames:         0.15,
			}),
		},
		{
			Regime:          models.RegimeWork,
			Interval:        Interval{Lo: 0.375, Hi: 0.708},
			DurationMu:      8.5,
			DurationSigma:   1.0,
			UnlockRate:      12,
			CategoryWeights: uniformWeights(),
		},
	}
	night := Descriptor{
		Regime:        models.RegimeNight,
		DurationMu:    7.0,
		DurationSigma: 0.9,
		UnlockRate:    3,
		CategoryWeights: weights(map[models.Category]float64{
			models.CategorySocial:        0.4,
			models.CategoryEntertainment: 0.4,
			models.CategoryCommunication: 0.2,
		}),
	}
	return ordered, night
}

var defaultTable = mustDefault()

func mustDefault() *Table {
	ordered, night := DefaultDescriptors()
	t, err := NewTable(ordered, night)
	if err != nil {
		panic("regime: default table invalid: " + err.Error())
	}
	return t
}

// DefaultTable returns the reference regime table.
func DefaultTable() *Table {
	return defaultTable
}

// Classify maps a time of day in [0, 1) to its regime using the reference
// table. Every input maps to exactly one regime; night is the catch-all.
func Classify(timeOfDay float64) models.Regime {
	return defaultTable.Classify(timeOfDay)
}
