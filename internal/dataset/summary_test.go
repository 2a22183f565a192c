package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/neuropulse/internal/models"
)

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Rows)
	assert.Zero(t, s.BingeRate)
	assert.Len(t, s.Regimes, 4)
	assert.Len(t, s.Categories, models.NumCategories)
}

func TestSummarize_Counts(t *testing.T) {
	records := []models.SessionRecord{
		{SessionDurationMs: 100_000, AppCategory: models.CategorySocial, Regime: models.RegimeEvening,
			DopamineSpike: true, AddictionLevel: models.AddictionHighRisk, BingeFlag: true},
		{SessionDurationMs: 300_000, AppCategory: models.CategorySocial, Regime: models.RegimeNight,
			AddictionLevel: models.AddictionAtRisk},
		{SessionDurationMs: 200_000, AppCategory: models.CategoryNews, Regime: models.RegimeMorning,
			AddictionLevel: models.AddictionHealthy},
		{SessionDurationMs: 400_000, AppCategory: models.CategoryNews, Regime: models.RegimeMorning,
			AddictionLevel: models.AddictionHealthy},
	}

	s := Summarize(records)
	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, [2]int{3, 1}, s.DopamineSpikes)
	assert.Equal(t, [models.NumAddictionLevels]int{2, 1, 1}, s.Addiction)
	assert.Equal(t, 2, s.Regimes[models.RegimeMorning])
	assert.Equal(t, 2, s.Categories["social"])
	assert.Len(t, s.Categories, models.NumCategories)
	assert.Zero(t, s.Categories["games"])
	assert.Len(t, s.Regimes, 4)
	assert.Zero(t, s.Regimes[models.RegimeWork])
	assert.InDelta(t, 0.25, s.BingeRate, 1e-12)
	assert.InDelta(t, 0.25, s.SpikeRate, 1e-12)
	assert.InDelta(t, 250_000, s.MeanDurationMs, 1e-9)
}

func TestSummarize_GeneratedTotals(t *testing.T) {
	records, err := Generate(3000, 42)
	require.NoError(t, err)
	s := Summarize(records)

	assert.Equal(t, 3000, s.DopamineSpikes[0]+s.DopamineSpikes[1])
	assert.Equal(t, 3000, s.Addiction[0]+s.Addiction[1]+s.Addiction[2])

	total := 0
	for _, c := range s.Regimes {
		total += c
	}
	assert.Equal(t, 3000, total)
	assert.Len(t, s.Regimes, 4)
	assert.Greater(t, s.MeanDurationMs, 30_000.0)
}
