package features

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/neuropulse/internal/dataset"
	"github.com/nvandessel/neuropulse/internal/models"
)

func sampleRecord() models.SessionRecord {
	return models.SessionRecord{
		SessionDurationMs:  7_200_000,
		UnlockCount:        4,
		AppCategory:        models.CategoryEntertainment,
		NotifCount:         2,
		NotifResponseLevel: 1,
		AppSwitchCount:     25,
		TimeOfDay:          0.79,
		ConsecutiveMinutes: 130,
		BingeFlag:          false,
		ScrollsPerMinute:   10,
		UnlockFrequency:    2,
		DopamineSpike:      true,
		AddictionLevel:     models.AddictionHighRisk,
	}
}

func TestColumns(t *testing.T) {
	assert.Len(t, Columns, NumColumns)
	seen := map[string]bool{}
	for _, c := range Columns {
		assert.False(t, seen[c], "duplicate column %s", c)
		seen[c] = true
	}
	assert.Equal(t, "evening_usage", Columns[NumColumns-1])
}

func TestRow(t *testing.T) {
	row := Row(sampleRecord())
	want := map[string]float64{
		"session_duration":     7_200_000,
		"unlock_count":         4,
		"app_category":         2,
		"notif_response":       1,
		"app_switch_count":     25,
		"time_of_day":          0.79,
		"binge_flag":           0,
		"duration_hours":       2,
		"high_stim_app":        1,
		"notif_responsiveness": 0.5,
		"usage_intensity":      0.2,
		"evening_usage":        1,
	}
	for j, name := range Columns {
		if v, ok := want[name]; ok {
			assert.InDelta(t, v, row[j], 1e-12, name)
		}
	}
}

func TestEveningUsage_InclusiveBounds(t *testing.T) {
	tests := []struct {
		t    float64
		want bool
	}{
		{0.0, true},
		{0.25, true},
		{math.Nextafter(0.25, 1), false},
		{0.5, false},
		{math.Nextafter(0.79, 0), false},
		{0.79, true},
		{0.99, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EveningUsage(tt.t), "EveningUsage(%v)", tt.t)
	}
}

func TestEngineer_ShapeAndAlignment(t *testing.T) {
	records, err := dataset.Generate(1500, 42)
	require.NoError(t, err)

	m := Engineer(records)
	require.Equal(t, len(records), m.Rows())
	require.Equal(t, NumColumns, m.Cols())
	assert.Equal(t, Columns, m.Columns())

	for i, r := range records {
		want := Row(r)
		require.Equal(t, want[:], m.Row(i), "row %d", i)
	}

	dop, add := Targets(records)
	require.Len(t, dop, len(records))
	require.Len(t, add, len(records))
	for i, r := range records {
		assert.Equal(t, r.DopamineSpike, dop[i] == 1)
		assert.Equal(t, int8(r.AddictionLevel), add[i])
	}
}

func TestEngineer_DeterministicAndPure(t *testing.T) {
	records := []models.SessionRecord{sampleRecord(), sampleRecord()}
	records[1].TimeOfDay = 0.5
	before := append([]models.SessionRecord(nil), records...)

	a := Engineer(records)
	b := Engineer(records)
	assert.Equal(t, a, b)
	assert.Equal(t, before, records)
}

func TestEngineer_Empty(t *testing.T) {
	m := Engineer(nil)
	assert.Equal(t, 0, m.Rows())
	assert.Equal(t, NumColumns, m.Cols())

	_, err := m.Dense()
	assert.True(t, errors.Is(err, models.ErrInvalidArgument))

	ts := BuildTrainingSet(nil)
	assert.Equal(t, 0, ts.Len())
}

func TestMatrix_Dense(t *testing.T) {
	m := Engineer([]models.SessionRecord{sampleRecord()})
	d, err := m.Dense()
	require.NoError(t, err)
	r, c := d.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, NumColumns, c)

	d.Set(0, 0, -1)
	assert.Equal(t, 7_200_000.0, m.At(0, 0), "Dense must copy")

	idx, ok := m.ColumnIndex("usage_intensity")
	require.True(t, ok)
	assert.InDelta(t, 0.2, m.At(0, idx), 1e-12)
	_, ok = m.ColumnIndex("nope")
	assert.False(t, ok)
}
