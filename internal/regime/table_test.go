package regime

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/neuropulse/internal/models"
)

func TestClassify_ReferenceBoundaries(t *testing.T) {
	tests := []struct {
		name string
		tod  float64
		want models.Regime
	}{
		{"midnight", 0, models.RegimeNight},
		{"just before morning", math.Nextafter(0.25, 0), models.RegimeNight},
		{"morning start", 0.25, models.RegimeMorning},
		{"mid morning", 0.3, models.RegimeMorning},
		{"shared boundary goes to morning", 0.375, models.RegimeMorning},
		{"just after morning", math.Nextafter(0.375, 1), models.RegimeWork},
		{"mid work", 0.5, models.RegimeWork},
		{"work end", 0.708, models.RegimeWork},
		{"gap after work", math.Nextafter(0.708, 1), models.RegimeNight},
		{"early evening gap", 0.75, models.RegimeNight},
		{"just before evening", math.Nextafter(0.79, 0), models.RegimeNight},
		{"evening start", 0.79, models.RegimeEvening},
		{"evening", 0.85, models.RegimeEvening},
		{"evening end", 0.96, models.RegimeEvening},
		{"after evening", math.Nextafter(0.96, 1), models.RegimeNight},
		{"last representable", math.Nextafter(1, 0), models.RegimeNight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.tod), "Classify(%v)", tt.tod)
		})
	}
}

func TestTable_PartitionIsExhaustive(t *testing.T) {
	table := DefaultTable()
	ordered := table.Descriptors()
	ordered = ordered[:len(ordered)-1]

	check := func(tod float64) {
		got := table.Lookup(tod)
		require.True(t, got.Regime.Valid(), "t=%v mapped to invalid regime", tod)

		// The first matching interval must be the one returned; if none match
		// the fallback must be returned.
		var first *Descriptor
		for i := range ordered {
			if ordered[i].Contains(tod) {
				first = &ordered[i]
				break
			}
		}
		if first == nil {
			assert.Equal(t, models.RegimeNight, got.Regime, "t=%v", tod)
		} else {
			assert.Equal(t, first.Regime, got.Regime, "t=%v", tod)
		}
	}

	for i := 0; i < 100_000; i++ {
		check(float64(i) / 100_000)
	}
	for _, b := range table.Boundaries() {
		check(b)
		check(math.Nextafter(b, 0))
		check(math.Nextafter(b, 1))
	}
}

func TestTable_DefaultIntervalsOnlyTouchAtBoundaries(t *testing.T) {
	ordered, _ := DefaultDescriptors()
	for i := range ordered {
		for j := i + 1; j < len(ordered); j++ {
			assert.False(t, ordered[i].Interval.overlaps(ordered[j].Interval),
				"%s and %s overlap", ordered[i].Regime, ordered[j].Regime)
		}
	}

	// Morning and work share exactly 0.375; the earlier descriptor owns it.
	assert.True(t, ordered[0].Contains(0.375))
	assert.True(t, ordered[2].Contains(0.375))
	assert.Equal(t, models.RegimeMorning, Classify(0.375))
}

func TestTable_DefaultWeightsSumToOne(t *testing.T) {
	for _, d := range DefaultTable().Descriptors() {
		sum := 0.0
		for _, w := range d.CategoryWeights {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-12, "regime %s", d.Regime)
	}
}

func TestNewTable_Rejects(t *testing.T) {
	base := func() ([]Descriptor, Descriptor) { return DefaultDescriptors() }

	tests := []struct {
		name   string
		mutate func(ordered []Descriptor, fallback *Descriptor) []Descriptor
	}{
		{"weights do not sum to one", func(o []Descriptor, _ *Descriptor) []Descriptor {
			o[0].CategoryWeights[1] = 0.6
			return o
		}},
		{"negative weight", func(o []Descriptor, _ *Descriptor) []Descriptor {
			o[1].CategoryWeights[0] = -0.1
			o[1].CategoryWeights[9] = 0.1
			return o
		}},
		{"short weight vector", func(o []Descriptor, _ *Descriptor) []Descriptor {
			o[2].CategoryWeights = []float64{0.5, 0.5}
			return o
		}},
		{"zero sigma", func(o []Descriptor, _ *Descriptor) []Descriptor {
			o[0].DurationSigma = 0
			return o
		}},
		{"non-positive unlock rate", func(_ []Descriptor, f *Descriptor) []Descriptor {
			f.UnlockRate = 0
			o, _ := DefaultDescriptors()
			return o
		}},
		{"overlapping intervals", func(o []Descriptor, _ *Descriptor) []Descriptor {
			o[2].Interval = Interval{Lo: 0.3, Hi: 0.708}
			return o
		}},
		{"interval out of range", func(o []Descriptor, _ *Descriptor) []Descriptor {
			o[1].Interval = Interval{Lo: 0.79, Hi: 1.2}
			return o
		}},
		{"inverted interval", func(o []Descriptor, _ *Descriptor) []Descriptor {
			o[1].Interval = Interval{Lo: 0.96, Hi: 0.79}
			return o
		}},
		{"duplicate regime", func(o []Descriptor, _ *Descriptor) []Descriptor {
			o[1].Regime = models.RegimeMorning
			return o
		}},
		{"fallback also ordered", func(o []Descriptor, f *Descriptor) []Descriptor {
			f.Regime = models.RegimeWork
			return o
		}},
		{"unknown regime", func(o []Descriptor, _ *Descriptor) []Descriptor {
			o[0].Regime = "brunch"
			return o
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ordered, fallback := base()
			ordered = tt.mutate(ordered, &fallback)
			_, err := NewTable(ordered, fallback)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrInvalidArgument), "got %v", err)
		})
	}
}

func TestNewTable_CopiesInput(t *testing.T) {
	ordered, fallback := DefaultDescriptors()
	table, err := NewTable(ordered, fallback)
	require.NoError(t, err)

	ordered[0].CategoryWeights[1] = 42
	got := table.Lookup(0.3)
	assert.Equal(t, 0.5, got.CategoryWeights[models.CategoryProductivity])

	got.CategoryWeights[1] = 7
	assert.Equal(t, 0.5, table.Lookup(0.3).CategoryWeights[models.CategoryProductivity],
		"Lookup must not expose shared weight storage")
}

func TestTable_CustomPrecedence(t *testing.T) {
	ordered, fallback := DefaultDescriptors()
	// Put work first: now 0.375 belongs to work.
	ordered[0], ordered[2] = ordered[2], ordered[0]
	table, err := NewTable(ordered, fallback)
	require.NoError(t, err)

	assert.Equal(t, models.RegimeWork, table.Classify(0.375))
	assert.Equal(t, models.RegimeMorning, table.Classify(0.3))
}
