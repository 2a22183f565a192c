package scoring

import (
	"fmt"
	"math"

	"github.com/nvandessel/neuropulse/internal/constants"
	"github.com/nvandessel/neuropulse/internal/models"
)

// Config holds every weight and threshold of the label model.
// It is a value: copy it, change it, validate it, hand it to NewScorer.
type Config struct {
	// Addiction score weights (0.0-1.0)
	DurationWeight    float64 `json:"duration_weight" yaml:"duration_weight"`
	UnlockWeight      float64 `json:"unlock_weight" yaml:"unlock_weight"`
	HighStimWeight    float64 `json:"high_stim_weight" yaml:"high_stim_weight"`
	SpikeWeight       float64 `json:"spike_weight" yaml:"spike_weight"`
	ConsecutiveWeight float64 `json:"consecutive_weight" yaml:"consecutive_weight"`

	// Normalizers that map each raw term onto roughly [0, 1]
	DurationNormMs         float64 `json:"duration_norm_ms" yaml:"duration_norm_ms"`
	UnlockNorm             float64 `json:"unlock_norm" yaml:"unlock_norm"`
	ConsecutiveNormMinutes float64 `json:"consecutive_norm_minutes" yaml:"consecutive_norm_minutes"`

	// Risk factor thresholds (strict comparisons)
	LongUsageMinutes   int     `json:"long_usage_minutes" yaml:"long_usage_minutes"`
	HighScrollRate     float64 `json:"high_scroll_rate" yaml:"high_scroll_rate"`
	FrequentUnlockRate float64 `json:"frequent_unlock_rate" yaml:"frequent_unlock_rate"`
	LateUsageStart     float64 `json:"late_usage_start" yaml:"late_usage_start"`
	EarlyUsageEnd      float64 `json:"early_usage_end" yaml:"early_usage_end"`

	// Dopamine spike probability
	NoiseStd float64 `json:"noise_std" yaml:"noise_std"`
	Ceiling  float64 `json:"ceiling" yaml:"ceiling"`

	// Addiction level cut points
	HealthyBelow float64 `json:"healthy_below" yaml:"healthy_below"`
	AtRiskBelow  float64 `json:"at_risk_below" yaml:"at_risk_below"`
}

// DefaultConfig returns the reference label model.
// Weights: Duration 25%, Unlocks 20%, High-stim 20%, Spike 15%, Consecutive 20%
func DefaultConfig() Config {
	return Config{
		DurationWeight:    constants.DurationWeight,
		UnlockWeight:      constants.UnlockWeight,
		HighStimWeight:    constants.HighStimWeight,
		SpikeWeight:       constants.SpikeWeight,
		ConsecutiveWeight: constants.ConsecutiveWeight,

		DurationNormMs:         constants.DurationNormMs,
		UnlockNorm:             constants.UnlockNorm,
		ConsecutiveNormMinutes: constants.ConsecutiveNormMinutes,

		LongUsageMinutes:   constants.LongUsageMinutes,
		HighScrollRate:     constants.HighScrollRate,
		FrequentUnlockRate: constants.FrequentUnlockRate,
		LateUsageStart:     constants.LateUsageStart,
		EarlyUsageEnd:      constants.EarlyUsageEnd,

		NoiseStd: constants.DopamineNoiseStd,
		Ceiling:  constants.DopamineCeiling,

		HealthyBelow: constants.HealthyBelow,
		AtRiskBelow:  constants.AtRiskBelow,
	}
}

// Validate checks that the configuration is usable.
// Weights are used as given; they are not renormalized.
func (c Config) Validate() error {
	type named struct {
		name  string
		value float64
	}

	for _, w := range []named{
		{"duration_weight", c.DurationWeight},
		{"unlock_weight", c.UnlockWeight},
		{"high_stim_weight", c.HighStimWeight},
		{"spike_weight", c.SpikeWeight},
		{"consecutive_weight", c.ConsecutiveWeight},
	} {
		if math.IsNaN(w.value) || w.value < 0 {
			return fmt.Errorf("%s must be >= 0, got %v: %w", w.name, w.value, models.ErrInvalidArgument)
		}
	}

	for _, n := range []named{
		{"duration_norm_ms", c.DurationNormMs},
		{"unlock_norm", c.UnlockNorm},
		{"consecutive_norm_minutes", c.ConsecutiveNormMinutes},
	} {
		if math.IsNaN(n.value) || math.IsInf(n.value, 0) || n.value <= 0 {
			return fmt.Errorf("%s must be > 0, got %v: %w", n.name, n.value, models.ErrInvalidArgument)
		}
	}

	if c.NoiseStd < 0 || math.IsNaN(c.NoiseStd) {
		return fmt.Errorf("noise_std must be >= 0, got %v: %w", c.NoiseStd, models.ErrInvalidArgument)
	}
	if !(c.Ceiling >= 0 && c.Ceiling <= 1) {
		return fmt.Errorf("ceiling must be between 0 and 1, got %v: %w", c.Ceiling, models.ErrInvalidArgument)
	}
	if !(c.HealthyBelow < c.AtRiskBelow) {
		return fmt.Errorf("healthy_below (%v) must be less than at_risk_below (%v): %w",
			c.HealthyBelow, c.AtRiskBelow, models.ErrInvalidArgument)
	}
	if !(0 <= c.EarlyUsageEnd && c.EarlyUsageEnd <= c.LateUsageStart && c.LateUsageStart <= 1) {
		return fmt.Errorf("late usage window (> %v or < %v) must satisfy 0 <= early <= late <= 1: %w",
			c.LateUsageStart, c.EarlyUsageEnd, models.ErrInvalidArgument)
	}
	return nil
}
