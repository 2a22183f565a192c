// Package scoring derives the two labels of a session: the dopamine spike
// flag and the addiction level.
//
// Each risk factor, the spike probability, every addiction score term and
// the discretization are separate pure methods on Config so they can be
// tested in isolation. Scorer adds the two random draws (noise, then the
// Bernoulli spike) on top.
package scoring

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/nvandessel/neuropulse/internal/constants"
	"github.com/nvandessel/neuropulse/internal/models"
)

// Input is the part of a session the label model reads.
type Input struct {
	Category           models.Category
	DurationMs         float64
	UnlockCount        int
	ConsecutiveMinutes int
	ScrollsPerMinute   float64
	UnlockFrequency    float64
	BingeFlag          bool
	TimeOfDay          float64
}

// InputFromRecord extracts the scoring input of an existing record.
func InputFromRecord(r models.SessionRecord) Input {
	return Input{
		Category:           r.AppCategory,
		DurationMs:         r.SessionDurationMs,
		UnlockCount:        r.UnlockCount,
		ConsecutiveMinutes: r.ConsecutiveMinutes,
		ScrollsPerMinute:   r.ScrollsPerMinute,
		UnlockFrequency:    r.UnlockFrequency,
		BingeFlag:          r.BingeFlag,
		TimeOfDay:          r.TimeOfDay,
	}
}

// RiskFactors holds the six boolean indicators in a fixed order.
type RiskFactors [constants.NumRiskFactors]bool

// Risk factor positions
const (
	FactorHighStimApp = iota
	FactorLongUsage
	FactorHighInteraction
	FactorFrequentUnlocks
	FactorBinge
	FactorLateUsage
)

// Count returns how many indicators are set.
func (f RiskFactors) Count() int {
	n := 0
	for _, v := range f {
		if v {
			n++
		}
	}
	return n
}

// HighStimApp: the session was in social, entertainment or games.
func (c Config) HighStimApp(in Input) bool {
	return in.Category.HighStimulation()
}

// LongUsage: more than LongUsageMinutes in the same app.
func (c Config) LongUsage(in Input) bool {
	return in.ConsecutiveMinutes > c.LongUsageMinutes
}

// HighInteraction: scrolling faster than HighScrollRate.
func (c Config) HighInteraction(in Input) bool {
	return in.ScrollsPerMinute > c.HighScrollRate
}

// FrequentUnlocks: unlocking more often than FrequentUnlockRate per hour.
func (c Config) FrequentUnlocks(in Input) bool {
	return in.UnlockFrequency > c.FrequentUnlockRate
}

// Binge: the session was a binge.
func (c Config) Binge(in Input) bool {
	return in.BingeFlag
}

// LateUsage: the session started after LateUsageStart or before EarlyUsageEnd.
func (c Config) LateUsage(in Input) bool {
	return in.TimeOfDay > c.LateUsageStart || in.TimeOfDay < c.EarlyUsageEnd
}

// RiskFactors evaluates all six indicators.
func (c Config) RiskFactors(in Input) RiskFactors {
	return RiskFactors{
		FactorHighStimApp:     c.HighStimApp(in),
		FactorLongUsage:       c.LongUsage(in),
		FactorHighInteraction: c.HighInteraction(in),
		FactorFrequentUnlocks: c.FrequentUnlocks(in),
		FactorBinge:           c.Binge(in),
		FactorLateUsage:       c.LateUsage(in),
	}
}

// DopamineProbability turns a risk-factor count plus noise into a spike
// probability clamped to [0, Ceiling]. Negative sums clamp to 0, which
// draws the same outcome as comparing a uniform draw against them.
func (c Config) DopamineProbability(count int, noise float64) float64 {
	p := float64(count)/constants.NumRiskFactors + noise
	return math.Max(0, math.Min(c.Ceiling, p))
}

// Breakdown is the addiction score with its weighted terms kept for
// transparency.
type Breakdown struct {
	DurationTerm    float64
	UnlockTerm      float64
	HighStimTerm    float64
	SpikeTerm       float64
	ConsecutiveTerm float64
	Total           float64
}

// DurationTerm is the weighted share of the six-hour duration norm.
func (c Config) DurationTerm(in Input) float64 {
	return c.DurationWeight * (in.DurationMs / c.DurationNormMs)
}

// UnlockTerm is the weighted share of the unlock norm.
func (c Config) UnlockTerm(in Input) float64 {
	return c.UnlockWeight * (float64(in.UnlockCount) / c.UnlockNorm)
}

// HighStimTerm is HighStimWeight for high-stimulation categories, else 0.
func (c Config) HighStimTerm(in Input) float64 {
	if in.Category.HighStimulation() {
		return c.HighStimWeight
	}
	return 0
}

// SpikeTerm is SpikeWeight when a dopamine spike was drawn, else 0.
func (c Config) SpikeTerm(spike bool) float64 {
	if spike {
		return c.SpikeWeight
	}
	return 0
}

// ConsecutiveTerm is the weighted share of the consecutive-minutes norm.
func (c Config) ConsecutiveTerm(in Input) float64 {
	return c.ConsecutiveWeight * (float64(in.ConsecutiveMinutes) / c.ConsecutiveNormMinutes)
}

// AddictionScore computes the five-term weighted score.
// Terms are summed in a fixed order so the total is reproducible.
func (c Config) AddictionScore(in Input, spike bool) Breakdown {
	b := Breakdown{
		DurationTerm:    c.DurationTerm(in),
		UnlockTerm:      c.UnlockTerm(in),
		HighStimTerm:    c.HighStimTerm(in),
		SpikeTerm:       c.SpikeTerm(spike),
		ConsecutiveTerm: c.ConsecutiveTerm(in),
	}
	b.Total = b.DurationTerm + b.UnlockTerm + b.HighStimTerm + b.SpikeTerm + b.ConsecutiveTerm
	return b
}

// Discretize maps a score to a level. Comparisons are strict, so a score
// exactly on a cut point lands in the higher level.
func (c Config) Discretize(score float64) models.AddictionLevel {
	switch {
	case score < c.HealthyBelow:
		return models.AddictionHealthy
	case score < c.AtRiskBelow:
		return models.AddictionAtRisk
	default:
		return models.AddictionHighRisk
	}
}

// Result is the full outcome of scoring one session.
type Result struct {
	Factors             RiskFactors
	Noise               float64
	DopamineProbability float64
	DopamineSpike       bool
	Score               Breakdown
	Level               models.AddictionLevel
}

// Scorer applies a validated Config and performs the random draws.
type Scorer struct {
	config Config
}

// NewScorer validates config and returns a scorer.
func NewScorer(config Config) (*Scorer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{config: config}, nil
}

// Config returns a copy of the scorer's configuration.
func (s *Scorer) Config() Config {
	return s.config
}

// Score draws the probability noise and the spike from src, in that order,
// and derives the addiction level.
func (s *Scorer) Score(in Input, src rand.Source) Result {
	r := Result{Factors: s.config.RiskFactors(in)}
	r.Noise = distuv.Normal{Mu: 0, Sigma: s.config.NoiseStd, Src: src}.Rand()
	r.DopamineProbability = s.config.DopamineProbability(r.Factors.Count(), r.Noise)
	r.DopamineSpike = distuv.Bernoulli{P: r.DopamineProbability, Src: src}.Rand() == 1
	r.Score = s.config.AddictionScore(in, r.DopamineSpike)
	r.Level = s.config.Discretize(r.Score.Total)
	return r
}
