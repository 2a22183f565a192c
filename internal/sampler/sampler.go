// Package sampler draws the correlated primitives of one synthetic session
// and computes the features that depend on them.
//
// Every draw comes from a single rand.Source, in a fixed order, so a
// seeded source reproduces the same sessions bit for bit:
//
//	time of day → duration → category → unlocks → notif count →
//	notif response → extra app switches → extra minutes (high-stim only) →
//	scroll rate
//
// Reordering any of these draws changes every record after it.
package sampler

import (
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/nvandessel/neuropulse/internal/constants"
	"github.com/nvandessel/neuropulse/internal/models"
	"github.com/nvandessel/neuropulse/internal/regime"
)

// Primitives are the values drawn directly from regime distributions.
type Primitives struct {
	TimeOfDay          float64
	Regime             models.Regime
	DurationMs         float64
	Category           models.Category
	UnlockCount        int
	NotifCount         int
	NotifResponseLevel int
}

// Derived are the features computed from primitives, some with their own
// noise draws.
type Derived struct {
	AppSwitchCount     int
	ConsecutiveMinutes int
	BingeFlag          bool
	ScrollsPerMinute   float64
	UnlockFrequency    float64
}

// Sampler draws sessions from a regime table. It is not safe for
// concurrent use; the draw order is the reproducibility contract.
type Sampler struct {
	table      *regime.Table
	src        rand.Source
	timeOfDay  distuv.Uniform
	categories map[models.Regime]categorical

	feedResponse    *distuv.Categorical
	defaultResponse *distuv.Categorical
}

// New returns a sampler over table that draws from src.
func New(table *regime.Table, src rand.Source) *Sampler {
	s := &Sampler{
		table:           table,
		src:             src,
		timeOfDay:       distuv.Uniform{Min: 0, Max: 1, Src: src},
		categories:      make(map[models.Regime]categorical),
		feedResponse:    newCategorical(constants.FeedNotifResponseWeights, src),
		defaultResponse: newCategorical(constants.DefaultNotifResponseWeights, src),
	}
	for _, d := range table.Descriptors() {
		s.categories[d.Regime] = categorical{
			weights: slices.Clone(d.CategoryWeights),
			dist:    newCategorical(d.CategoryWeights, src),
		}
	}
	return s
}

// Draw samples a time of day and then the primitives of its regime.
func (s *Sampler) Draw() Primitives {
	tod := s.timeOfDay.Rand()
	// Uniform.Rand is Min + (Max-Min)*Float64(), which is already < 1.
	return s.Primitives(s.table.Lookup(tod), tod)
}

// Primitives samples duration, category, unlock count and notification
// behavior for a session at time tod under regime d.
func (s *Sampler) Primitives(d regime.Descriptor, tod float64) Primitives {
	durationBase := distuv.LogNormal{Mu: d.DurationMu, Sigma: d.DurationSigma, Src: s.src}.Rand() *
		constants.DurationScaleMillis
	category := models.Category(s.category(d).Rand())
	unlockBase := s.poisson(d.UnlockRate)

	p := Primitives{
		TimeOfDay:   tod,
		Regime:      d.Regime,
		DurationMs:  math.Max(durationBase, constants.MinSessionDurationMs),
		Category:    category,
		UnlockCount: max(unlockBase, constants.MinUnlockCount),
	}

	notifRate := constants.LightNotifRate
	if category.NotificationHeavy() {
		notifRate = constants.HeavyNotifRate
	}
	p.NotifCount = s.poisson(notifRate)

	response := s.defaultResponse
	if category.Feed() {
		response = s.feedResponse
	}
	p.NotifResponseLevel = int(response.Rand())

	return p
}

// Derive computes the dependent features of p.
func (s *Sampler) Derive(p Primitives) Derived {
	d := Derived{
		AppSwitchCount:     max(0, BaseAppSwitches(p.DurationMs)+s.poisson(constants.AppSwitchExtraRate)),
		ConsecutiveMinutes: BaseConsecutiveMinutes(p.DurationMs),
		BingeFlag:          IsBinge(p.DurationMs),
		UnlockFrequency:    UnlockFrequency(p.UnlockCount, p.DurationMs),
	}
	if p.Category.HighStimulation() {
		d.ConsecutiveMinutes += s.poisson(constants.HighStimExtraMinutesRate)
	}

	shape := constants.DefaultScrollShape
	if p.Category.Feed() {
		shape = constants.FeedScrollShape
	}
	d.ScrollsPerMinute = distuv.Gamma{Alpha: shape, Beta: 1 / constants.ScrollScale, Src: s.src}.Rand()

	return d
}

// categorical is a category distribution cached with the weights it was
// built from.
type categorical struct {
	weights []float64
	dist    *distuv.Categorical
}

// category returns the cached distribution for d's regime when d carries
// the table's weights, and builds one from d otherwise.
func (s *Sampler) category(d regime.Descriptor) *distuv.Categorical {
	if c, ok := s.categories[d.Regime]; ok && slices.Equal(c.weights, d.CategoryWeights) {
		return c.dist
	}
	return newCategorical(d.CategoryWeights, s.src)
}

func newCategorical(w []float64, src rand.Source) *distuv.Categorical {
	c := distuv.NewCategorical(w, src)
	return &c
}

func (s *Sampler) poisson(rate float64) int {
	return int(distuv.Poisson{Lambda: rate, Src: s.src}.Rand())
}
