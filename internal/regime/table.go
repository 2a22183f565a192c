// Package regime maps a time of day onto one of four behavioral regimes and
// holds the per-regime sampling parameters.
//
// A Table is an ordered list of interval descriptors plus a catch-all.
// Lookup walks the list in order and returns the first descriptor whose
// closed interval contains the time; anything unmatched falls through to
// the catch-all. Order is the precedence rule: two descriptors may share a
// boundary point, and the earlier one wins it. NewTable rejects tables whose
// intervals overlap on more than a shared boundary.
package regime

import (
	"fmt"
	"math"
	"sort"

	"github.com/nvandessel/neuropulse/internal/constants"
	"github.com/nvandessel/neuropulse/internal/models"
)

// Interval is a closed range [Lo, Hi] on the unit day, 0 = midnight.
type Interval struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// Contains reports whether Lo <= t <= Hi.
func (iv Interval) Contains(t float64) bool {
	return iv.Lo <= t && t <= iv.Hi
}

// overlaps reports whether two intervals share more than a single point.
func (iv Interval) overlaps(other Interval) bool {
	return math.Max(iv.Lo, other.Lo) < math.Min(iv.Hi, other.Hi)
}

// Descriptor carries everything the sampler needs for one regime.
type Descriptor struct {
	Regime   models.Regime `json:"regime" yaml:"regime"`
	Interval Interval      `json:"interval" yaml:"interval"`

	// DurationMu and DurationSigma parameterize the log-normal session
	// duration, in seconds before scaling to milliseconds.
	DurationMu    float64 `json:"duration_mu" yaml:"duration_mu"`
	DurationSigma float64 `json:"duration_sigma" yaml:"duration_sigma"`

	// UnlockRate is the Poisson rate of the unlock count.
	UnlockRate float64 `json:"unlock_rate" yaml:"unlock_rate"`

	// CategoryWeights is indexed by models.Category and must sum to 1.
	CategoryWeights []float64 `json:"category_weights" yaml:"category_weights"`
}

// Contains reports whether t falls inside the descriptor's interval.
func (d Descriptor) Contains(t float64) bool {
	return d.Interval.Contains(t)
}

// Validate checks the distribution parameters of a single descriptor.
func (d Descriptor) Validate() error {
	if !d.Regime.Valid() {
		return fmt.Errorf("unknown regime %q: %w", d.Regime, models.ErrInvalidArgument)
	}
	if !finite(d.DurationMu) || !finite(d.DurationSigma) || d.DurationSigma <= 0 {
		return fmt.Errorf("regime %s: duration mu/sigma must be finite with sigma > 0, got (%v, %v): %w",
			d.Regime, d.DurationMu, d.DurationSigma, models.ErrInvalidArgument)
	}
	if !finite(d.UnlockRate) || d.UnlockRate <= 0 {
		return fmt.Errorf("regime %s: unlock rate must be > 0, got %v: %w",
			d.Regime, d.UnlockRate, models.ErrInvalidArgument)
	}
	if len(d.CategoryWeights) != models.NumCategories {
		return fmt.Errorf("regime %s: need %d category weights, got %d: %w",
			d.Regime, models.NumCategories, len(d.CategoryWeights), models.ErrInvalidArgument)
	}
	sum := 0.0
	for i, w := range d.CategoryWeights {
		if !finite(w) || w < 0 {
			return fmt.Errorf("regime %s: weight for %s must be >= 0, got %v: %w",
				d.Regime, models.Category(i), w, models.ErrInvalidArgument)
		}
		sum += w
	}
	if math.Abs(sum-1) > constants.WeightSumTolerance {
		return fmt.Errorf("regime %s: category weights sum to %v, want 1: %w",
			d.Regime, sum, models.ErrInvalidArgument)
	}
	return nil
}

// Table is an ordered, validated set of regime descriptors.
// The zero value is not usable; build one with NewTable or DefaultTable.
type Table struct {
	ordered  []Descriptor
	fallback Descriptor
}

// NewTable validates and returns a table. ordered is checked in order by
// Lookup; fallback catches every time the ordered intervals miss.
func NewTable(ordered []Descriptor, fallback Descriptor) (*Table, error) {
	seen := make(map[models.Regime]bool, len(ordered)+1)
	for i, d := range ordered {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		iv := d.Interval
		if !(0 <= iv.Lo && iv.Lo <= iv.Hi && iv.Hi < 1) {
			return nil, fmt.Errorf("regime %s: interval [%v, %v] must satisfy 0 <= lo <= hi < 1: %w",
				d.Regime, iv.Lo, iv.Hi, models.ErrInvalidArgument)
		}
		if seen[d.Regime] {
			return nil, fmt.Errorf("regime %s listed twice: %w", d.Regime, models.ErrInvalidArgument)
		}
		seen[d.Regime] = true
		for _, prev := range ordered[:i] {
			if iv.overlaps(prev.Interval) {
				return nil, fmt.Errorf("regime %s [%v, %v] overlaps %s [%v, %v]: %w",
					d.Regime, iv.Lo, iv.Hi, prev.Regime, prev.Interval.Lo, prev.Interval.Hi,
					models.ErrInvalidArgument)
			}
		}
	}
	if err := fallback.Validate(); err != nil {
		return nil, err
	}
	if seen[fallback.Regime] {
		return nil, fmt.Errorf("fallback regime %s also has an interval: %w",
			fallback.Regime, models.ErrInvalidArgument)
	}

	t := &Table{
		ordered:  make([]Descriptor, len(ordered)),
		fallback: cloneDescriptor(fallback),
	}
	for i, d := range ordered {
		t.ordered[i] = cloneDescriptor(d)
	}
	return t, nil
}

// Lookup returns a copy of the descriptor governing time of day t.
func (t *Table) Lookup(tod float64) Descriptor {
	return cloneDescriptor(*t.find(tod))
}

// Classify returns only the regime for t.
func (t *Table) Classify(tod float64) models.Regime {
	return t.find(tod).Regime
}

func (t *Table) find(tod float64) *Descriptor {
	for i := range t.ordered {
		if t.ordered[i].Contains(tod) {
			return &t.ordered[i]
		}
	}
	return &t.fallback
}

// Descriptors returns the ordered descriptors followed by the fallback.
// The returned slice is a copy.
func (t *Table) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(t.ordered)+1)
	for _, d := range t.ordered {
		out = append(out, cloneDescriptor(d))
	}
	return append(out, cloneDescriptor(t.fallback))
}

// Boundaries returns every interval endpoint in ascending order.
// Tests sweep these points and their float neighbors.
func (t *Table) Boundaries() []float64 {
	var pts []float64
	for _, d := range t.ordered {
		pts = append(pts, d.Interval.Lo, d.Interval.Hi)
	}
	sort.Float64s(pts)
	return pts
}

func cloneDescriptor(d Descriptor) Descriptor {
	d.CategoryWeights = append([]float64(nil), d.CategoryWeights...)
	return d
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
