// Package dataset assembles labeled session records.
//
// A run is one PCG stream seeded once. Each record consumes its draws in a
// fixed order (time of day, primitives, derived features, scorer noise,
// spike), so Generate(n, seed) is a pure function of its arguments.
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/nvandessel/neuropulse/internal/constants"
	"github.com/nvandessel/neuropulse/internal/logging"
	"github.com/nvandessel/neuropulse/internal/models"
	"github.com/nvandessel/neuropulse/internal/regime"
	"github.com/nvandessel/neuropulse/internal/sampler"
	"github.com/nvandessel/neuropulse/internal/scoring"
)

// Config is everything an Assembler needs besides the seed.
type Config struct {
	// Table selects the regime of each time of day. Nil means the default table.
	Table *regime.Table

	// Scoring is the label model.
	Scoring scoring.Config

	// UserPool is the number of distinct user ids sessions cycle through.
	UserPool int
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Table:    regime.DefaultTable(),
		Scoring:  scoring.DefaultConfig(),
		UserPool: constants.DefaultUserPool,
	}
}

// Assembler generates datasets. It holds only immutable configuration, so
// one Assembler can serve many runs; each run owns its own random stream.
type Assembler struct {
	table    *regime.Table
	scorer   *scoring.Scorer
	userPool int
	logger   *slog.Logger
	tracer   *logging.TraceLogger
}

// NewAssembler validates cfg and returns an Assembler.
func NewAssembler(cfg Config) (*Assembler, error) {
	if cfg.Table == nil {
		cfg.Table = regime.DefaultTable()
	}
	if cfg.UserPool <= 0 {
		return nil, fmt.Errorf("user pool must be positive, got %d: %w", cfg.UserPool, models.ErrInvalidArgument)
	}
	scorer, err := scoring.NewScorer(cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("scoring config: %w", err)
	}
	return &Assembler{
		table:    cfg.Table,
		scorer:   scorer,
		userPool: cfg.UserPool,
	}, nil
}

// SetLogger sets the operational logger and the per-record tracer.
// Either may be nil.
func (a *Assembler) SetLogger(logger *slog.Logger, tracer *logging.TraceLogger) {
	a.logger = logger
	a.tracer = tracer
}

// Generate produces n records from the default configuration.
func Generate(n int, seed uint64) ([]models.SessionRecord, error) {
	a, err := NewAssembler(DefaultConfig())
	if err != nil {
		return nil, err
	}
	return a.Generate(n, seed)
}

// Generate produces n records seeded by seed. Either every record is valid
// and all n are returned, or the first invalid record aborts the run and
// nothing is returned.
func (a *Assembler) Generate(n int, seed uint64) ([]models.SessionRecord, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d: %w", n, models.ErrInvalidArgument)
	}

	start := time.Now()
	if a.logger != nil {
		a.logger.Info("generating sessions", "samples", n, "seed", seed, "user_pool", a.userPool)
	}

	run := a.Run(seed)
	records := make([]models.SessionRecord, 0, n)
	for i := 0; i < n; i++ {
		rec, err := run.Next()
		if err != nil {
			if a.logger != nil {
				a.logger.Error("generation aborted", "index", i, "error", err)
			}
			return nil, err
		}
		records = append(records, rec)
	}

	if a.logger != nil {
		a.logger.Info("generation complete", "samples", n, "elapsed", time.Since(start))
		if a.logger.Enabled(context.Background(), slog.LevelDebug) {
			s := Summarize(records)
			a.logger.Debug("regime counts",
				"morning", s.Regimes[models.RegimeMorning],
				"work", s.Regimes[models.RegimeWork],
				"evening", s.Regimes[models.RegimeEvening],
				"night", s.Regimes[models.RegimeNight])
		}
	}
	return records, nil
}

// Run is one seeded stream of records. It is not safe for concurrent use.
type Run struct {
	a       *Assembler
	src     rand.Source
	sampler *sampler.Sampler
	index   int
}

// Run starts a new stream seeded by seed.
func (a *Assembler) Run(seed uint64) *Run {
	src := rand.NewPCG(seed, 0)
	return &Run{
		a:       a,
		src:     src,
		sampler: sampler.New(a.table, src),
	}
}

// Next draws a time of day and its primitives, then builds the record.
func (r *Run) Next() (models.SessionRecord, error) {
	return r.Build(r.sampler.Draw())
}

// Build completes a record from already drawn primitives: derived
// features, then labels. Callers that force a scenario (a fixed time of
// day, category or duration) pass their own primitives here.
func (r *Run) Build(p sampler.Primitives) (models.SessionRecord, error) {
	index := r.index
	r.index++

	d := r.sampler.Derive(p)
	rec := models.SessionRecord{
		UserID:             fmt.Sprintf("user_%d", index%r.a.userPool),
		SessionDurationMs:  p.DurationMs,
		UnlockCount:        p.UnlockCount,
		AppCategory:        p.Category,
		NotifCount:         p.NotifCount,
		NotifResponseLevel: p.NotifResponseLevel,
		AppSwitchCount:     d.AppSwitchCount,
		TimeOfDay:          p.TimeOfDay,
		ConsecutiveMinutes: d.ConsecutiveMinutes,
		BingeFlag:          d.BingeFlag,
		ScrollsPerMinute:   d.ScrollsPerMinute,
		UnlockFrequency:    d.UnlockFrequency,
		Regime:             p.Regime,
	}

	res := r.a.scorer.Score(scoring.InputFromRecord(rec), r.src)
	rec.DopamineSpike = res.DopamineSpike
	rec.DopamineProbability = res.DopamineProbability
	rec.AddictionScore = res.Score.Total
	rec.AddictionLevel = res.Level

	if err := Validate(index, rec, r.a.scorer.Config()); err != nil {
		return models.SessionRecord{}, err
	}

	if r.a.tracer != nil {
		r.a.tracer.Trace("record", map[string]any{
			"index":        index,
			"regime":       string(rec.Regime),
			"category":     rec.AppCategory.String(),
			"risk_factors": res.Factors.Count(),
			"noise":        res.Noise,
			"probability":  res.DopamineProbability,
			"spike":        res.DopamineSpike,
			"score":        res.Score.Total,
			"level":        res.Level.String(),
		})
	}
	return rec, nil
}

// Index is the position the next record will take.
func (r *Run) Index() int {
	return r.index
}
