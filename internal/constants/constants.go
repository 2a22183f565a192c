// Package constants provides named constants used throughout the neuropulse codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Unit conversions
const (
	// MillisPerMinute converts session durations to minutes.
	MillisPerMinute = 60_000

	// MillisPerHour converts session durations to hours and unlock counts to hourly rates.
	MillisPerHour = 3_600_000

	// DurationScaleMillis scales log-normal duration draws (which are in seconds) to milliseconds.
	DurationScaleMillis = 1000
)

// Sampling floors. Every generated record satisfies these.
const (
	// MinSessionDurationMs is the shortest representable session (30 seconds).
	MinSessionDurationMs = 30_000

	// MinUnlockCount is the smallest unlock count; a session implies one unlock.
	MinUnlockCount = 1
)

// Derived feature constants
const (
	// AppSwitchIntervalMs is the session length that accounts for one app switch.
	AppSwitchIntervalMs = 300_000

	// AppSwitchExtraRate is the Poisson rate of additional app switches.
	AppSwitchExtraRate = 1.0

	// HighStimExtraMinutesRate is the Poisson rate of extra consecutive minutes
	// added for high-stimulation categories.
	HighStimExtraMinutesRate = 15.0

	// BingeThresholdMs is the duration a session must exceed to count as a binge (2 hours).
	BingeThresholdMs = 2 * MillisPerHour

	// FeedScrollShape is the gamma shape for scrolls per minute in feed apps.
	FeedScrollShape = 12.0

	// DefaultScrollShape is the gamma shape for scrolls per minute elsewhere.
	DefaultScrollShape = 4.0

	// ScrollScale is the gamma scale for scrolls per minute.
	ScrollScale = 1.0

	// HeavyNotifRate is the Poisson notification rate for notification-heavy categories.
	HeavyNotifRate = 4.0

	// LightNotifRate is the Poisson notification rate for every other category.
	LightNotifRate = 1.0

	// MaxNotifResponseLevel is the highest notification response level.
	MaxNotifResponseLevel = 2
)

// Notification response level weights for levels {0, 1, 2}.
var (
	FeedNotifResponseWeights    = []float64{0.4, 0.35, 0.25}
	DefaultNotifResponseWeights = []float64{0.6, 0.3, 0.1}
)

// Risk factor thresholds. Each comparison is strict.
const (
	// LongUsageMinutes is the consecutive same-app minutes above which usage is long.
	LongUsageMinutes = 60

	// HighScrollRate is the scrolls per minute above which interaction is intense.
	HighScrollRate = 8.0

	// FrequentUnlockRate is the hourly unlock rate above which unlocking is compulsive.
	FrequentUnlockRate = 25.0

	// LateUsageStart is the time of day after which usage counts as late.
	LateUsageStart = 0.79

	// EarlyUsageEnd is the time of day before which usage counts as late.
	EarlyUsageEnd = 0.25

	// NumRiskFactors is the number of boolean risk indicators.
	NumRiskFactors = 6
)

// Dopamine spike probability constants
const (
	// DopamineNoiseStd is the standard deviation of the Gaussian noise added to the
	// risk-factor ratio.
	DopamineNoiseStd = 0.1

	// DopamineCeiling caps the spike probability.
	DopamineCeiling = 0.95
)

// Addiction score weights and normalizers.
// Weights sum to 1.0, so a session that saturates every term scores about 1.
const (
	DurationWeight    = 0.25
	UnlockWeight      = 0.20
	HighStimWeight    = 0.20
	SpikeWeight       = 0.15
	ConsecutiveWeight = 0.20

	// DurationNormMs is the duration that saturates the duration term (6 hours).
	DurationNormMs = 6 * MillisPerHour

	// UnlockNorm is the unlock count that saturates the unlock term.
	UnlockNorm = 40.0

	// ConsecutiveNormMinutes is the consecutive minutes that saturate the consecutive term.
	ConsecutiveNormMinutes = 120.0
)

// Addiction level cut points. A score below HealthyBelow is Healthy, below
// AtRiskBelow is At Risk, everything else is High Risk.
const (
	HealthyBelow = 0.25
	AtRiskBelow  = 0.65
)

// Dataset defaults
const (
	// DefaultSamples is the number of sessions generated when none is requested.
	DefaultSamples = 15000

	// DefaultSeed is the reproducibility seed used when none is requested.
	DefaultSeed = 42

	// DefaultUserPool is the number of distinct synthetic users sessions are spread over.
	DefaultUserPool = 1000

	// WeightSumTolerance is how far a regime's category weights may drift from 1.0.
	WeightSumTolerance = 1e-9
)
