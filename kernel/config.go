package kernel

import (
	"github.com/hashicorp/go-multierror"
)

// MinNEstimateDefault is the default sample-size threshold below which a
// child's uncertainty statistic is considered unreliable.
const MinNEstimateDefault = 8

// ExplorationMultiplierFunc computes the uncertainty-boost multiplier for
// a child given its own uncertainty statistic and the parent's. It must
// be monotone in childU/parentU and return 1 when childU == parentU.
type ExplorationMultiplierFunc func(childU, parentMAD float32) float32

// DefaultExplorationMultiplier grows exploration linearly with the ratio
// of child to parent mean-absolute-deviation, clamped to a sane range so
// a single noisy child cannot dominate the N-weighted renormalisation in
// applyUncertaintyBoost.
func DefaultExplorationMultiplier(childU, parentMAD float32) float32 {
	if parentMAD <= 0 {
		return 1
	}
	ratio := childU / parentMAD
	switch {
	case ratio < 0.25:
		ratio = 0.25
	case ratio > 4:
		ratio = 4
	}
	return ratio
}

// Config is the read-only settings record consulted by the kernel. It is
// passed by reference; the kernel never mutates it.
type Config struct {
	// CPUCT, CPUCTBase, CPUCTFactor parameterise the exploration
	// constant: c = CPUCT + CPUCTFactor*log((N+CPUCTBase)/CPUCTBase).
	CPUCT       float32
	CPUCTBase   float32
	CPUCTFactor float32

	// FPUReduction, FPUReductionAtRoot scale the first-play-urgency
	// penalty applied to never-visited children away from / at the
	// root respectively.
	FPUReduction       float32
	FPUReductionAtRoot float32

	// PolicyDecayFactor, PolicyDecayExponent parameterise the root
	// policy-decay softmax sharpening (spec.md §4.C step 3).
	PolicyDecayFactor   float32
	PolicyDecayExponent float32

	// FracWeightUseRunningQ blends the root-move tracker's running
	// value estimate into W (spec.md §4.C step 1).
	FracWeightUseRunningQ float32

	// EnableUncertaintyBoosting, MinNEstimate, ExplorationMultiplier
	// parameterise spec.md §4.C step 4.
	EnableUncertaintyBoosting bool
	MinNEstimate              int
	ExplorationMultiplier     ExplorationMultiplierFunc

	// CheckmateCertaintyPropagationEnabled, CheckmateFullyCollapse
	// parameterise spec.md §4.C step 6.
	CheckmateCertaintyPropagationEnabled bool
	CheckmateFullyCollapse               bool

	// FlowDualSelectors enables the selector-id 1 path.
	FlowDualSelectors bool

	// MaxChildren is the scratch capacity. Must be <= kernel.MaxChildren.
	MaxChildren int

	// VirtualLoss is the per-in-flight-visit penalty magnitude applied
	// from the parent's perspective.
	VirtualLoss float32

	// DynamicVLossBoostSelector1 additionally scales VirtualLoss for
	// selector id 1 in dual-selector mode, on top of the caller-supplied
	// per-call dynamicVLossBoost.
	DynamicVLossBoostSelector1 float32

	// RootNoiseWeight, RootNoiseAlpha govern the supplemented root
	// exploration noise step (SPEC_FULL.md §4.C step 0). Zero weight
	// disables the step entirely.
	RootNoiseWeight float32
	RootNoiseAlpha  float32
}

// DefaultConfig returns a Config with conservative, commonly-used
// defaults: PUCT-style exploration tuned the way AlphaZero-descendant
// engines tune it, no uncertainty boosting, no root noise.
func DefaultConfig() Config {
	return Config{
		CPUCT:                     1.4,
		CPUCTBase:                 19652,
		CPUCTFactor:               0,
		FPUReduction:              0.25,
		FPUReductionAtRoot:        0,
		PolicyDecayFactor:         0,
		PolicyDecayExponent:       0.5,
		FracWeightUseRunningQ:     0,
		EnableUncertaintyBoosting: false,
		MinNEstimate:              MinNEstimateDefault,
		ExplorationMultiplier:     DefaultExplorationMultiplier,
		CheckmateCertaintyPropagationEnabled: false,
		CheckmateFullyCollapse:               false,
		FlowDualSelectors:                    false,
		MaxChildren:                          MaxChildren,
		VirtualLoss:                          1,
		DynamicVLossBoostSelector1:           0,
		RootNoiseWeight:                      0,
		RootNoiseAlpha:                       0.3,
	}
}

// Validate aggregates every malformed field into a single error instead
// of failing on the first one, so a caller wiring up a new config sees
// every problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.CPUCT < 0 {
		result = multierror.Append(result, errInvalid("CPUCT must be >= 0"))
	}
	if c.CPUCTBase <= 0 {
		result = multierror.Append(result, errInvalid("CPUCTBase must be > 0"))
	}
	if c.FPUReduction < 0 || c.FPUReductionAtRoot < 0 {
		result = multierror.Append(result, errInvalid("FPUReduction(AtRoot) must be >= 0"))
	}
	if c.PolicyDecayFactor < 0 {
		result = multierror.Append(result, errInvalid("PolicyDecayFactor must be >= 0"))
	}
	if c.FracWeightUseRunningQ < 0 || c.FracWeightUseRunningQ > 1 {
		result = multierror.Append(result, errInvalid("FracWeightUseRunningQ must be in [0,1]"))
	}
	if c.MaxChildren <= 0 || c.MaxChildren > MaxChildren {
		result = multierror.Append(result, errInvalid("MaxChildren must be in (0, kernel.MaxChildren]"))
	}
	if c.VirtualLoss < 0 {
		result = multierror.Append(result, errInvalid("VirtualLoss must be >= 0"))
	}
	if c.RootNoiseWeight < 0 || c.RootNoiseWeight > 1 {
		result = multierror.Append(result, errInvalid("RootNoiseWeight must be in [0,1]"))
	}
	if c.EnableUncertaintyBoosting && c.ExplorationMultiplier == nil {
		result = multierror.Append(result, errInvalid("ExplorationMultiplier must be set when EnableUncertaintyBoosting is true"))
	}
	return result.ErrorOrNil()
}
