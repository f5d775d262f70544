package kernel

import "fmt"

// Canonical regime constants. The trauma regime models a pathologically
// high-precision prior that freezes the belief near its prior mean; the
// annealed regime models the same generative model after the prior has been
// de-weighted, so the belief tracks the observation.
const (
	DefaultPriorMean           = 0.9
	DefaultLikelihoodPrecision = 1.0
	SafeObservation            = 0.0

	TraumaPriorPrecision   = 10000.0
	AnnealedPriorPrecision = 1.0

	// StiffPrecisionThreshold is the prior precision above which the update
	// equation is treated as stiff and the small step size is required.
	StiffPrecisionThreshold = 100.0

	StiffStepSize   = 0.00005
	DefaultStepSize = 0.01

	// SensoryGainFactor is the likelihood precision boost applied during
	// annealing, modeling increased sensory grounding.
	SensoryGainFactor = 5.0
)

// StepSizeFor is the stiffness-driven step-size policy: prior precisions
// above StiffPrecisionThreshold force the small stiff step size; everything
// else integrates at the default step size.
func StepSizeFor(priorPrecision float64) float64 {
	if priorPrecision > StiffPrecisionThreshold {
		return StiffStepSize
	}
	return DefaultStepSize
}

// TraumaParameters returns the canonical high-precision locked regime:
// the agent expects threat (μ_prior=0.9) with near-certain confidence while
// observing safety (o=0).
func TraumaParameters(steps int) Parameters {
	return Parameters{
		Observation:         SafeObservation,
		PriorMean:           DefaultPriorMean,
		PriorPrecision:      TraumaPriorPrecision,
		LikelihoodPrecision: DefaultLikelihoodPrecision,
		StepSize:            StepSizeFor(TraumaPriorPrecision),
		Steps:               steps,
		InitialBelief:       DefaultPriorMean,
	}
}

// AnnealedParameters returns the canonical loosened regime: same prior mean
// and observation as the trauma regime, but with Π_prior relaxed to 1.0 so
// the belief converges toward the posterior mean.
func AnnealedParameters(steps int) Parameters {
	return Parameters{
		Observation:         SafeObservation,
		PriorMean:           DefaultPriorMean,
		PriorPrecision:      AnnealedPriorPrecision,
		LikelihoodPrecision: DefaultLikelihoodPrecision,
		StepSize:            StepSizeFor(AnnealedPriorPrecision),
		Steps:               steps,
		InitialBelief:       DefaultPriorMean,
	}
}

// InduceTrauma returns a copy of p with the prior precision raised to the
// trauma level and the step size dropped accordingly. The input is not
// mutated; the result parameterizes a fresh run.
func InduceTrauma(p Parameters) Parameters {
	p.PriorPrecision = TraumaPriorPrecision
	p.StepSize = StepSizeFor(p.PriorPrecision)
	return p
}

// Anneal returns a copy of p with the prior de-weighted by beta, the
// likelihood precision boosted by SensoryGainFactor, and the step size
// relaxed to the default. Mirrors a reconsolidation intervention: induce
// uncertainty in the prior, increase sensory gain. The input is not mutated;
// the result parameterizes a fresh run.
func Anneal(p Parameters, beta float64) (Parameters, error) {
	if !(beta > 0) {
		return Parameters{}, fmt.Errorf("%w: annealing factor must be > 0, got %v", ErrInvalidParameter, beta)
	}
	p.PriorPrecision /= beta
	p.LikelihoodPrecision *= SensoryGainFactor
	p.StepSize = DefaultStepSize
	return p, nil
}
