// Package kernel implements the scalar belief integrator: explicit-Euler
// gradient descent on a quadratic variational free-energy functional
//
//	F(μ) = (o-μ)²·Π_likelihood + (μ-μ_prior)²·Π_prior
//
// for a single belief variable μ under a fixed observation o. The map is
// linear with a unique fixed point at the precision-weighted posterior mean,
// so long-run behavior is fully characterized by the closed form in
// PosteriorMean and the step-size bound in StableStepSize.
package kernel

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidParameter = errors.New("invalid parameter")

// DefaultConvergenceTolerance is the tolerance used when deciding whether a
// finished run has reached the analytic posterior mean.
const DefaultConvergenceTolerance = 1e-4

// Parameters fully specifies one integration run. All fields are fixed for
// the duration of the run; a regime change is a new Parameters value and a
// new run, never an in-place update.
type Parameters struct {
	// Observation is the sensory input o (0 = safe, 1 = threat).
	Observation float64 `json:"observation"`

	// PriorMean is the expectation μ_prior of the prior.
	PriorMean float64 `json:"prior_mean"`

	// PriorPrecision is Π_prior, the confidence placed in the prior.
	// Pathologically high values (~10000) freeze the belief near PriorMean.
	PriorPrecision float64 `json:"prior_precision"`

	// LikelihoodPrecision is Π_likelihood, the confidence placed in the
	// observation.
	LikelihoodPrecision float64 `json:"likelihood_precision"`

	// StepSize is dt for the explicit-Euler update. Callers are responsible
	// for staying inside StableStepSize; the integrator does not detect or
	// correct divergence.
	StepSize float64 `json:"step_size"`

	// Steps is the number of Euler iterations N.
	Steps int `json:"steps"`

	// InitialBelief is μ_0.
	InitialBelief float64 `json:"initial_belief"`
}

// Validate checks the preconditions for a run. Violations are reported
// before any integration step is taken; nothing is clamped.
func (p Parameters) Validate() error {
	// The negated comparisons also reject NaN.
	if !(p.PriorPrecision > 0) {
		return fmt.Errorf("%w: prior_precision must be > 0, got %v", ErrInvalidParameter, p.PriorPrecision)
	}
	if !(p.LikelihoodPrecision > 0) {
		return fmt.Errorf("%w: likelihood_precision must be > 0, got %v", ErrInvalidParameter, p.LikelihoodPrecision)
	}
	if !(p.StepSize > 0) {
		return fmt.Errorf("%w: step_size must be > 0, got %v", ErrInvalidParameter, p.StepSize)
	}
	if p.Steps < 1 {
		return fmt.Errorf("%w: steps must be >= 1, got %d", ErrInvalidParameter, p.Steps)
	}
	return nil
}

// Point is one sample of the belief trajectory.
type Point struct {
	Step   int     `json:"step"`
	Belief float64 `json:"belief"`
}

// Trajectory is the ordered belief sequence produced by one run, including
// the initial state at index 0. Length is always Steps+1.
type Trajectory []Point

// Final returns the last belief value of the trajectory.
func (t Trajectory) Final() float64 {
	return t[len(t)-1].Belief
}

// FreeEnergy evaluates the quadratic objective at belief mu.
func FreeEnergy(mu float64, p Parameters) float64 {
	sensory := p.Observation - mu
	prior := mu - p.PriorMean
	return sensory*sensory*p.LikelihoodPrecision + prior*prior*p.PriorPrecision
}

// Gradient evaluates ∂F/∂μ at belief mu:
//
//	∂F/∂μ = -2(o-μ)·Π_likelihood + 2(μ-μ_prior)·Π_prior
func Gradient(mu float64, p Parameters) float64 {
	predictionError := p.Observation - mu
	priorDivergence := mu - p.PriorMean
	return -2*predictionError*p.LikelihoodPrecision + 2*priorDivergence*p.PriorPrecision
}

// Integrate runs the full explicit-Euler loop and returns the trajectory.
// The trajectory is retained in full (O(N) memory); callers that only need
// the final value can use Trajectory.Final.
//
// Integrate is a pure function of its Parameters: identical inputs produce
// bit-for-bit identical trajectories. Divergence under an unstable StepSize
// is computed through, not detected; see StableStepSize.
func Integrate(p Parameters) (Trajectory, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	traj := make(Trajectory, 0, p.Steps+1)
	traj = append(traj, Point{Step: 0, Belief: p.InitialBelief})

	mu := p.InitialBelief
	for t := 0; t < p.Steps; t++ {
		mu -= p.StepSize * Gradient(mu, p)
		traj = append(traj, Point{Step: t + 1, Belief: mu})
	}

	return traj, nil
}

// PosteriorMean returns the analytic fixed point of the update map, the
// precision-weighted average of prior mean and observation:
//
//	μ_∞ = (μ_prior·Π_prior + o·Π_likelihood) / (Π_prior + Π_likelihood)
func PosteriorMean(p Parameters) float64 {
	return (p.PriorMean*p.PriorPrecision + p.Observation*p.LikelihoodPrecision) /
		(p.PriorPrecision + p.LikelihoodPrecision)
}

// StableStepSize returns the largest dt for which the Euler map contracts.
// Each step multiplies the distance to the fixed point by
// 1 - 2·dt·(Π_prior + Π_likelihood), so stability requires
// dt < 1/(Π_prior + Π_likelihood). With a dominant prior this reduces to the
// usual dt < 1/Π_prior rule of thumb for stiff regimes.
func StableStepSize(p Parameters) float64 {
	return 1 / (p.PriorPrecision + p.LikelihoodPrecision)
}

// Converged reports whether the trajectory's final belief is within tol of
// the analytic posterior mean. A tol of 0 uses DefaultConvergenceTolerance.
func Converged(t Trajectory, p Parameters, tol float64) bool {
	if tol == 0 {
		tol = DefaultConvergenceTolerance
	}
	return math.Abs(t.Final()-PosteriorMean(p)) <= tol
}
