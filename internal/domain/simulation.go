package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/vanj900/precisionlocked/internal/kernel"
)

// Regime labels which canonical parameter set produced a run.
type Regime string

const (
	RegimeTrauma   Regime = "trauma"
	RegimeAnnealed Regime = "annealed"
	RegimeCustom   Regime = "custom"
)

func ValidRegime(r string) bool {
	switch Regime(r) {
	case RegimeTrauma, RegimeAnnealed, RegimeCustom:
		return true
	}
	return false
}

// Parameters returns the canonical kernel parameters for a named regime,
// or false for RegimeCustom, which carries its own.
func (r Regime) Parameters(steps int) (kernel.Parameters, bool) {
	switch r {
	case RegimeTrauma:
		return kernel.TraumaParameters(steps), true
	case RegimeAnnealed:
		return kernel.AnnealedParameters(steps), true
	}
	return kernel.Parameters{}, false
}

// SimulationRun is the persisted record of one integrator invocation.
// Parameters are immutable once the run is created; a regime change is a new
// run.
type SimulationRun struct {
	ID       uuid.UUID `json:"id"`
	AgentID  uuid.UUID `json:"agent_id"`
	TenantID uuid.UUID `json:"tenant_id,omitempty"`
	Regime   Regime    `json:"regime"`

	Params kernel.Parameters `json:"parameters"`

	FinalBelief   float64 `json:"final_belief"`
	PosteriorMean float64 `json:"posterior_mean"`
	Converged     bool    `json:"converged"`

	CreatedAt time.Time `json:"created_at"`
}

// TrajectoryPoint is one persisted belief sample of a run.
type TrajectoryPoint struct {
	RunID  uuid.UUID `json:"run_id,omitempty"`
	Step   int       `json:"step"`
	Belief float64   `json:"belief"`
}
