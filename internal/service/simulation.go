package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vanj900/precisionlocked/internal/domain"
	"github.com/vanj900/precisionlocked/internal/kernel"
	"github.com/vanj900/precisionlocked/internal/store"
	"go.uber.org/zap"
)

const DefaultMaxSteps = 1_000_000

var (
	ErrRunNotFound  = errors.New("simulation run not found")
	ErrTooManySteps = errors.New("step count exceeds configured maximum")
)

// SimulationService executes belief-integration runs and persists them.
// Each run owns its Parameters and trajectory; nothing is shared between
// runs, so results depend on the Parameters alone.
type SimulationService struct {
	runStore   domain.RunStore
	agentStore domain.AgentStore
	logger     *zap.Logger

	// MaxSteps caps N per run; the full trajectory is retained in memory
	// and persisted, so the cap bounds both.
	MaxSteps int
}

func NewSimulationService(rs domain.RunStore, as domain.AgentStore, logger *zap.Logger) *SimulationService {
	return &SimulationService{
		runStore:   rs,
		agentStore: as,
		logger:     logger,
		MaxSteps:   DefaultMaxSteps,
	}
}

// Run integrates params for the given agent, persists the run and its full
// trajectory, and returns both. Invalid parameters are rejected before any
// step executes and leave no partial state behind.
func (s *SimulationService) Run(ctx context.Context, tenantID, agentID uuid.UUID, regime domain.Regime, params kernel.Parameters) (*domain.SimulationRun, kernel.Trajectory, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}
	if params.Steps > s.MaxSteps {
		return nil, nil, fmt.Errorf("%w: %d > %d", ErrTooManySteps, params.Steps, s.MaxSteps)
	}

	if _, err := s.agentStore.GetByID(ctx, agentID, tenantID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrAgentNotFound
		}
		return nil, nil, err
	}

	traj, err := kernel.Integrate(params)
	if err != nil {
		return nil, nil, err
	}

	run := &domain.SimulationRun{
		AgentID:       agentID,
		TenantID:      tenantID,
		Regime:        regime,
		Params:        params,
		FinalBelief:   traj.Final(),
		PosteriorMean: kernel.PosteriorMean(params),
		Converged:     kernel.Converged(traj, params, 0),
	}

	if err := s.runStore.Create(ctx, run); err != nil {
		return nil, nil, err
	}

	points := make([]domain.TrajectoryPoint, len(traj))
	for i, pt := range traj {
		points[i] = domain.TrajectoryPoint{RunID: run.ID, Step: pt.Step, Belief: pt.Belief}
	}
	if err := s.runStore.InsertTrajectory(ctx, run.ID, points); err != nil {
		return nil, nil, err
	}

	s.logger.Info("simulation run complete",
		zap.String("run_id", run.ID.String()),
		zap.String("agent_id", agentID.String()),
		zap.String("regime", string(regime)),
		zap.Float64("prior_precision", params.PriorPrecision),
		zap.Int("steps", params.Steps),
		zap.Float64("final_belief", run.FinalBelief),
		zap.Float64("posterior_mean", run.PosteriorMean),
		zap.Bool("converged", run.Converged))

	return run, traj, nil
}

// RunRegime runs one of the canonical regimes for the given step count.
func (s *SimulationService) RunRegime(ctx context.Context, tenantID, agentID uuid.UUID, regime domain.Regime, steps int) (*domain.SimulationRun, kernel.Trajectory, error) {
	params, ok := regime.Parameters(steps)
	if !ok {
		return nil, nil, fmt.Errorf("%w: regime %q has no canonical parameters", kernel.ErrInvalidParameter, regime)
	}
	return s.Run(ctx, tenantID, agentID, regime, params)
}

// RegimeComparison holds the paired trauma/annealed runs over the same
// generative model.
type RegimeComparison struct {
	Trauma   *domain.SimulationRun `json:"trauma"`
	Annealed *domain.SimulationRun `json:"annealed"`
}

// Compare runs the trauma regime and the annealed regime as two independent
// runs with identical step counts. The runs share no state and may execute
// in either order.
func (s *SimulationService) Compare(ctx context.Context, tenantID, agentID uuid.UUID, steps int) (*RegimeComparison, error) {
	trauma, _, err := s.RunRegime(ctx, tenantID, agentID, domain.RegimeTrauma, steps)
	if err != nil {
		return nil, err
	}
	annealed, _, err := s.RunRegime(ctx, tenantID, agentID, domain.RegimeAnnealed, steps)
	if err != nil {
		return nil, err
	}
	return &RegimeComparison{Trauma: trauma, Annealed: annealed}, nil
}

func (s *SimulationService) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.SimulationRun, error) {
	run, err := s.runStore.GetByID(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

func (s *SimulationService) ListByAgent(ctx context.Context, agentID uuid.UUID, tenantID uuid.UUID, limit int) ([]domain.SimulationRun, error) {
	return s.runStore.ListByAgent(ctx, agentID, tenantID, limit)
}

func (s *SimulationService) Trajectory(ctx context.Context, runID uuid.UUID, tenantID uuid.UUID, stride int) ([]domain.TrajectoryPoint, error) {
	points, err := s.runStore.GetTrajectory(ctx, runID, tenantID, stride)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return points, nil
}
