package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vanj900/precisionlocked/internal/domain"
	"github.com/vanj900/precisionlocked/internal/kernel"
	"github.com/vanj900/precisionlocked/internal/store"
	"go.uber.org/zap"
)

type mockRunStore struct {
	runs         map[uuid.UUID]*domain.SimulationRun
	trajectories map[uuid.UUID][]domain.TrajectoryPoint
	deletedPast  *time.Time
	deleteCount  int64
}

func newMockRunStore() *mockRunStore {
	return &mockRunStore{
		runs:         make(map[uuid.UUID]*domain.SimulationRun),
		trajectories: make(map[uuid.UUID][]domain.TrajectoryPoint),
	}
}

func (m *mockRunStore) Create(ctx context.Context, r *domain.SimulationRun) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	m.runs[r.ID] = r
	return nil
}

func (m *mockRunStore) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.SimulationRun, error) {
	r, ok := m.runs[id]
	if !ok || r.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	return r, nil
}

func (m *mockRunStore) ListByAgent(ctx context.Context, agentID uuid.UUID, tenantID uuid.UUID, limit int) ([]domain.SimulationRun, error) {
	var runs []domain.SimulationRun
	for _, r := range m.runs {
		if r.AgentID == agentID && r.TenantID == tenantID {
			runs = append(runs, *r)
		}
	}
	return runs, nil
}

func (m *mockRunStore) InsertTrajectory(ctx context.Context, runID uuid.UUID, points []domain.TrajectoryPoint) error {
	m.trajectories[runID] = points
	return nil
}

func (m *mockRunStore) GetTrajectory(ctx context.Context, runID uuid.UUID, tenantID uuid.UUID, stride int) ([]domain.TrajectoryPoint, error) {
	points, ok := m.trajectories[runID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if stride < 1 {
		stride = 1
	}
	var out []domain.TrajectoryPoint
	for _, p := range points {
		if p.Step%stride == 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRunStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.deletedPast = &cutoff
	return m.deleteCount, nil
}

func newTestSimulationService(t *testing.T) (*SimulationService, *mockRunStore, uuid.UUID, uuid.UUID) {
	t.Helper()
	runs := newMockRunStore()
	agents := newMockAgentStore()
	tenantID := uuid.New()

	agent := &domain.Agent{TenantID: tenantID, ExternalID: "sim-test", Name: "Sim Test"}
	require.NoError(t, agents.Create(context.Background(), agent))

	svc := NewSimulationService(runs, agents, zap.NewNop())
	return svc, runs, tenantID, agent.ID
}

func TestRunPersistsRunAndTrajectory(t *testing.T) {
	svc, runs, tenantID, agentID := newTestSimulationService(t)

	params := kernel.AnnealedParameters(500)
	run, traj, err := svc.Run(context.Background(), tenantID, agentID, domain.RegimeAnnealed, params)
	require.NoError(t, err)

	assert.Len(t, traj, params.Steps+1)
	assert.Equal(t, domain.RegimeAnnealed, run.Regime)
	assert.InDelta(t, 0.45, run.FinalBelief, kernel.DefaultConvergenceTolerance)
	assert.InDelta(t, 0.45, run.PosteriorMean, 1e-12)
	assert.True(t, run.Converged)

	stored := runs.trajectories[run.ID]
	require.Len(t, stored, params.Steps+1)
	assert.Equal(t, 0, stored[0].Step)
	assert.Equal(t, params.InitialBelief, stored[0].Belief)
	assert.Equal(t, run.FinalBelief, stored[len(stored)-1].Belief)
}

func TestRunRejectsInvalidParametersWithoutPersisting(t *testing.T) {
	svc, runs, tenantID, agentID := newTestSimulationService(t)

	params := kernel.AnnealedParameters(100)
	params.StepSize = 0

	_, _, err := svc.Run(context.Background(), tenantID, agentID, domain.RegimeCustom, params)
	assert.ErrorIs(t, err, kernel.ErrInvalidParameter)
	assert.Empty(t, runs.runs, "no run should be persisted on precondition failure")
	assert.Empty(t, runs.trajectories)
}

func TestRunUnknownAgent(t *testing.T) {
	svc, _, tenantID, _ := newTestSimulationService(t)

	_, _, err := svc.Run(context.Background(), tenantID, uuid.New(), domain.RegimeAnnealed, kernel.AnnealedParameters(10))
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestRunEnforcesStepCap(t *testing.T) {
	svc, runs, tenantID, agentID := newTestSimulationService(t)
	svc.MaxSteps = 1000

	_, _, err := svc.Run(context.Background(), tenantID, agentID, domain.RegimeAnnealed, kernel.AnnealedParameters(1001))
	assert.ErrorIs(t, err, ErrTooManySteps)
	assert.Empty(t, runs.runs)
}

func TestCompareRunsBothRegimes(t *testing.T) {
	svc, runs, tenantID, agentID := newTestSimulationService(t)

	cmp, err := svc.Compare(context.Background(), tenantID, agentID, 5000)
	require.NoError(t, err)
	require.Len(t, runs.runs, 2)

	assert.Equal(t, domain.RegimeTrauma, cmp.Trauma.Regime)
	assert.Equal(t, domain.RegimeAnnealed, cmp.Annealed.Regime)

	// Trauma stays pinned to the prior; annealed moves to the posterior mean.
	assert.Less(t, math.Abs(cmp.Trauma.FinalBelief-0.9), 0.01)
	assert.InDelta(t, 0.45, cmp.Annealed.FinalBelief, kernel.DefaultConvergenceTolerance)
}

func TestGetByIDMapsNotFound(t *testing.T) {
	svc, _, tenantID, _ := newTestSimulationService(t)

	_, err := svc.GetByID(context.Background(), uuid.New(), tenantID)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestTrajectoryStride(t *testing.T) {
	svc, _, tenantID, agentID := newTestSimulationService(t)

	run, _, err := svc.Run(context.Background(), tenantID, agentID, domain.RegimeAnnealed, kernel.AnnealedParameters(100))
	require.NoError(t, err)

	points, err := svc.Trajectory(context.Background(), run.ID, tenantID, 25)
	require.NoError(t, err)
	require.Len(t, points, 5)
	assert.Equal(t, 0, points[0].Step)
	assert.Equal(t, 100, points[len(points)-1].Step)
}
