package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TenantStore interface {
	Create(ctx context.Context, t *Tenant) error
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*Tenant, error)
}

type AgentStore interface {
	Create(ctx context.Context, a *Agent) error
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Agent, error)
	GetByExternalID(ctx context.Context, externalID string, tenantID uuid.UUID) (*Agent, error)
}

type RunStore interface {
	Create(ctx context.Context, r *SimulationRun) error
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*SimulationRun, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, tenantID uuid.UUID, limit int) ([]SimulationRun, error)
	// InsertTrajectory bulk-inserts the per-step belief samples of a run.
	InsertTrajectory(ctx context.Context, runID uuid.UUID, points []TrajectoryPoint) error
	// GetTrajectory returns the samples of a run ordered by step. A stride
	// of k keeps every k-th step (plus step 0); stride <= 1 returns all.
	GetTrajectory(ctx context.Context, runID uuid.UUID, tenantID uuid.UUID, stride int) ([]TrajectoryPoint, error)
	// DeleteOlderThan removes runs (and their trajectories) created before
	// the cutoff, returning the number of runs deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
