package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vanj900/precisionlocked/internal/domain"
)

type RunStore struct {
	db *pgxpool.Pool
}

func NewRunStore(db *pgxpool.Pool) *RunStore {
	return &RunStore{db: db}
}

const runColumns = `id, agent_id, tenant_id, regime,
	observation, prior_mean, prior_precision, likelihood_precision,
	step_size, steps, initial_belief,
	final_belief, posterior_mean, converged, created_at`

func (s *RunStore) Create(ctx context.Context, r *domain.SimulationRun) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO simulation_runs (agent_id, tenant_id, regime,
		    observation, prior_mean, prior_precision, likelihood_precision,
		    step_size, steps, initial_belief,
		    final_belief, posterior_mean, converged)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at`,
		r.AgentID, r.TenantID, r.Regime,
		r.Params.Observation, r.Params.PriorMean, r.Params.PriorPrecision, r.Params.LikelihoodPrecision,
		r.Params.StepSize, r.Params.Steps, r.Params.InitialBelief,
		r.FinalBelief, r.PosteriorMean, r.Converged,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *RunStore) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.SimulationRun, error) {
	r := &domain.SimulationRun{}
	err := s.db.QueryRow(ctx,
		`SELECT `+runColumns+`
		 FROM simulation_runs WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	).Scan(
		&r.ID, &r.AgentID, &r.TenantID, &r.Regime,
		&r.Params.Observation, &r.Params.PriorMean, &r.Params.PriorPrecision, &r.Params.LikelihoodPrecision,
		&r.Params.StepSize, &r.Params.Steps, &r.Params.InitialBelief,
		&r.FinalBelief, &r.PosteriorMean, &r.Converged, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *RunStore) ListByAgent(ctx context.Context, agentID uuid.UUID, tenantID uuid.UUID, limit int) ([]domain.SimulationRun, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+runColumns+`
		 FROM simulation_runs WHERE agent_id = $1 AND tenant_id = $2
		 ORDER BY created_at DESC
		 LIMIT $3`,
		agentID, tenantID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.SimulationRun
	for rows.Next() {
		var r domain.SimulationRun
		if err := rows.Scan(
			&r.ID, &r.AgentID, &r.TenantID, &r.Regime,
			&r.Params.Observation, &r.Params.PriorMean, &r.Params.PriorPrecision, &r.Params.LikelihoodPrecision,
			&r.Params.StepSize, &r.Params.Steps, &r.Params.InitialBelief,
			&r.FinalBelief, &r.PosteriorMean, &r.Converged, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// InsertTrajectory bulk-loads the belief samples of a run via COPY.
func (s *RunStore) InsertTrajectory(ctx context.Context, runID uuid.UUID, points []domain.TrajectoryPoint) error {
	_, err := s.db.CopyFrom(ctx,
		pgx.Identifier{"trajectory_points"},
		[]string{"run_id", "step", "belief"},
		pgx.CopyFromSlice(len(points), func(i int) ([]any, error) {
			return []any{runID, points[i].Step, points[i].Belief}, nil
		}),
	)
	return err
}

func (s *RunStore) GetTrajectory(ctx context.Context, runID uuid.UUID, tenantID uuid.UUID, stride int) ([]domain.TrajectoryPoint, error) {
	if stride < 1 {
		stride = 1
	}

	rows, err := s.db.Query(ctx,
		`SELECT p.step, p.belief
		 FROM trajectory_points p
		 JOIN simulation_runs r ON r.id = p.run_id
		 WHERE p.run_id = $1 AND r.tenant_id = $2 AND p.step % $3 = 0
		 ORDER BY p.step`,
		runID, tenantID, stride,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.TrajectoryPoint
	for rows.Next() {
		p := domain.TrajectoryPoint{RunID: runID}
		if err := rows.Scan(&p.Step, &p.Belief); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, ErrNotFound
	}
	return points, nil
}

// DeleteOlderThan removes runs created before cutoff. Trajectory points go
// with them via ON DELETE CASCADE.
func (s *RunStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM simulation_runs WHERE created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
