package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vanj900/precisionlocked/internal/api/middleware"
	"github.com/vanj900/precisionlocked/internal/domain"
	"github.com/vanj900/precisionlocked/internal/kernel"
	"github.com/vanj900/precisionlocked/internal/service"
)

const defaultRegimeSteps = 5000

type SimulationHandler struct {
	svc *service.SimulationService
}

func NewSimulationHandler(svc *service.SimulationService) *SimulationHandler {
	return &SimulationHandler{svc: svc}
}

type createSimulationRequest struct {
	AgentID string `json:"agent_id"`

	// Regime selects a canonical parameter set ("trauma" or "annealed").
	// When omitted or "custom", Parameters is required.
	Regime string `json:"regime,omitempty"`

	// Steps overrides the step count for a named regime.
	Steps int `json:"steps,omitempty"`

	Parameters *kernel.Parameters `json:"parameters,omitempty"`
}

type createSimulationResponse struct {
	*domain.SimulationRun
	StableStepSize float64 `json:"stable_step_size"`
}

func (h *SimulationHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createSimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AgentID == "" {
		writeError(w, http.StatusBadRequest, "agent_id is required")
		return
	}
	agentID, err := uuid.Parse(req.AgentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent_id format")
		return
	}

	regime := domain.Regime(req.Regime)
	if req.Regime == "" {
		regime = domain.RegimeCustom
	}
	if !domain.ValidRegime(string(regime)) {
		writeError(w, http.StatusBadRequest, "regime must be trauma, annealed, or custom")
		return
	}

	var params kernel.Parameters
	if regime == domain.RegimeCustom {
		if req.Parameters == nil {
			writeError(w, http.StatusBadRequest, "parameters are required for a custom run")
			return
		}
		params = *req.Parameters
	} else {
		steps := req.Steps
		if steps == 0 {
			steps = defaultRegimeSteps
		}
		params, _ = regime.Parameters(steps)
	}

	run, _, err := h.svc.Run(r.Context(), tenant.ID, agentID, regime, params)
	if err != nil {
		writeSimulationError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createSimulationResponse{
		SimulationRun:  run,
		StableStepSize: kernel.StableStepSize(run.Params),
	})
}

func (h *SimulationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := h.svc.GetByID(r.Context(), id, tenant.ID)
	if err != nil {
		writeSimulationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, run)
}

type trajectoryResponse struct {
	RunID  string         `json:"run_id"`
	Stride int            `json:"stride"`
	Points []kernel.Point `json:"points"`
}

// GetTrajectory returns the persisted belief samples of a run. The optional
// stride query parameter thins the output to every k-th step; the reporting
// cadence is presentation only, the stored trajectory is always complete.
func (h *SimulationHandler) GetTrajectory(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	stride := 1
	if s := r.URL.Query().Get("stride"); s != "" {
		stride, err = strconv.Atoi(s)
		if err != nil || stride < 1 {
			writeError(w, http.StatusBadRequest, "stride must be a positive integer")
			return
		}
	}

	points, err := h.svc.Trajectory(r.Context(), id, tenant.ID, stride)
	if err != nil {
		writeSimulationError(w, err)
		return
	}

	slim := make([]kernel.Point, len(points))
	for i, p := range points {
		slim[i] = kernel.Point{Step: p.Step, Belief: p.Belief}
	}
	writeJSON(w, http.StatusOK, trajectoryResponse{
		RunID:  id.String(),
		Stride: stride,
		Points: slim,
	})
}

func (h *SimulationHandler) ListByAgent(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	agentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
	}

	runs, err := h.svc.ListByAgent(r.Context(), agentID, tenant.ID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

type compareRequest struct {
	AgentID string `json:"agent_id"`
	Steps   int    `json:"steps,omitempty"`
}

// Compare runs the canonical trauma and annealed regimes back to back as two
// independent runs and returns both records.
func (h *SimulationHandler) Compare(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AgentID == "" {
		writeError(w, http.StatusBadRequest, "agent_id is required")
		return
	}
	agentID, err := uuid.Parse(req.AgentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent_id format")
		return
	}

	steps := req.Steps
	if steps == 0 {
		steps = defaultRegimeSteps
	}

	cmp, err := h.svc.Compare(r.Context(), tenant.ID, agentID, steps)
	if err != nil {
		writeSimulationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cmp)
}

func writeSimulationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, kernel.ErrInvalidParameter):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTooManySteps):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAgentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRunNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "simulation failed")
	}
}
