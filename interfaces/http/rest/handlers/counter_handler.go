package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"skilltree-backend/application/services"
	"skilltree-backend/domain/core/entities"
	"skilltree-backend/pkg/common"
	"skilltree-backend/pkg/observability"
	"skilltree-backend/pkg/utils"
)

// CounterHandler handles counter-related HTTP requests
type CounterHandler struct {
	counters *services.CounterService
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewCounterHandler creates a new counter handler
func NewCounterHandler(counters *services.CounterService, metrics *observability.Collector, logger *zap.Logger) *CounterHandler {
	return &CounterHandler{counters: counters, metrics: metrics, logger: logger}
}

// CreateCounterRequest represents the request body for creating a counter
type CreateCounterRequest struct {
	Name   string   `json:"name" validate:"required,min=1,max=255"`
	Unit   *string  `json:"unit,omitempty" validate:"omitempty,max=50"`
	Value  float64  `json:"value"`
	Target *float64 `json:"target,omitempty"`
}

// UpdateCounterRequest represents the request body for updating a counter.
// Unit and Target stay raw so an explicit null (clear the field) is
// distinguishable from an absent field.
type UpdateCounterRequest struct {
	Name   *string         `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Unit   json.RawMessage `json:"unit,omitempty"`
	Value  *float64        `json:"value,omitempty"`
	Target json.RawMessage `json:"target,omitempty"`
}

// CounterResponse represents a counter in API responses
type CounterResponse struct {
	ID      string   `json:"id"`
	SkillID string   `json:"skill_id"`
	Name    string   `json:"name"`
	Unit    *string  `json:"unit"`
	Value   float64  `json:"value"`
	Target  *float64 `json:"target"`
}

func toCounterResponse(counter *entities.Counter) CounterResponse {
	return CounterResponse{
		ID:      counter.ID().String(),
		SkillID: counter.SkillID().String(),
		Name:    counter.Name(),
		Unit:    counter.Unit(),
		Value:   counter.Value(),
		Target:  counter.Target(),
	}
}

// CreateCounter handles POST /api/skills/{skillID}/counters and the flat
// POST /api/counters?skill_id= form. The owner comes from the path segment
// when present, otherwise from the skill_id query parameter.
func (h *CounterHandler) CreateCounter(w http.ResponseWriter, r *http.Request) {
	skillID := chi.URLParam(r, "skillID")
	if skillID == "" {
		skillID = r.URL.Query().Get("skill_id")
	}
	if skillID == "" {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "skill_id is required")
		return
	}

	var req CreateCounterRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError, err.Error())
		return
	}

	counter, err := h.counters.Create(r.Context(), skillID, services.CreateCounterInput{
		Name:   req.Name,
		Unit:   req.Unit,
		Value:  req.Value,
		Target: req.Target,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}

	h.metrics.CountersCreated.Inc()
	common.RespondJSON(w, http.StatusCreated, toCounterResponse(counter))
}

// GetCounter handles GET /api/counters/{counterID}
func (h *CounterHandler) GetCounter(w http.ResponseWriter, r *http.Request) {
	counter, err := h.counters.Get(r.Context(), chi.URLParam(r, "counterID"))
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toCounterResponse(counter))
}

// ListCounters handles GET /api/counters with an optional skill_id filter
func (h *CounterHandler) ListCounters(w http.ResponseWriter, r *http.Request) {
	var skillID *string
	if v := r.URL.Query().Get("skill_id"); v != "" {
		skillID = &v
	}

	counters, err := h.counters.List(r.Context(), skillID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	responses := make([]CounterResponse, 0, len(counters))
	for _, counter := range counters {
		responses = append(responses, toCounterResponse(counter))
	}
	common.RespondJSON(w, http.StatusOK, responses)
}

// UpdateCounter handles PATCH /api/counters/{counterID}
func (h *CounterHandler) UpdateCounter(w http.ResponseWriter, r *http.Request) {
	var req UpdateCounterRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError, err.Error())
		return
	}

	input := services.UpdateCounterInput{Name: req.Name, Value: req.Value}
	if len(req.Unit) > 0 {
		input.SetUnit = true
		if !bytes.Equal(req.Unit, []byte("null")) {
			var unit string
			if err := json.Unmarshal(req.Unit, &unit); err != nil {
				common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "unit must be a string or null")
				return
			}
			input.Unit = &unit
		}
	}
	if len(req.Target) > 0 {
		input.SetTarget = true
		if !bytes.Equal(req.Target, []byte("null")) {
			var target float64
			if err := json.Unmarshal(req.Target, &target); err != nil {
				common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "target must be a number or null")
				return
			}
			input.Target = &target
		}
	}

	counter, err := h.counters.Update(r.Context(), chi.URLParam(r, "counterID"), input)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toCounterResponse(counter))
}

// IncrementCounter handles POST /api/counters/{counterID}/increment. The
// amount query parameter defaults to 1 and may be negative.
func (h *CounterHandler) IncrementCounter(w http.ResponseWriter, r *http.Request) {
	amount := 1.0
	if v := r.URL.Query().Get("amount"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "amount must be a number")
			return
		}
		amount = parsed
	}

	counter, err := h.counters.Increment(r.Context(), chi.URLParam(r, "counterID"), amount)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toCounterResponse(counter))
}

// DeleteCounter handles DELETE /api/counters/{counterID}
func (h *CounterHandler) DeleteCounter(w http.ResponseWriter, r *http.Request) {
	if err := h.counters.Delete(r.Context(), chi.URLParam(r, "counterID")); err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondNoContent(w)
}
