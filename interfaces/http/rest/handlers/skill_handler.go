package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"skilltree-backend/application/services"
	"skilltree-backend/domain/core/entities"
	"skilltree-backend/pkg/common"
	"skilltree-backend/pkg/observability"
	"skilltree-backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// SkillHandler handles skill-related HTTP requests
type SkillHandler struct {
	skills      *services.SkillService
	aggregation *services.AggregationService
	metrics     *observability.Collector
	logger      *zap.Logger
}

// NewSkillHandler creates a new skill handler
func NewSkillHandler(
	skills *services.SkillService,
	aggregation *services.AggregationService,
	metrics *observability.Collector,
	logger *zap.Logger,
) *SkillHandler {
	return &SkillHandler{
		skills:      skills,
		aggregation: aggregation,
		metrics:     metrics,
		logger:      logger,
	}
}

// CreateSkillRequest represents the request body for creating a skill
type CreateSkillRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=255"`
	ParentID *string `json:"parent_id,omitempty" validate:"omitempty,uuid4"`
}

// UpdateSkillRequest represents the request body for updating a skill.
// ParentID is kept raw so the handler can tell an absent field apart from
// an explicit null (detach to root) and from a new parent ID.
type UpdateSkillRequest struct {
	Name     *string         `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	ParentID json.RawMessage `json:"parent_id,omitempty"`
}

// SkillResponse represents a skill in API responses
type SkillResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toSkillResponse(skill *entities.Skill) SkillResponse {
	var parent *string
	if p := skill.ParentID(); p != nil {
		s := p.String()
		parent = &s
	}
	return SkillResponse{
		ID:        skill.ID().String(),
		Name:      skill.Name(),
		ParentID:  parent,
		CreatedAt: skill.CreatedAt(),
		UpdatedAt: skill.UpdatedAt(),
	}
}

// CreateSkill handles POST /api/skills
func (h *SkillHandler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	var req CreateSkillRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError, err.Error())
		return
	}

	var skill *entities.Skill
	var err error
	if req.ParentID != nil {
		skill, err = h.skills.CreateChild(r.Context(), *req.ParentID, req.Name)
	} else {
		skill, err = h.skills.CreateRoot(r.Context(), req.Name)
	}
	if err != nil {
		respondAppError(w, err)
		return
	}

	h.metrics.SkillsCreated.Inc()
	common.RespondJSON(w, http.StatusCreated, toSkillResponse(skill))
}

// CreateChild handles POST /api/skills/{skillID}/children
func (h *SkillHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "skillID")

	var req CreateSkillRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError, err.Error())
		return
	}

	skill, err := h.skills.CreateChild(r.Context(), parentID, req.Name)
	if err != nil {
		respondAppError(w, err)
		return
	}

	h.metrics.SkillsCreated.Inc()
	common.RespondJSON(w, http.StatusCreated, toSkillResponse(skill))
}

// GetSkill handles GET /api/skills/{skillID}
func (h *SkillHandler) GetSkill(w http.ResponseWriter, r *http.Request) {
	skill, err := h.skills.Get(r.Context(), chi.URLParam(r, "skillID"))
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toSkillResponse(skill))
}

// ListSkills handles GET /api/skills
func (h *SkillHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.skills.List(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}

	responses := make([]SkillResponse, 0, len(skills))
	for _, skill := range skills {
		responses = append(responses, toSkillResponse(skill))
	}
	common.RespondJSON(w, http.StatusOK, responses)
}

// UpdateSkill handles PATCH /api/skills/{skillID}
func (h *SkillHandler) UpdateSkill(w http.ResponseWriter, r *http.Request) {
	var req UpdateSkillRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError, err.Error())
		return
	}

	input := services.UpdateSkillInput{Name: req.Name}
	if len(req.ParentID) > 0 {
		input.SetParent = true
		if !bytes.Equal(req.ParentID, []byte("null")) {
			var parentID string
			if err := json.Unmarshal(req.ParentID, &parentID); err != nil {
				common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "parent_id must be a string or null")
				return
			}
			input.ParentID = &parentID
		}
	}

	skill, err := h.skills.Update(r.Context(), chi.URLParam(r, "skillID"), input)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toSkillResponse(skill))
}

// DeleteSkill handles DELETE /api/skills/{skillID}
func (h *SkillHandler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	if err := h.skills.Delete(r.Context(), chi.URLParam(r, "skillID")); err != nil {
		respondAppError(w, err)
		return
	}
	h.metrics.SkillsDeleted.Inc()
	common.RespondNoContent(w)
}

// GetForest handles GET /api/skills/tree
func (h *SkillHandler) GetForest(w http.ResponseWriter, r *http.Request) {
	tree, err := h.skills.Tree(r.Context(), nil)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, tree)
}

// GetSubtree handles GET /api/skills/{skillID}/tree
func (h *SkillHandler) GetSubtree(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "skillID")
	tree, err := h.skills.Tree(r.Context(), &id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, tree)
}

// GetSummary handles GET /api/skills/{skillID}/summary
func (h *SkillHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.aggregation.SummaryFor(r.Context(), chi.URLParam(r, "skillID"))
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, summary)
}

// GetRootsSummary handles GET /api/skills/summary
func (h *SkillHandler) GetRootsSummary(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.aggregation.RootsSummary(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, summaries)
}
