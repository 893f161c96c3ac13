package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"skilltree-backend/application/services"
	"skilltree-backend/pkg/common"
)

// importBodyBytes allows larger documents than the regular endpoints since
// whole forests travel in one request.
const importBodyBytes = 16 << 20

// TransferHandler handles export, import, and data reset requests
type TransferHandler struct {
	transfer *services.TransferService
	logger   *zap.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(transfer *services.TransferService, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{transfer: transfer, logger: logger}
}

// Export handles GET /api/skills/export
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.transfer.Export(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, nodes)
}

// ImportAdditive handles POST /api/skills/import
func (h *TransferHandler) ImportAdditive(w http.ResponseWriter, r *http.Request) {
	var docs []services.ImportNode
	if err := common.ParseJSONBody(r, &docs, importBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.transfer.ImportAdditive(r.Context(), docs)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, created)
}

// ImportReplace handles PUT /api/skills/import
func (h *TransferHandler) ImportReplace(w http.ResponseWriter, r *http.Request) {
	var docs []services.ImportNode
	if err := common.ParseJSONBody(r, &docs, importBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.transfer.ImportReplace(r.Context(), docs)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, created)
}

// ClearData handles DELETE /api/data
func (h *TransferHandler) ClearData(w http.ResponseWriter, r *http.Request) {
	if err := h.transfer.ClearAll(r.Context()); err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondNoContent(w)
}
