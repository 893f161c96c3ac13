package handlers

import (
	"net/http"

	"skilltree-backend/pkg/common"
	pkgerrors "skilltree-backend/pkg/errors"
)

// respondAppError maps a service error onto the response envelope. Unknown
// error values fall through as 500s so internals never leak.
func respondAppError(w http.ResponseWriter, err error) {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		common.RespondError(w, status, codeForType(appErr.Type), appErr.Message)
		return
	}
	common.RespondError(w, http.StatusInternalServerError, common.StandardErrorCodes.InternalError, "internal server error")
}

func codeForType(t pkgerrors.ErrorType) string {
	switch t {
	case pkgerrors.ErrorTypeValidation:
		return common.StandardErrorCodes.ValidationError
	case pkgerrors.ErrorTypeNotFound:
		return common.StandardErrorCodes.NotFound
	case pkgerrors.ErrorTypeCycleDetected:
		return common.StandardErrorCodes.CycleDetected
	default:
		return common.StandardErrorCodes.InternalError
	}
}
