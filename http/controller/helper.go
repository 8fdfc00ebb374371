package controller

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-drive-service/service"
	"github.com/tnqbao/gau-drive-service/utils"
)

// ownerFromContext reads the authenticated owner; it writes the error
// response itself and returns false when none is available.
func (ctrl *Controller) ownerFromContext(c *gin.Context, tag string) (uuid.UUID, bool) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	switch {
	case errors.Is(err, utils.ErrMissingUserID):
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[%s] user_id not found in context", tag)
		utils.JSON401(c, "Unauthorized: user_id not found")
		return uuid.Nil, false
	case err != nil:
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[%s] Invalid user_id format: %v", tag, err)
		utils.JSON400(c, "Invalid user_id format")
		return uuid.Nil, false
	}
	return userID, true
}

func (ctrl *Controller) idParam(c *gin.Context, tag string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(c.Request.Context(), "[%s] Invalid id %q", tag, c.Param("id"))
		utils.JSON400(c, "Invalid id format")
		return uuid.Nil, false
	}
	return id, true
}

// folderQuery reads the optional ?folder=<id> target; absent means the root.
func (ctrl *Controller) folderQuery(c *gin.Context, tag string) (*uuid.UUID, bool) {
	raw := c.Query("folder")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(c.Request.Context(), "[%s] Invalid folder id %q", tag, raw)
		utils.JSON400(c, "Invalid folder id format")
		return nil, false
	}
	return &id, true
}

func (ctrl *Controller) writeError(ctx context.Context, c *gin.Context, tag string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		utils.JSON404(c, "Entry not found")
	case errors.Is(err, service.ErrDuplicateName):
		utils.JSON409(c, err.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrTreeTooDeep):
		utils.JSON400(c, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[%s] Storage failure: %v", tag, err)
		utils.JSON502(c, "Storage is currently unavailable")
	default:
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[%s] Unexpected error: %v", tag, err)
		utils.JSON500(c, "Internal server error")
	}
}
