package controller

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-drive-service/utils"
)

func (ctrl *Controller) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := gin.H{"status": "ok"}
	healthy := true

	if ctrl.Infra.Postgres != nil {
		sqlDB, err := ctrl.Infra.Postgres.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Health] Database unreachable: %v", err)
			status["database"] = "unavailable"
			healthy = false
		} else {
			status["database"] = "ok"
		}
	}

	if ctrl.Infra.Redis != nil {
		if err := ctrl.Infra.Redis.Ping(ctx); err != nil {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Health] Redis unreachable: %v", err)
			status["cache"] = "unavailable"
			healthy = false
		} else {
			status["cache"] = "ok"
		}
	}

	if ctrl.Infra.Blob != nil {
		mode, err := ctrl.Infra.Blob.Ping(ctx)
		if err != nil {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Health] Blob storage unreachable: %v", err)
			status["storage"] = "unavailable"
			healthy = false
		} else {
			status["storage"] = mode
		}
	}

	if !healthy {
		status["status"] = "degraded"
		utils.JSON503(c, status)
		return
	}
	utils.JSON200(c, status)
}
