package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-drive-service/http/controller"
)

type Middlewares struct {
	CORSMiddleware gin.HandlerFunc
	AuthMiddleware gin.HandlerFunc
}

func NewMiddlewares(ctrl *controller.Controller) (*Middlewares, error) {
	var cache TokenCache
	if ctrl.Infra.Redis != nil {
		cache = ctrl.Infra.Redis
	}

	cors := CORSMiddleware(ctrl.Config.EnvConfig)
	auth := AuthMiddleware(ctrl.Infra.AuthorizationService, cache, ctrl.Infra.Logger, ctrl.Config.EnvConfig)

	return &Middlewares{
		CORSMiddleware: cors,
		AuthMiddleware: auth,
	}, nil
}
