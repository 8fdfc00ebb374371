package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-drive-service/http/controller"
	middlewares "github.com/tnqbao/gau-drive-service/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)
	r.GET("/health", ctrl.HealthCheck)

	apiRoutes := r.Group("/api/v1/drive")
	{
		apiRoutes.Use(middles.AuthMiddleware)

		apiRoutes.GET("/dashboard", ctrl.GetDashboard)
		apiRoutes.GET("/entries", ctrl.ListRoot)
		apiRoutes.GET("/entries/:id/stats", ctrl.GetEntryStats)
		apiRoutes.DELETE("/entries/:id", ctrl.DeleteEntry)

		folderRoutes := apiRoutes.Group("/folders")
		{
			folderRoutes.POST("", ctrl.CreateFolder)
			folderRoutes.GET("/:id", ctrl.ListFolder)
		}

		fileRoutes := apiRoutes.Group("/files")
		{
			fileRoutes.POST("", ctrl.UploadFiles)
			fileRoutes.GET("/:id/download", ctrl.DownloadFile)
		}
	}
	return r
}
