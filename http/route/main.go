package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/plumstack/ostack-console/http/controller"
	middlewares "github.com/plumstack/ostack-console/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}
	r.Use(middles.CORSMiddleware)

	apiRoutes := r.Group("/api/v1/console")
	{
		apiRoutes.GET("/healthcheck", ctrl.Healthcheck)
		apiRoutes.POST("/auth/login", ctrl.Login)
		apiRoutes.POST("/auth/logout", ctrl.Logout)

		authRoutes := apiRoutes.Group("")
		authRoutes.Use(middles.AuthMiddleware)

		serverRoutes := authRoutes.Group("/servers")
		{
			serverRoutes.POST("/", ctrl.CreateServer)
			serverRoutes.GET("/", ctrl.ListServers)
			serverRoutes.GET("/:id", ctrl.GetServerByID)
			serverRoutes.PUT("/:id", ctrl.UpdateServerByID)
			serverRoutes.DELETE("/:id", ctrl.DeleteServerByID)
			serverRoutes.POST("/:id/action", ctrl.RunServerAction)
			serverRoutes.POST("/:id/vnc", ctrl.CreateServerConsole)
			serverRoutes.POST("/:id/volumes", ctrl.AttachServerVolume)
			serverRoutes.DELETE("/:id/volumes/:volume_id", ctrl.DetachServerVolume)
		}

		volumeRoutes := authRoutes.Group("/volumes")
		{
			volumeRoutes.POST("/", ctrl.CreateVolume)
			volumeRoutes.GET("/", ctrl.ListVolumes)
			volumeRoutes.GET("/:id", ctrl.GetVolumeByID)
			volumeRoutes.PUT("/:id", ctrl.UpdateVolumeByID)
			volumeRoutes.DELETE("/:id", ctrl.DeleteVolumeByID)
			volumeRoutes.POST("/:id/extend", ctrl.ExtendVolumeByID)
		}

		floatingipRoutes := authRoutes.Group("/floatingips")
		{
			floatingipRoutes.POST("/", ctrl.CreateFloatingip)
			floatingipRoutes.GET("/", ctrl.ListFloatingips)
			floatingipRoutes.GET("/:id", ctrl.GetFloatingipByID)
			floatingipRoutes.PUT("/:id", ctrl.UpdateFloatingipByID)
			floatingipRoutes.DELETE("/:id", ctrl.DeleteFloatingipByID)
			floatingipRoutes.PUT("/:id/port", ctrl.UpdateFloatingipPort)
		}

		flavorRoutes := authRoutes.Group("/flavors")
		{
			flavorRoutes.GET("/", ctrl.ListFlavors)
			flavorRoutes.GET("/:id", ctrl.GetFlavorByID)
		}

		imageRoutes := authRoutes.Group("/images")
		{
			imageRoutes.GET("/", ctrl.ListImages)
			imageRoutes.GET("/:id", ctrl.GetImageByID)
		}
	}
	return r
}
