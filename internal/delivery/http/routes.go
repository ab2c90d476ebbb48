package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/slimsamil/Wortmann2Shopify/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(RequestLogger(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/", handler.Root)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handler.HealthCheck)
		v1.GET("/health/detailed", handler.DetailedHealth)

		workflow := v1.Group("/workflow")
		{
			workflow.POST("/execute", handler.ExecuteWorkflow)
		}

		products := v1.Group("/products")
		{
			products.POST("/sync-by-ids", handler.SyncProducts)
			products.POST("/delete", handler.DeleteProducts)
		}
	}

	return router
}
