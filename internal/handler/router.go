package handler

import (
	"github.com/gin-gonic/gin"

	"kanto-ml/internal/middleware"
	"kanto-ml/pkg/token"
)

// NewRouter 注册所有路由。jwtManager 为 nil 时不开放 /sync_destinations。
func NewRouter(recHandler *RecommendationHandler, destHandler *DestinationHandler, jwtManager *token.JWTManager) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.GET("/healthz", recHandler.Health)
	r.POST("/predict", recHandler.Predict)
	r.GET("/destinations", recHandler.ListDestinations)
	r.GET("/destinations/stored", destHandler.ListStored)
	r.POST("/save_destinations", destHandler.SaveDestinations)

	if jwtManager != nil {
		admin := r.Group("/")
		admin.Use(middleware.AuthMiddleware(jwtManager), middleware.AdminAuthMiddleware())
		{
			admin.POST("/sync_destinations", destHandler.SyncDestinations)
		}
	}
	return r
}
