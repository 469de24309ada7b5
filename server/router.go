package server

import (
	"net/http"
	"time"

	"world-vlog/infrastructure/realtime"
	httpHandler "world-vlog/interfaces/http"
	"world-vlog/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AllowOrigins []string
	SecretKey    string
}

func InitiateRouter(
	cfg RouterConfig,
	videoHandler httpHandler.IVideoHandler,
	adminHandler httpHandler.IAdminHandler,
	healthHandler httpHandler.IHealthHandler,
	ratingHub *realtime.RatingHub,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("api")
	api.GET("/youtube", videoHandler.QueryVideos)
	api.POST("/rate", videoHandler.RateVideo)
	api.GET("/random", videoHandler.RandomVideos)
	if ratingHub != nil {
		api.GET("/ratings/stream", ratingHub.Serve)
	}

	admin := router.Group("admin")
	admin.Use(middleware.AdminAuth(cfg.SecretKey))
	{
		admin.POST("/pool/rebuild", adminHandler.RebuildPool)
		admin.DELETE("/cache/memory", adminHandler.FlushMemoryCache)
		admin.GET("/cache/stats", adminHandler.CacheStats)
	}

	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
