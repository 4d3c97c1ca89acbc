package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openpace/activity-backend-go/internal/config"
	"github.com/openpace/activity-backend-go/internal/handler"
	"github.com/openpace/activity-backend-go/internal/middleware"
	"github.com/openpace/activity-backend-go/internal/monitoring"
)

// SetupRouter wires all HTTP endpoints
func SetupRouter(cfg *config.Config, activities *handler.ActivityHandler, segments *handler.SegmentHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+middleware.UserIDHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Activity Backend API is running",
		})
	})

	r.GET("/metrics", gin.WrapH(monitoring.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	api.Use(middleware.RequireUserID())
	{
		a := api.Group("/activities")
		{
			a.POST("", activities.Upload)
			a.POST("/batch", activities.UploadBatch)
			a.GET("/:id", activities.Get)
		}

		s := api.Group("/segments")
		{
			s.POST("", segments.Create)
			s.GET("", segments.List)
			s.GET("/:id", segments.Get)
			s.GET("/:id/matches", segments.Matches)
			s.POST("/:id/refresh", segments.Refresh)
		}
	}

	return r
}
