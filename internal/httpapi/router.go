package httpapi

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/openitup/storycode/internal/httpapi/handlers"
	httpMW "github.com/openitup/storycode/internal/httpapi/middleware"
	"github.com/openitup/storycode/internal/logger"
)

type RouterConfig struct {
	AllowedOrigins []string
	Logger         *logger.Logger

	HealthHandler  *httpH.HealthHandler
	StoryHandler   *httpH.StoryHandler
	FeatureHandler *httpH.FeatureHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Logger))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Original StoryCode endpoint
	if cfg.StoryHandler != nil {
		r.POST("/generate-story", cfg.StoryHandler.GenerateStory)
	}

	api := r.Group("/api")
	{
		if cfg.FeatureHandler != nil {
			api.GET("/features", cfg.FeatureHandler.ListFeatures)
			api.POST("/features/:feature", cfg.FeatureHandler.RunFeature)
			api.POST("/analyze", cfg.FeatureHandler.Analyze)
		}
	}

	return r
}
