package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// BuildInfo is reported by /health and /version
type BuildInfo struct {
	Service   string
	Version   string
	BuildTime string
	GitCommit string
}

// CORSConfig lists comma-separated allowed origins, methods and headers
type CORSConfig struct {
	Origins string
	Methods string
	Headers string
}

// Handlers bundles everything mounted under /api/v1
type Handlers struct {
	Chat      *ChatHandler
	Cars      *CarHandler
	Embedding *EmbeddingHandler
	Feedback  *FeedbackHandler
}

// NewRouter builds the gin engine with CORS, request logging and all routes.
func NewRouter(info BuildInfo, corsCfg CORSConfig, h Handlers, logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(corsCfg.Origins, "*")
	corsConfig.AllowMethods = splitList(corsCfg.Methods, "GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AllowHeaders = splitList(corsCfg.Headers, "Content-Type", "Authorization")
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    info.Service,
			"version":    info.Version,
			"build_time": info.BuildTime,
			"git_commit": info.GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    info.Version,
			"build_time": info.BuildTime,
			"git_commit": info.GitCommit,
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		// Conversation endpoints
		apiV1.POST("/conversations", h.Chat.Create)
		apiV1.POST("/conversations/:id/messages", h.Chat.Message)
		apiV1.DELETE("/conversations/:id", h.Chat.Reset)
		apiV1.GET("/conversations/:id/filter", h.Chat.Filter)

		// Car endpoints
		apiV1.GET("/cars/:id", h.Cars.GetCar)
		apiV1.POST("/cars/embeddings/batch", h.Embedding.BatchUpdate)

		// Feedback endpoint
		apiV1.POST("/feedback", h.Feedback.Submit)
	}

	return router
}

// splitList splits a comma-separated setting, falling back to defaults when empty.
func splitList(s string, defaults ...string) []string {
	items := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaults
	}
	return items
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
