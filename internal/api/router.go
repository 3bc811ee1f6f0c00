package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/story-catalog-api/internal/config"
	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/ratelimit"
	"github.com/story-catalog-api/internal/service"
	"github.com/story-catalog-api/internal/validation"
)

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router. A nil health checker
// reports healthy unconditionally.
func NewRouter(services *service.Services, cfg *config.Config, limiter *ratelimit.KeyedRateLimiter, health HealthChecker, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(actorMiddleware())

	// Handlers
	v := validation.NewValidator()
	stories := NewStoryHandler(services, cfg, v, log)
	genres := NewGenreHandler(services, v, log)
	authors := NewAuthorHandler(services, v, limiter, log)
	exports := NewExportHandler(services, log)
	me := NewMeHandler(services, cfg, log)

	// Health check
	router.GET("/health", healthCheck(health, log))
	router.GET("/metrics", metricsHandler(services))

	admin := requireAdmin()

	// API v1
	v1 := router.Group("/v1")
	{
		s := v1.Group("/stories")
		{
			s.GET("", stories.List)
			s.GET("/by-genres", stories.ListByGenres)
			s.GET("/top", stories.Top)
			s.GET("/top-rated", stories.TopRated)
			s.POST("", admin, stories.Create)
			s.POST("/mine", stories.CreateMine)
			s.GET("/:id", stories.Get)
			s.PUT("/:id", stories.Update)
			s.DELETE("/:id", admin, stories.Delete)
			s.GET("/:id/chapters", stories.Chapters)
			s.POST("/:id/chapters", stories.AddChapter)
			s.POST("/:id/reads", stories.RecordRead)
			s.POST("/:id/ratings", stories.Rate)
			s.GET("/:id/ratings/summary", stories.RatingSummary)
		}

		ch := v1.Group("/chapters")
		{
			ch.GET("/:id", stories.Chapter)
			ch.PUT("/:id", stories.UpdateChapter)
			ch.DELETE("/:id", admin, stories.DeleteChapter)
		}

		g := v1.Group("/genres")
		{
			g.GET("", genres.List)
			g.POST("", admin, genres.Create)
			g.GET("/:id", genres.Get)
			g.PUT("/:id", admin, genres.Rename)
			g.DELETE("/:id", admin, genres.Delete)
			g.GET("/:id/stories", genres.Stories)
		}

		a := v1.Group("/authors")
		{
			a.GET("", authors.List)
			a.GET("/approved", authors.ListApproved)
			a.GET("/me", authors.Me)
			a.GET("/pending", admin, authors.Pending)
			a.POST("", admin, authors.Create)
			a.POST("/requests", authors.Submit)
			a.GET("/:id", authors.Get)
			a.PUT("/:id", admin, authors.Update)
			a.DELETE("/:id", admin, authors.Delete)
			a.PUT("/:id/approve", admin, authors.Approve)
			a.DELETE("/:id/reject", admin, authors.Reject)
			a.GET("/:id/stories", authors.Stories)
			a.GET("/:id/audit", admin, authors.Audit)
		}

		m := v1.Group("/me")
		{
			m.GET("/reading-history", me.History)
			m.DELETE("/reading-history/:id", me.DeleteRead)
			m.GET("/follows/stories", me.Following(models.FollowStory))
			m.POST("/follows/stories/:id", me.Follow(models.FollowStory))
			m.GET("/follows/stories/:id", me.IsFollowing(models.FollowStory))
			m.DELETE("/follows/stories/:id", me.Unfollow(models.FollowStory))
			m.GET("/follows/authors", me.Following(models.FollowAuthor))
			m.POST("/follows/authors/:id", me.Follow(models.FollowAuthor))
			m.GET("/follows/authors/:id", me.IsFollowing(models.FollowAuthor))
			m.DELETE("/follows/authors/:id", me.Unfollow(models.FollowAuthor))
		}

		v1.GET("/exports", admin, exports.StreamExport)
	}

	return router
}

// healthCheck returns the health status, 503 when the database is unreachable
func healthCheck(health HealthChecker, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if health != nil {
			if err := health.HealthCheck(c.Request.Context()); err != nil {
				log.Error().Err(err).Msg("Health check failed")
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "story-catalog-api",
		})
	}
}

// metricsHandler returns catalog size metrics
func metricsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		storiesCount, _ := services.Export.GetCount(ctx, "stories")
		genresCount, _ := services.Export.GetCount(ctx, "genres")
		authorsCount, _ := services.Export.GetCount(ctx, "authors")

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"stories": storiesCount,
				"genres":  genresCount,
				"authors": authorsCount,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("request_id", c.GetString(ctxRequestID)).
					Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{"code": "INTERNAL", "message": "internal server error"},
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("request_id", c.GetString(ctxRequestID)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("account_id", c.GetHeader(HeaderAccountID)).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Account-ID, X-Account-Role, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
