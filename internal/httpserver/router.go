package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"goalboard/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	boardHandler *handler.BoardHandler,
	categoryHandler *handler.CategoryHandler,
	goalHandler *handler.GoalHandler,
	commentHandler *handler.CommentHandler,
	adminHandler *handler.AdminHandler,
	jwtSecret string,
	db *pgxpool.Pool,
	logger *zap.Logger,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(LoggingMiddleware(logger))
	r.Use(MetricsMiddleware())

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.POST("/boards", boardHandler.Create)
		auth.GET("/boards", boardHandler.List)
		auth.GET("/boards/:id", boardHandler.Get)
		auth.PUT("/boards/:id", boardHandler.Update)
		auth.DELETE("/boards/:id", boardHandler.Delete)
		auth.POST("/boards/:id/participants", boardHandler.GrantParticipant)
		auth.GET("/boards/:id/participants", boardHandler.ListParticipants)

		auth.POST("/categories", categoryHandler.Create)
		auth.GET("/categories", categoryHandler.List)
		auth.GET("/categories/:id", categoryHandler.Get)
		auth.PUT("/categories/:id", categoryHandler.Update)
		auth.DELETE("/categories/:id", categoryHandler.Delete)

		auth.POST("/goals", goalHandler.Create)
		auth.GET("/goals", goalHandler.List)
		auth.GET("/goals/:id", goalHandler.Get)
		auth.PATCH("/goals/:id", goalHandler.Update)
		auth.DELETE("/goals/:id", goalHandler.Delete)

		auth.POST("/comments", commentHandler.Create)
		auth.GET("/comments", commentHandler.List)
		auth.GET("/comments/:id", commentHandler.Get)
		auth.PUT("/comments/:id", commentHandler.Update)
		auth.DELETE("/comments/:id", commentHandler.Delete)

		auth.POST("/admin/outbox/replay", adminHandler.ReplayOutboxEvent)
		auth.POST("/admin/outbox/replay-failed", adminHandler.ReplayFailedEvents)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
