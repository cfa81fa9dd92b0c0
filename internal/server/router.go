// Package server assembles the gin engine for either application.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"blog-todo/internal/config"
	"blog-todo/internal/handlers"
	"blog-todo/internal/middleware"
	"blog-todo/internal/monitoring"
	"blog-todo/internal/web"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts an application's pages on app and its JSON API on
// api.
type RouteRegistrar func(app, api *gin.RouterGroup)

var displayNames = map[string]string{
	"blog": handlers.BlogName,
	"todo": handlers.TodoName,
}

// NewRouter builds the engine: shared middleware, operational endpoints
// (exempt from rate limiting), then the application routes.
func NewRouter(cfg *config.Config, log *slog.Logger, health *monitoring.HealthChecker, register RouteRegistrar) (*gin.Engine, error) {
	name, ok := displayNames[cfg.App]
	if !ok {
		return nil, fmt.Errorf("unknown application %q", cfg.App)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := web.Templates(cfg.App)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		monitoring.MetricsMiddleware(cfg.App),
		// innermost: the logger and metrics finish after it
		middleware.RecoveryWithLog(log),
	)

	r.GET("/health", health.HealthHandler())
	r.GET("/ready", health.ReadinessHandler())
	r.GET("/live", health.LivenessHandler())
	r.GET("/metrics", monitoring.MetricsHandler())

	app := r.Group("/")
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize, cfg.RateLimit.CleanupInterval)
		app.Use(limiter.Middleware())
		health.RegisterStats("rate_limiter", limiter.Stats)
	}

	api := app.Group("/api", middleware.CORS(cfg.CORS.AllowedOrigins))
	// Preflight requests never match a resource route.
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	register(app, api)

	r.NoRoute(handlers.NotFound(name))
	return r, nil
}

func BlogRoutes(h *handlers.PostHandler) RouteRegistrar {
	return func(app, api *gin.RouterGroup) {
		app.GET("/", h.Index)
		app.GET("/posts/new", h.New)
		app.POST("/posts", h.Create)
		app.GET("/posts/:id", h.Show)
		app.GET("/posts/:id/edit", h.Edit)
		app.POST("/posts/:id", h.Update)
		app.POST("/posts/:id/delete", h.Delete)

		api.GET("/posts", h.ListPosts)
		api.GET("/posts/:id", h.GetPost)
		api.POST("/posts", h.CreatePost)
		api.PUT("/posts/:id", h.UpdatePost)
		api.DELETE("/posts/:id", h.DeletePost)
	}
}

// TodoRoutes mounts the to-do pages; its JSON API is read-only.
func TodoRoutes(h *handlers.TaskHandler) RouteRegistrar {
	return func(app, api *gin.RouterGroup) {
		app.GET("/", h.Index)
		app.GET("/tasks/new", h.New)
		app.POST("/tasks", h.Create)
		app.GET("/tasks/:id", h.Show)
		app.GET("/tasks/:id/edit", h.Edit)
		app.POST("/tasks/:id", h.Update)
		app.POST("/tasks/:id/delete", h.Delete)

		api.GET("/tasks", h.ListTasks)
		api.GET("/tasks/:id", h.GetTask)
	}
}
