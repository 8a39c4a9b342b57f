package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raddispatch/distengine/internal/repository"
	"github.com/raddispatch/distengine/internal/service"
)

// Router creates and configures the Echo router. Per spec §1's scope
// cut, this is the entire HTTP surface: a distribution trigger, its
// preview counterpart, health checks, and the Prometheus scrape
// endpoint — no CRUD, no auth, no administrative UI.
type Router struct {
	echo     *echo.Echo
	handlers *Handlers
}

// NewRouter creates a new Echo router with all routes registered.
func NewRouter(distribution *service.DistributionService, db repository.Database) *Router {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST},
	}))

	r := &Router{
		echo:     e,
		handlers: NewHandlers(distribution, db),
	}
	r.registerRoutes()
	return r
}

func (r *Router) registerRoutes() {
	r.echo.GET("/api/health", r.handlers.Health)
	r.echo.GET("/api/health/db", r.handlers.HealthDB)

	distributeGroup := r.echo.Group("/api/distribute")
	distributeGroup.POST("", r.handlers.Distribute)
	distributeGroup.GET("", r.handlers.PreviewDistribute) // GET on the execute path previews instead of running
	distributeGroup.GET("/preview", r.handlers.PreviewDistribute)

	r.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Start starts the HTTP server.
func (r *Router) Start(addr string) error {
	return r.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (r *Router) Shutdown() error {
	return r.echo.Close()
}
