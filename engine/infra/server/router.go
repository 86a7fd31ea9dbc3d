package server

import (
	"context"
	"fmt"

	"github.com/compozy/autoflow/engine/infra/monitoring"
	"github.com/compozy/autoflow/pkg/logger"
	"github.com/gin-gonic/gin"
)

const apiBase = "/api/v0"

// NewRouter wires the API routes. monitor may be nil.
func NewRouter(ctx context.Context, deps Dependencies, monitor *monitoring.Service) (*gin.Engine, error) {
	if deps.Templates == nil {
		return nil, fmt.Errorf("template service is required")
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger.FromContext(ctx)))
	if monitor != nil && monitor.IsInitialized() {
		router.Use(monitor.GinMiddleware(ctx))
		router.GET(monitor.Path(), gin.WrapH(monitor.ExporterHandler()))
	}
	if deps.RateLimiter != nil {
		router.Use(deps.RateLimiter.Middleware())
	}
	router.GET("/healthz", healthHandler)
	h := &handlers{deps: deps}
	api := router.Group(apiBase)
	{
		plans := api.Group("/plans")
		plans.POST("/validate", h.validatePlan)
		plans.POST("/compile", h.compilePlan)
		plans.POST("/apps", h.planApps)

		templates := api.Group("/templates")
		templates.GET("", h.listTemplates)
		templates.POST("/:name/plan", h.buildTemplate)

		deployments := api.Group("/deployments")
		deployments.POST("", h.createDeployment)
		deployments.GET("", h.listDeployments)
		deployments.GET("/:id", h.getDeployment)

		api.POST("/workflows/:id/executions", h.runWorkflow)
	}
	router.NoRoute(func(c *gin.Context) {
		RespondProblemWithCode(c, 404, "not_found", "route not found")
	})
	return router, nil
}
