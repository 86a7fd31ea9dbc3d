package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/compozy/autoflow/engine/apps"
	"github.com/compozy/autoflow/engine/compiler"
	"github.com/compozy/autoflow/engine/deploy"
	"github.com/compozy/autoflow/engine/infra/server/middleware/ratelimit"
	"github.com/compozy/autoflow/engine/plan"
	"github.com/compozy/autoflow/engine/runtime"
	"github.com/compozy/autoflow/engine/template"
	"github.com/gin-gonic/gin"
)

// Dependencies are the use cases the API exposes. Deployer and Dispatcher are optional;
// their routes answer 503 when the runtime is not configured. RateLimiter is optional too.
type Dependencies struct {
	Templates   *template.Service
	Deployer    *deploy.Service
	Dispatcher  *runtime.Dispatcher
	RateLimiter *ratelimit.Manager
}

type handlers struct {
	deps Dependencies
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data, "message": "Success"})
}

func readPlan(c *gin.Context) (*plan.Plan, bool) {
	body, err := c.GetRawData()
	if err != nil {
		RespondProblemWithCode(c, http.StatusBadRequest, codeBadRequest, "failed to read request body")
		return nil, false
	}
	p, err := plan.Parse(body)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return p, true
}

func (h *handlers) validatePlan(c *gin.Context) {
	p, ok := readPlan(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, gin.H{"plan": p, "startActions": plan.StartActions(p)})
}

func (h *handlers) compilePlan(c *gin.Context) {
	p, ok := readPlan(c)
	if !ok {
		return
	}
	graph, err := compiler.Compile(p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, graph)
}

func (h *handlers) planApps(c *gin.Context) {
	p, ok := readPlan(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, gin.H{"apps": apps.ResolveRequiredApps(p)})
}

type templateView struct {
	template.Metadata
	Inputs []template.Input `json:"inputs"`
	Schema map[string]any   `json:"schema"`
}

func (h *handlers) listTemplates(c *gin.Context) {
	reg := h.deps.Templates.Registry()
	list := reg.List()
	out := make([]templateView, 0, len(list))
	for _, meta := range list {
		tpl, ok := reg.Get(meta.Name)
		if !ok {
			continue
		}
		inputs := tpl.RequiredInputs()
		out = append(out, templateView{Metadata: meta, Inputs: inputs, Schema: template.InputSchema(inputs)})
	}
	respondOK(c, http.StatusOK, out)
}

type buildTemplateRequest struct {
	Inputs map[string]any `json:"inputs"`
}

func (h *handlers) buildTemplate(c *gin.Context) {
	var req buildTemplateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondProblemWithCode(c, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
	}
	p, err := h.deps.Templates.Build(c.Request.Context(), c.Param("name"), req.Inputs)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, p)
}

type deploymentRequest struct {
	UserID string          `json:"userId" binding:"required"`
	Plan   json.RawMessage `json:"plan"   binding:"required"`
}

func (h *handlers) createDeployment(c *gin.Context) {
	if h.deps.Deployer == nil {
		RespondProblemWithCode(c, http.StatusServiceUnavailable, codeUnavailable, "runtime provider is not configured")
		return
	}
	var req deploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondProblemWithCode(c, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	out, err := h.deps.Deployer.Deploy(c.Request.Context(), deploy.Request{UserID: req.UserID, Plan: req.Plan})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, out)
}

func (h *handlers) getDeployment(c *gin.Context) {
	if h.deps.Deployer == nil {
		RespondProblemWithCode(c, http.StatusServiceUnavailable, codeUnavailable, "runtime provider is not configured")
		return
	}
	rec, err := h.deps.Deployer.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, rec)
}

func (h *handlers) listDeployments(c *gin.Context) {
	if h.deps.Deployer == nil {
		RespondProblemWithCode(c, http.StatusServiceUnavailable, codeUnavailable, "runtime provider is not configured")
		return
	}
	userID := c.Query("userId")
	if userID == "" {
		RespondProblemWithCode(c, http.StatusBadRequest, codeBadRequest, "userId query parameter is required")
		return
	}
	list, err := h.deps.Deployer.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

type executionRequest struct {
	Input map[string]any `json:"input"`
}

// runWorkflow always answers 200 with a normalized result, even when the runtime failed.
func (h *handlers) runWorkflow(c *gin.Context) {
	if h.deps.Dispatcher == nil {
		RespondProblemWithCode(c, http.StatusServiceUnavailable, codeUnavailable, "runtime provider is not configured")
		return
	}
	var req executionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondProblemWithCode(c, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
	}
	res, err := h.deps.Dispatcher.Run(c.Request.Context(), c.Param("id"), req.Input)
	if err != nil {
		RespondProblemWithCode(c, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	respondOK(c, http.StatusOK, res)
}

func healthHandler(c *gin.Context) {
	respondOK(c, http.StatusOK, gin.H{"status": "healthy"})
}
