package server

import (
	"errors"
	"net/http"

	"github.com/compozy/autoflow/engine/apps"
	"github.com/compozy/autoflow/engine/deploy"
	"github.com/compozy/autoflow/engine/plan"
	"github.com/compozy/autoflow/engine/runtime"
	"github.com/compozy/autoflow/engine/template"
	"github.com/gin-gonic/gin"
)

const (
	codeParseError         = "parse_error"
	codeSchemaError        = "schema_error"
	codeStructuralError    = "structural_error"
	codeInvalidInput       = "invalid_input"
	codeTemplateNotFound   = "template_not_found"
	codeInvalidTemplate    = "template_invalid_plan"
	codeUnsupportedApps    = "unsupported_apps"
	codeMissingConnections = "missing_connections"
	codeRuntimeError       = "runtime_error"
	codeActivationFailed   = "activation_failed"
	codeDeploymentNotFound = "deployment_not_found"
	codeBadRequest         = "bad_request"
	codeUnavailable        = "unavailable"
	codeInternal           = "internal_error"
)

// problemFor maps domain error categories onto problem documents.
func problemFor(err error) *Problem {
	var (
		parseErr  *plan.ParseError
		schemaErr *plan.SchemaError
		structErr *plan.StructuralError
		inputErr  *template.InputError
		availErr  *apps.AvailabilityError
		provErr   *runtime.ProviderError
		actErr    *deploy.ActivationError
	)
	switch {
	case errors.Is(err, template.ErrInvalidPlan):
		return withCode(http.StatusInternalServerError, codeInvalidTemplate, err.Error(), nil)
	case errors.As(err, &parseErr):
		return withCode(http.StatusBadRequest, codeParseError, err.Error(), nil)
	case errors.As(err, &schemaErr):
		return withCode(http.StatusUnprocessableEntity, codeSchemaError, err.Error(), map[string]any{"path": schemaErr.Path})
	case errors.As(err, &structErr):
		return withCode(http.StatusUnprocessableEntity, codeStructuralError, err.Error(), map[string]any{"kind": structErr.Kind})
	case errors.As(err, &inputErr):
		return withCode(http.StatusBadRequest, codeInvalidInput, err.Error(), map[string]any{
			"missing": inputErr.Missing,
			"invalid": inputErr.Invalid,
		})
	case errors.Is(err, deploy.ErrDeploymentNotFound):
		return withCode(http.StatusNotFound, codeDeploymentNotFound, err.Error(), nil)
	case errors.Is(err, template.ErrUnknownTemplate):
		return withCode(http.StatusNotFound, codeTemplateNotFound, err.Error(), nil)
	case errors.As(err, &availErr):
		code := codeMissingConnections
		if errors.Is(err, apps.ErrUnsupportedApps) {
			code = codeUnsupportedApps
		}
		return withCode(http.StatusUnprocessableEntity, code, err.Error(), map[string]any{"apps": availErr.Apps})
	case errors.As(err, &actErr):
		extras := map[string]any{"workflowId": actErr.WorkflowID}
		if errors.As(err, &provErr) {
			extras["upstream_status"] = provErr.StatusCode
		}
		return withCode(http.StatusBadGateway, codeActivationFailed, err.Error(), extras)
	case errors.As(err, &provErr):
		return withCode(http.StatusBadGateway, codeRuntimeError, err.Error(), map[string]any{"upstream_status": provErr.StatusCode})
	default:
		return withCode(http.StatusInternalServerError, codeInternal, err.Error(), nil)
	}
}

func withCode(status int, code, detail string, extras map[string]any) *Problem {
	if extras == nil {
		extras = map[string]any{}
	}
	extras["code"] = code
	return &Problem{Status: status, Detail: detail, Extras: extras}
}

func respondError(c *gin.Context, err error) {
	RespondProblem(c, problemFor(err))
}
