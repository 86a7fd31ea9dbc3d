package apps

import (
	"context"
	"fmt"

	"github.com/compozy/autoflow/engine/plan"
	"github.com/compozy/autoflow/pkg/logger"
)

// Checker gates deployments on app support and user connections.
type Checker struct {
	supported   SupportedApps
	connections ConnectionLister
}

func NewChecker(supported SupportedApps, connections ConnectionLister) *Checker {
	return &Checker{supported: supported, connections: connections}
}

// Check returns the required apps of p, or an error when any of them is unusable for userID.
func (c *Checker) Check(ctx context.Context, userID string, p *plan.Plan) ([]string, error) {
	log := logger.FromContext(ctx)
	required := ResolveRequiredApps(p)
	if len(required) == 0 {
		return required, nil
	}
	// Unsupported apps short-circuit before any connection lookup.
	if err := checkSupported(required, c.supported); err != nil {
		return required, err
	}
	if c.connections == nil {
		return required, fmt.Errorf("connection lister is not configured")
	}
	conns, err := c.connections.ListActiveConnections(ctx, userID)
	if err != nil {
		return required, fmt.Errorf("failed to load connections for user %s: %w", userID, err)
	}
	names := make([]string, 0, len(conns))
	for _, conn := range conns {
		names = append(names, conn.ServiceName)
	}
	if err := CheckAvailability(required, c.supported, names); err != nil {
		log.Info("Plan blocked by app availability", "user", userID, "error", err)
		return required, err
	}
	return required, nil
}
