package apps

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedApps    = errors.New("unsupported apps")
	ErrMissingConnections = errors.New("missing app connections")
)

// AvailabilityError names the apps that block a deployment.
type AvailabilityError struct {
	Kind error
	Apps []string
}

func (e *AvailabilityError) Error() string {
	if errors.Is(e.Kind, ErrUnsupportedApps) {
		return "Unsupported apps: " + strings.Join(e.Apps, ", ")
	}
	return "Missing connections for apps: " + strings.Join(e.Apps, ", ")
}

func (e *AvailabilityError) Unwrap() error { return e.Kind }

// CheckAvailability runs the supported check first and only then the connection check.
// connected holds the service names of the user's active connections.
func CheckAvailability(required []string, supported SupportedApps, connected []string) error {
	if err := checkSupported(required, supported); err != nil {
		return err
	}
	active := make(map[string]struct{}, len(connected))
	for _, name := range connected {
		active[normalizeApp(name)] = struct{}{}
	}
	var missing []string
	for _, app := range required {
		if _, ok := active[normalizeApp(app)]; !ok {
			missing = append(missing, app)
		}
	}
	if len(missing) > 0 {
		return &AvailabilityError{Kind: ErrMissingConnections, Apps: missing}
	}
	return nil
}

func checkSupported(required []string, supported SupportedApps) error {
	if supported == nil {
		return fmt.Errorf("supported apps registry is required")
	}
	var unsupported []string
	for _, app := range required {
		if !supported.IsSupported(app) {
			unsupported = append(unsupported, app)
		}
	}
	if len(unsupported) > 0 {
		return &AvailabilityError{Kind: ErrUnsupportedApps, Apps: unsupported}
	}
	return nil
}
