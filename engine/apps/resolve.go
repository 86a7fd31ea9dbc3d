// Package apps works out which third-party apps a plan needs and whether they are usable.
package apps

import (
	"sort"
	"strings"

	"github.com/compozy/autoflow/engine/plan"
)

// EmailApp is the app implied by send_email actions.
const EmailApp = "email"

type requirementVisitor struct {
	found map[string]struct{}
}

func (v *requirementVisitor) add(app string) {
	if app = normalizeApp(app); app != "" {
		v.found[app] = struct{}{}
	}
}

func (v *requirementVisitor) VisitHTTPRequest(_ *plan.Action, p *plan.HTTPRequestParams) error {
	if p.Auth != nil {
		v.add(p.Auth.App)
	}
	return nil
}

func (v *requirementVisitor) VisitSetData(*plan.Action, *plan.SetDataParams) error { return nil }

func (v *requirementVisitor) VisitSendEmail(*plan.Action, *plan.SendEmailParams) error {
	v.add(EmailApp)
	return nil
}

func (v *requirementVisitor) VisitDelay(*plan.Action, *plan.DelayParams) error { return nil }

// ResolveRequiredApps returns the sorted, de-duplicated app names p depends on.
// Triggers never imply an app.
func ResolveRequiredApps(p *plan.Plan) []string {
	v := &requirementVisitor{found: map[string]struct{}{}}
	if p != nil {
		for i := range p.Actions {
			// Visit only fails for actions without params, which imply no app.
			_ = p.Actions[i].Visit(v)
		}
	}
	out := make([]string, 0, len(v.found))
	for app := range v.found {
		out = append(out, app)
	}
	sort.Strings(out)
	return out
}

func normalizeApp(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
