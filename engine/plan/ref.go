package plan

import (
	"regexp"
	"strings"
)

// WebhookAlias is the reference source that names the trigger's payload.
const WebhookAlias = "webhook"

var refPattern = regexp.MustCompile(`^\{\{\s*([A-Za-z0-9_-]+(?:\.[A-Za-z0-9_-]+)*)\s*\}\}$`)

// Ref is a parsed {{source.path}} expression.
type Ref struct {
	Source string
	Path   []string
}

// NewRef builds a reference to source and the nested field path.
func NewRef(source string, path ...string) Ref {
	return Ref{Source: source, Path: path}
}

// ParseRef recognizes only whole-string expressions; anything else is a literal.
func ParseRef(s string) (Ref, bool) {
	m := refPattern.FindStringSubmatch(s)
	if m == nil {
		return Ref{}, false
	}
	parts := strings.Split(m[1], ".")
	ref := Ref{Source: parts[0]}
	if len(parts) > 1 {
		ref.Path = parts[1:]
	}
	return ref, true
}

// IsTrigger reports whether the reference targets the trigger payload.
func (r Ref) IsTrigger() bool {
	return r.Source == WebhookAlias
}

func (r Ref) String() string {
	if len(r.Path) == 0 {
		return "{{" + r.Source + "}}"
	}
	return "{{" + r.Source + "." + strings.Join(r.Path, ".") + "}}"
}
