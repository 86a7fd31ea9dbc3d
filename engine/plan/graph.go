package plan

// Analysis is the in-degree view of a plan's action graph.
type Analysis struct {
	// InDegree counts how often each action id appears as a success or failure target.
	InDegree map[string]int
	// StartActions lists in-degree zero actions in declaration order.
	StartActions []string
}

// Analyze computes in-degrees and start actions. It does not validate p.
func Analyze(p *Plan) Analysis {
	inDegree := make(map[string]int, len(p.Actions))
	for i := range p.Actions {
		inDegree[p.Actions[i].ID] = 0
	}
	for i := range p.Actions {
		for _, target := range p.Actions[i].Targets() {
			inDegree[target]++
		}
	}
	starts := make([]string, 0)
	seen := make(map[string]struct{}, len(p.Actions))
	for i := range p.Actions {
		id := p.Actions[i].ID
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if inDegree[id] == 0 {
			starts = append(starts, id)
		}
	}
	return Analysis{InDegree: inDegree, StartActions: starts}
}

// StartActions is shorthand for Analyze(p).StartActions.
func StartActions(p *Plan) []string {
	return Analyze(p).StartActions
}
