package compiler

import (
	"fmt"
	"sort"

	"github.com/compozy/autoflow/engine/plan"
	"github.com/google/uuid"
)

const (
	originX = 250
	originY = 300
	stepX   = 220
)

var nodeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://autoflow.dev/nodes"))

// Compile lowers a validated plan. It never re-validates p and never mutates it; every plan
// accepted by plan.Validate compiles, so an error means p bypassed validation.
func Compile(p *plan.Plan) (*Graph, error) {
	if p == nil {
		return nil, fmt.Errorf("plan is required")
	}
	g := &Graph{
		Name:        p.Name,
		Nodes:       make([]Node, 0, len(p.Actions)+1),
		Connections: make(map[string]NodeConnections, len(p.Actions)+1),
		Settings:    map[string]any{"executionOrder": "v1"},
	}
	tb := &triggerBuilder{planName: p.Name}
	if err := p.Trigger.Visit(tb); err != nil {
		return nil, fmt.Errorf("failed to compile trigger: %w", err)
	}
	tb.node.Name = TriggerNodeName
	tb.node.ID = nodeID(p.Name, TriggerNodeName)
	tb.node.Position = [2]int{originX, originY}
	g.Nodes = append(g.Nodes, tb.node)

	for i := range p.Actions {
		a := &p.Actions[i]
		ab := &actionBuilder{planName: p.Name}
		if err := a.Visit(ab); err != nil {
			return nil, fmt.Errorf("failed to compile action %s: %w", a.ID, err)
		}
		ab.node.Name = a.ID
		ab.node.ID = nodeID(p.Name, a.ID)
		ab.node.Position = [2]int{originX + stepX*(i+1), originY}
		if len(a.OnFailureNext) > 0 {
			ab.node.OnError = "continueRegularOutput"
		}
		g.Nodes = append(g.Nodes, ab.node)
		if targets := dedupe(a.Targets()); len(targets) > 0 {
			g.Connections[a.ID] = mainOutput(targets)
		}
	}
	if starts := plan.StartActions(p); len(starts) > 0 {
		g.Connections[TriggerNodeName] = mainOutput(starts)
	}
	return g, nil
}

func nodeID(planName, nodeName string) string {
	return uuid.NewSHA1(nodeNamespace, []byte(planName+"/"+nodeName)).String()
}

func mainOutput(targets []string) NodeConnections {
	out := make([]ConnectionTarget, 0, len(targets))
	for _, t := range targets {
		out = append(out, ConnectionTarget{Node: t, Type: MainConnection, Index: 0})
	}
	return NodeConnections{Main: [][]ConnectionTarget{out}}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// sortedKeys keeps parameter lists stable across runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
