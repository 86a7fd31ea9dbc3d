// Package compiler lowers validated plans into the node and connection graph the automation
// runtime imports.
package compiler

import (
	"encoding/json"

	"github.com/compozy/autoflow/engine/plan"
)

const (
	TriggerNodeName = plan.TriggerNodeName
	MainConnection  = "main"
)

// Graph is a runtime workflow definition. Marshaling a Graph is deterministic.
type Graph struct {
	Name        string                     `json:"name"`
	Nodes       []Node                     `json:"nodes"`
	Connections map[string]NodeConnections `json:"connections"`
	Settings    map[string]any             `json:"settings"`
}

type Node struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Type        string                `json:"type"`
	TypeVersion float64               `json:"typeVersion"`
	Position    [2]int                `json:"position"`
	Parameters  map[string]any        `json:"parameters"`
	WebhookID   string                `json:"webhookId,omitempty"`
	Credentials map[string]Credential `json:"credentials,omitempty"`
	OnError     string                `json:"onError,omitempty"`
}

type Credential struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type NodeConnections struct {
	Main [][]ConnectionTarget `json:"main"`
}

type ConnectionTarget struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// Node returns the node called name.
func (g *Graph) Node(name string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].Name == name {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// Targets lists the node names wired from output 0 of name.
func (g *Graph) Targets(name string) []string {
	conns, ok := g.Connections[name]
	if !ok || len(conns.Main) == 0 {
		return nil
	}
	out := make([]string, 0, len(conns.Main[0]))
	for _, t := range conns.Main[0] {
		out = append(out, t.Node)
	}
	return out
}

func (g *Graph) JSON() ([]byte, error) {
	return json.Marshal(g)
}
