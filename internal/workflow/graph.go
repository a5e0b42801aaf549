// Package workflow converts between the visual editor graph and the stored
// definition, evaluates conditions and runs automations.
package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"crmapi/internal/model"
)

// Node types of the editor graph.
const (
	NodeTrigger   = "trigger"
	NodeCondition = "condition"
	NodeAction    = "action"
)

// Layout spacing on the canvas.
const (
	nodeSpacingY = 120
	nodeX        = 250
)

// ErrInvalidGraph wraps every structural problem found by Compile.
var ErrInvalidGraph = errors.New("invalid workflow graph")

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one box on the editor canvas. Data holds a model.Trigger,
// model.Condition or model.Action depending on Type.
type Node struct {
	ID       string          `json:"id" validate:"required"`
	Type     string          `json:"type" validate:"required"`
	Position Position        `json:"position"`
	Data     json.RawMessage `json:"data"`
}

type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// Graph is the editor representation of a workflow.
type Graph struct {
	Nodes []Node `json:"nodes" validate:"dive"`
	Edges []Edge `json:"edges" validate:"dive"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidGraph, fmt.Sprintf(format, args...))
}

// Compile turns a graph into a definition. Conditions and actions are ordered
// top to bottom, then left to right, then by node id.
func Compile(g Graph) (*model.Definition, error) {
	var (
		triggers   []Node
		conditions []Node
		actions    []Node
	)
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return nil, invalid("node without id")
		}
		if ids[n.ID] {
			return nil, invalid("duplicate node id %q", n.ID)
		}
		ids[n.ID] = true
		switch n.Type {
		case NodeTrigger:
			triggers = append(triggers, n)
		case NodeCondition:
			conditions = append(conditions, n)
		case NodeAction:
			actions = append(actions, n)
		default:
			return nil, invalid("node %s: unknown type %q", n.ID, n.Type)
		}
	}
	if len(triggers) != 1 {
		return nil, invalid("graph must contain exactly one trigger node, found %d", len(triggers))
	}
	for _, e := range g.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			return nil, invalid("edge %s references an unknown node", e.ID)
		}
	}

	def := &model.Definition{
		Conditions: make([]model.Condition, 0, len(conditions)),
		Actions:    make([]model.Action, 0, len(actions)),
	}
	if err := decodeNode(triggers[0], &def.Trigger); err != nil {
		return nil, err
	}
	sortByPosition(conditions)
	for _, n := range conditions {
		var c model.Condition
		if err := decodeNode(n, &c); err != nil {
			return nil, err
		}
		def.Conditions = append(def.Conditions, c)
	}
	sortByPosition(actions)
	for _, n := range actions {
		var a model.Action
		if err := decodeNode(n, &a); err != nil {
			return nil, err
		}
		def.Actions = append(def.Actions, a)
	}
	return def, nil
}

func decodeNode(n Node, dst any) error {
	if len(n.Data) == 0 {
		return invalid("node %s: missing data", n.ID)
	}
	if err := json.Unmarshal(n.Data, dst); err != nil {
		return invalid("node %s: %v", n.ID, err)
	}
	return nil
}

func sortByPosition(nodes []Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.Position.Y != b.Position.Y {
			return a.Position.Y < b.Position.Y
		}
		if a.Position.X != b.Position.X {
			return a.Position.X < b.Position.X
		}
		return a.ID < b.ID
	})
}

// Layout renders a definition as a vertical chain:
// trigger, then conditions, then actions.
func Layout(def model.Definition) (Graph, error) {
	g := Graph{
		Nodes: make([]Node, 0, 1+len(def.Conditions)+len(def.Actions)),
		Edges: make([]Edge, 0, len(def.Conditions)+len(def.Actions)),
	}
	row := 0
	add := func(id, typ string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode node %s: %w", id, err)
		}
		if len(g.Nodes) > 0 {
			prev := g.Nodes[len(g.Nodes)-1].ID
			g.Edges = append(g.Edges, Edge{ID: "e-" + prev + "-" + id, Source: prev, Target: id})
		}
		g.Nodes = append(g.Nodes, Node{
			ID:       id,
			Type:     typ,
			Position: Position{X: nodeX, Y: float64(row * nodeSpacingY)},
			Data:     data,
		})
		row++
		return nil
	}

	if err := add(NodeTrigger, NodeTrigger, def.Trigger); err != nil {
		return Graph{}, err
	}
	for i, c := range def.Conditions {
		if err := add(fmt.Sprintf("condition-%d", i+1), NodeCondition, c); err != nil {
			return Graph{}, err
		}
	}
	for i, a := range def.Actions {
		if err := add(fmt.Sprintf("action-%d", i+1), NodeAction, a); err != nil {
			return Graph{}, err
		}
	}
	return g, nil
}
