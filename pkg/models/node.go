package models

import "encoding/json"

// Node is one configured unit of behavior within a workflow.
type Node struct {
	Parameters  map[string]any `json:"parameters"  validate:"required"`
	ID          string         `json:"id"          validate:"required,uuid"`
	Name        string         `json:"name"        validate:"required"`
	Type        string         `json:"type"        validate:"required"`
	TypeVersion int            `json:"typeVersion"`
	Position    Position       `json:"position"`

	// Extra holds node fields the generator does not interpret (credentials, webhookId, disabled, ...).
	Extra map[string]any `json:"-"`
}

// Position is the [x, y] placement of a node in the n8n editor.
type Position [2]float64

// DefaultPosition fans nodes out by index: x grows by a fixed stride, y alternates between two bands.
func DefaultPosition(index int) Position {
	return Position{float64(250 + index*200), float64(300 + (index%2)*100)}
}

// MarshalJSON emits the known fields in n8n order followed by Extra.
func (n Node) MarshalJSON() ([]byte, error) {
	type node Node

	base, err := json.Marshal(node(n))
	if err != nil {
		return nil, err
	}

	return appendExtra(base, n.Extra)
}

// Raw converts the node to a decoded-JSON value tree.
func (n *Node) Raw() map[string]any {
	raw := make(map[string]any, 6+len(n.Extra))
	for k, v := range n.Extra {
		raw[k] = v
	}

	raw["parameters"] = n.Parameters
	raw["id"] = n.ID
	raw["name"] = n.Name
	raw["type"] = n.Type
	raw["typeVersion"] = n.TypeVersion
	raw["position"] = []any{n.Position[0], n.Position[1]}

	return raw
}
