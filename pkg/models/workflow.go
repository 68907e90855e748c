// Package models defines the n8n workflow document produced by the generator.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/n8ngen/pkg/ids"
	"github.com/go-playground/validator/v10"
)

// DefaultWorkflowName names documents whose name is missing or blank.
const DefaultWorkflowName = "LLM Generated Workflow"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Workflow is an n8n workflow document: a list of nodes and the connections between them.
type Workflow struct {
	Name        string         `json:"name"        validate:"required"`
	Nodes       []*Node        `json:"nodes"       validate:"required,min=1,dive,required"`
	Connections Connections    `json:"connections" validate:"required,dive,min=1,dive,min=1,dive,min=1,dive"`
	Active      bool           `json:"active"`
	Settings    map[string]any `json:"settings"    validate:"required"`
	VersionID   string         `json:"versionId"   validate:"required,uuid"`
	CreatedAt   string         `json:"createdAt"   validate:"required"`
	UpdatedAt   string         `json:"updatedAt"   validate:"required"`

	// Extra holds top-level fields the generator does not interpret (tags, meta, pinData, ...).
	Extra map[string]any `json:"-"`
}

// Connections maps a source node name to its output ports.
type Connections map[string]OutputPortMap

// OutputPortMap maps an output port name ("main", "true", "false", ...) to its target groups.
type OutputPortMap map[string]TargetGroupList

// TargetGroupList is the ordered list of target groups of one output port.
type TargetGroupList []TargetGroup

// TargetGroup is an ordered list of connection targets.
type TargetGroup []Target

// Target references a destination node input by name, port type and slot index.
type Target struct {
	Node  string `json:"node"  validate:"required"`
	Type  string `json:"type"  validate:"required"`
	Index int    `json:"index"`
}

// MarshalJSON emits the known fields in n8n order followed by Extra.
func (w Workflow) MarshalJSON() ([]byte, error) {
	type workflow Workflow

	base, err := json.Marshal(workflow(w))
	if err != nil {
		return nil, err
	}

	return appendExtra(base, w.Extra)
}

// NodeNames returns the set of node names in the document.
func (w *Workflow) NodeNames() map[string]struct{} {
	names := make(map[string]struct{}, len(w.Nodes))
	for _, node := range w.Nodes {
		names[node.Name] = struct{}{}
	}

	return names
}

// Check verifies every structural invariant of a repaired document.
func (w *Workflow) Check() error {
	if w == nil {
		return errors.New("workflow is nil")
	}

	var errs []error

	if err := validate.Struct(w); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(w.Name) == "" {
		errs = append(errs, errors.New("workflow name is blank"))
	}

	if !ids.IsTimestamp(w.CreatedAt) {
		errs = append(errs, fmt.Errorf("createdAt %q is not an ISO-8601 timestamp", w.CreatedAt))
	}

	if !ids.IsTimestamp(w.UpdatedAt) {
		errs = append(errs, fmt.Errorf("updatedAt %q is not an ISO-8601 timestamp", w.UpdatedAt))
	}

	names := make(map[string]struct{}, len(w.Nodes))

	for i, node := range w.Nodes {
		if node == nil {
			continue
		}

		if _, dup := names[node.Name]; dup {
			errs = append(errs, fmt.Errorf("node %d: duplicate name %q", i, node.Name))
		}

		names[node.Name] = struct{}{}
	}

	for source, ports := range w.Connections {
		if _, ok := names[source]; !ok {
			errs = append(errs, fmt.Errorf("connection source %q is not a node", source))
		}

		for port, groups := range ports {
			for _, group := range groups {
				for _, target := range group {
					if _, ok := names[target.Node]; !ok {
						errs = append(errs, fmt.Errorf("connection %s.%s targets unknown node %q", source, port, target.Node))
					}

					if strings.TrimSpace(target.Type) == "" {
						errs = append(errs, fmt.Errorf("connection %s.%s has a blank target type", source, port))
					}
				}
			}
		}
	}

	return errors.Join(errs...)
}

// Raw converts the document to a decoded-JSON value tree (maps, slices and scalars).
func (w *Workflow) Raw() map[string]any {
	raw := make(map[string]any, 8+len(w.Extra))
	for k, v := range w.Extra {
		raw[k] = v
	}

	nodes := make([]any, 0, len(w.Nodes))
	for _, node := range w.Nodes {
		nodes = append(nodes, node.Raw())
	}

	connections := make(map[string]any, len(w.Connections))

	for source, ports := range w.Connections {
		rawPorts := make(map[string]any, len(ports))

		for port, groups := range ports {
			rawGroups := make([]any, 0, len(groups))

			for _, group := range groups {
				rawGroup := make([]any, 0, len(group))
				for _, target := range group {
					rawGroup = append(rawGroup, map[string]any{
						"node":  target.Node,
						"type":  target.Type,
						"index": target.Index,
					})
				}

				rawGroups = append(rawGroups, rawGroup)
			}

			rawPorts[port] = rawGroups
		}

		connections[source] = rawPorts
	}

	raw["name"] = w.Name
	raw["nodes"] = nodes
	raw["connections"] = connections
	raw["active"] = w.Active
	raw["settings"] = w.Settings
	raw["versionId"] = w.VersionID
	raw["createdAt"] = w.CreatedAt
	raw["updatedAt"] = w.UpdatedAt

	return raw
}

func appendExtra(base []byte, extra map[string]any) ([]byte, error) {
	if len(extra) == 0 {
		return base, nil
	}

	more, err := json.Marshal(extra)
	if err != nil {
		return nil, err
	}

	if len(more) <= 2 {
		return base, nil
	}

	out := make([]byte, 0, len(base)+len(more))
	out = append(out, base[:len(base)-1]...)

	if len(base) > 2 {
		out = append(out, ',')
	}

	return append(out, more[1:]...), nil
}
