// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"encoding/json"

	"github.com/dukex/n8ngen/pkg/ids"
	"github.com/dukex/n8ngen/pkg/models"
)

// CreateTestNode creates a test Node with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.Node)) *models.Node {
	node := &models.Node{
		Parameters:  map[string]any{},
		ID:          ids.NewID(),
		Name:        "Start",
		Type:        models.NodeTypeStart,
		TypeVersion: 1,
		Position:    models.DefaultPosition(0),
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithName sets the node name.
func WithName(name string) func(*models.Node) {
	return func(n *models.Node) {
		n.Name = name
	}
}

// WithType sets the node type.
func WithType(nodeType string) func(*models.Node) {
	return func(n *models.Node) {
		n.Type = nodeType
	}
}

// WithParameters sets the node parameters.
func WithParameters(parameters map[string]any) func(*models.Node) {
	return func(n *models.Node) {
		n.Parameters = parameters
	}
}

// WithPosition sets the node position.
func WithPosition(x, y float64) func(*models.Node) {
	return func(n *models.Node) {
		n.Position = models.Position{x, y}
	}
}

// CreateTestWorkflow creates a valid single-node workflow.
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	now := ids.Now()

	workflow := &models.Workflow{
		Name:        "Test Workflow",
		Nodes:       []*models.Node{CreateTestNode()},
		Connections: models.Connections{},
		Settings:    map[string]any{},
		VersionID:   ids.NewID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// CreateTestWorkflowWithNodes creates a webhook -> slack workflow.
func CreateTestWorkflowWithNodes() *models.Workflow {
	return CreateTestWorkflow(func(w *models.Workflow) {
		w.Name = "Webhook to Slack"
		w.Nodes = []*models.Node{
			CreateTestNode(WithName("Webhook"), WithType(models.TriggerTypeWebhook),
				WithParameters(map[string]any{"path": "incoming", "httpMethod": "POST"})),
			CreateTestNode(WithName("Slack"), WithType(models.NodeTypeSlack), WithPosition(450, 400),
				WithParameters(map[string]any{"channel": "#alerts", "text": "={{$json.body}}"})),
		}
		w.Connections = models.Connections{
			"Webhook": models.OutputPortMap{
				models.ConnectionTypeMain: models.TargetGroupList{
					{{Node: "Slack", Type: models.ConnectionTypeMain, Index: 0}},
				},
			},
		}
	})
}

// ToJSON marshals v, panicking on failure.
func ToJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return string(data)
}
