package repair

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/dukex/n8ngen/pkg/models"
	"github.com/dukex/n8ngen/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixedNow = "2024-05-01T10:00:00.000Z"

func newTestEngine() *Engine {
	counter := 0

	return New(
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		WithIDGenerator(func() string {
			counter++

			return fmt.Sprintf("00000000-0000-4000-8000-%012d", counter)
		}),
		WithClock(func() string { return fixedNow }),
	)
}

func decode(t *testing.T, doc string) any {
	t.Helper()

	value, err := Decode([]byte(doc))
	require.NoError(t, err)

	return value
}

const validDoc = `{
	"name": "Send Slack alert",
	"nodes": [
		{
			"parameters": {},
			"id": "6f1c3a52-8a4e-4c1b-9a55-1f0f7a0b2c11",
			"name": "Webhook",
			"type": "n8n-nodes-base.webhook",
			"typeVersion": 1,
			"position": [250, 300],
			"webhookId": "abc"
		},
		{
			"parameters": {"channel": "#alerts", "text": "hi"},
			"id": "0d7b8e1a-3a3f-4b0c-8d62-2bb5f3e4a9c0",
			"name": "Slack",
			"type": "n8n-nodes-base.slack",
			"typeVersion": 2,
			"position": [450.5, 400]
		}
	],
	"connections": {
		"Webhook": {"main": [[{"node": "Slack", "type": "main", "index": 0}]]}
	},
	"active": false,
	"settings": {"executionOrder": "v1"},
	"versionId": "3a3b1f8e-6d2c-4f6b-9b3a-7c1d2e3f4a5b",
	"createdAt": "2024-04-01T08:00:00.000Z",
	"updatedAt": "2024-04-02T08:00:00Z",
	"tags": ["alerts"]
}`

func TestRepair_ValidDocumentPassesThrough(t *testing.T) {
	engine := newTestEngine()

	result := engine.Repair(decode(t, validDoc))

	require.NoError(t, result.Err)
	assert.Empty(t, result.Issues)
	require.NoError(t, result.Workflow.Check())

	out, err := json.Marshal(result.Workflow)
	require.NoError(t, err)
	assert.JSONEq(t, validDoc, string(out))
}

func TestRepair_Idempotent(t *testing.T) {
	inputs := []string{
		validDoc,
		`{}`,
		`{"nodes": [{"name": "A"}, {"name": "A"}, {}, {"name": "A_1"}]}`,
		`{"nodes": [{"name": "A", "type": "x"}], "connections": {"A": {"main": [[{"node": "Ghost", "type": "main", "index": 0}]]}}}`,
		`[1, 2, 3]`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			engine := newTestEngine()

			first := engine.Repair(decode(t, input))
			require.NoError(t, first.Workflow.Check())

			second := engine.Repair(first.Workflow.Raw())
			require.NoError(t, second.Err)
			assert.Empty(t, second.Issues)
			assert.Equal(t, first.Workflow, second.Workflow)
		})
	}
}

func TestRepair_CanonicalizesUUIDs(t *testing.T) {
	const canonical = "6f1c3a52-8a4e-4c1b-9a55-1f0f7a0b2c11"

	forms := map[string]string{
		"braced":     "{6f1c3a52-8a4e-4c1b-9a55-1f0f7a0b2c11}",
		"urn":        "urn:uuid:6f1c3a52-8a4e-4c1b-9a55-1f0f7a0b2c11",
		"bare hex":   "6f1c3a528a4e4c1b9a551f0f7a0b2c11",
		"upper case": "6F1C3A52-8A4E-4C1B-9A55-1F0F7A0B2C11",
	}

	for name, form := range forms {
		t.Run(name, func(t *testing.T) {
			engine := newTestEngine()

			doc := fmt.Sprintf(`{"name": "W", "versionId": %q, "nodes": [{"id": %q, "name": "A", "type": "n8n-nodes-base.set"}]}`, form, form)

			result := engine.Repair(decode(t, doc))
			require.NoError(t, result.Err)

			assert.Equal(t, canonical, result.Workflow.VersionID)
			assert.Equal(t, canonical, result.Workflow.Nodes[0].ID)
			assert.Contains(t, result.Issues, Issue{Path: "versionId", Message: "UUID rewritten in canonical form"})
			assert.NoError(t, result.Workflow.Check())
			assert.NoError(t, schema.Validate(result.Workflow))

			again := engine.Repair(result.Workflow.Raw())
			assert.Empty(t, again.Issues)
		})
	}
}

func TestRepair_NonObjectInputs(t *testing.T) {
	inputs := map[string]any{
		"array":  []any{json.Number("1"), json.Number("2"), json.Number("3")},
		"string": "hello",
		"null":   nil,
		"number": json.Number("42"),
		"bool":   true,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			result := newTestEngine().Repair(input)

			require.ErrorIs(t, result.Err, ErrNotObject)
			require.NoError(t, result.Workflow.Check())
			assert.Equal(t, models.DefaultWorkflowName, result.Workflow.Name)
			require.Len(t, result.Workflow.Nodes, 1)
			assert.Equal(t, models.StartNodeName, result.Workflow.Nodes[0].Name)
			assert.Equal(t, models.NodeTypeStart, result.Workflow.Nodes[0].Type)
			assert.Equal(t, models.Position{250, 300}, result.Workflow.Nodes[0].Position)
			assert.Empty(t, result.Workflow.Connections)
		})
	}
}

func TestRepair_NodeNotObject(t *testing.T) {
	result := newTestEngine().Repair(decode(t, `{"name": "x", "nodes": [{"name": "A"}, 7]}`))

	require.ErrorIs(t, result.Err, ErrNodeNotObject)
	assert.Contains(t, result.Err.Error(), "index 1")
	require.NoError(t, result.Workflow.Check())
	assert.Equal(t, models.StartNodeName, result.Workflow.Nodes[0].Name)
}

func TestRepair_EmptyDocument(t *testing.T) {
	result := newTestEngine().Repair(decode(t, `{}`))

	require.NoError(t, result.Err)
	require.NoError(t, result.Workflow.Check())

	w := result.Workflow
	assert.Equal(t, models.DefaultWorkflowName, w.Name)
	assert.False(t, w.Active)
	assert.Equal(t, map[string]any{}, w.Settings)
	assert.Equal(t, fixedNow, w.CreatedAt)
	assert.Equal(t, fixedNow, w.UpdatedAt)
	require.Len(t, w.Nodes, 1)
	assert.Equal(t, models.StartNodeName, w.Nodes[0].Name)
	assert.Equal(t, models.NodeTypeStart, w.Nodes[0].Type)
	assert.Equal(t, 1, w.Nodes[0].TypeVersion)
	assert.Empty(t, w.Connections)
	assert.NotEmpty(t, result.Issues)
}

func TestRepair_EmptyNodesList(t *testing.T) {
	result := newTestEngine().Repair(decode(t, `{"name": "Empty", "nodes": []}`))

	require.NoError(t, result.Err)
	assert.Equal(t, "Empty", result.Workflow.Name)
	require.Len(t, result.Workflow.Nodes, 1)
	assert.Equal(t, models.StartNodeName, result.Workflow.Nodes[0].Name)
}

func TestRepair_NodeDefaults(t *testing.T) {
	result := newTestEngine().Repair(decode(t, `{"nodes": [
		{"name": "First", "type": "n8n-nodes-base.set", "typeVersion": 3, "position": [0, 0]},
		{"name": "  ", "type": "", "typeVersion": "2", "position": [1], "id": "not-a-uuid", "parameters": []},
		{"type": true, "typeVersion": 1.5, "position": [true, 3], "parameters": {"message": "keep me"}},
		{"typeVersion": false, "parameters": {"a": 1}}
	]}`))

	require.NoError(t, result.Err)
	require.NoError(t, result.Workflow.Check())

	nodes := result.Workflow.Nodes
	require.Len(t, nodes, 4)

	assert.Equal(t, "First", nodes[0].Name)
	assert.Equal(t, 3, nodes[0].TypeVersion)
	assert.Equal(t, models.Position{0, 0}, nodes[0].Position)

	assert.Equal(t, "Unnamed Node 2", nodes[1].Name)
	assert.Equal(t, models.NodeTypeStickyNote, nodes[1].Type)
	assert.Equal(t, 1, nodes[1].TypeVersion)
	assert.Equal(t, models.Position{450, 400}, nodes[1].Position)
	assert.NotEqual(t, "not-a-uuid", nodes[1].ID)
	assert.Equal(t, map[string]any{"message": models.MissingTypeMessage}, nodes[1].Parameters)

	assert.Equal(t, "Unnamed Node 3", nodes[2].Name)
	assert.Equal(t, models.NodeTypeStickyNote, nodes[2].Type)
	assert.Equal(t, 1, nodes[2].TypeVersion)
	assert.Equal(t, models.Position{650, 300}, nodes[2].Position)
	assert.Equal(t, "keep me", nodes[2].Parameters["message"])

	assert.Equal(t, 1, nodes[3].TypeVersion)
	assert.Equal(t, models.Position{850, 400}, nodes[3].Position)
	assert.Equal(t, json.Number("1"), nodes[3].Parameters["a"])
	assert.Equal(t, models.MissingTypeMessage, nodes[3].Parameters["message"])
}

func TestRepair_MissingTypeDoesNotMutateInput(t *testing.T) {
	params := map[string]any{"a": "b"}
	input := map[string]any{"nodes": []any{map[string]any{"name": "A", "parameters": params}}}

	result := newTestEngine().Repair(input)

	assert.Equal(t, map[string]any{"a": "b"}, params)
	assert.Equal(t, models.MissingTypeMessage, result.Workflow.Nodes[0].Parameters["message"])
}

func TestRepair_DuplicateNames(t *testing.T) {
	result := newTestEngine().Repair(decode(t, `{"nodes": [
		{"name": "A", "type": "x"},
		{"name": "A", "type": "x"},
		{"name": "A", "type": "x"}
	]}`))

	require.NoError(t, result.Err)

	var names []string
	for _, node := range result.Workflow.Nodes {
		names = append(names, node.Name)
	}

	assert.Equal(t, []string{"A", "A_1", "A_2"}, names)
}

func TestRepair_DuplicateNameCollidesWithLaterNode(t *testing.T) {
	result := newTestEngine().Repair(decode(t, `{"nodes": [
		{"name": "A", "type": "x"},
		{"name": "A", "type": "x"},
		{"name": "A_1", "type": "x"}
	]}`))

	var names []string
	for _, node := range result.Workflow.Nodes {
		names = append(names, node.Name)
	}

	assert.Equal(t, []string{"A", "A_1", "A_1_1"}, names)
	require.NoError(t, result.Workflow.Check())
}

func TestRepair_ConnectionPruning(t *testing.T) {
	result := newTestEngine().Repair(decode(t, `{
		"nodes": [
			{"name": "A", "type": "x"},
			{"name": "B", "type": "x"},
			{"name": "C", "type": "x"}
		],
		"connections": {
			"Ghost": {"main": [[{"node": "A", "type": "main", "index": 0}]]},
			"A": {
				"main": [
					[
						{"node": "B", "type": "main", "index": 0},
						{"node": "Ghost", "type": "main", "index": 0},
						{"node": "C", "type": "", "index": 0},
						{"node": "C", "type": "main", "index": "0"},
						{"node": "C", "type": "main", "index": true},
						"junk"
					],
					[{"node": "Ghost", "type": "main", "index": 0}],
					"not a group",
					[{"node": "C", "type": "main", "index": 1}]
				],
				"true": [[{"node": "Ghost", "type": "main", "index": 0}]],
				"false": "nope"
			},
			"B": {"main": [[{"node": "Nope", "type": "main", "index": 0}]]},
			"C": "not ports"
		}
	}`))

	require.NoError(t, result.Err)
	require.NoError(t, result.Workflow.Check())

	expected := models.Connections{
		"A": models.OutputPortMap{
			"main": models.TargetGroupList{
				{{Node: "B", Type: "main", Index: 0}},
				{{Node: "C", Type: "main", Index: 1}},
			},
		},
	}
	assert.Equal(t, expected, result.Workflow.Connections)
	assert.NotEmpty(t, result.Issues)
}

func TestRepair_ConnectionsNotObject(t *testing.T) {
	result := newTestEngine().Repair(decode(t, `{"nodes": [{"name": "A", "type": "x"}], "connections": []}`))

	assert.Equal(t, models.Connections{}, result.Workflow.Connections)
	assert.Contains(t, result.Issues, Issue{Path: "connections", Message: "not an object, defaulting to {}"})
}

func TestRepair_ConnectionsUseRenamedNodes(t *testing.T) {
	result := newTestEngine().Repair(decode(t, `{
		"nodes": [{"name": "A", "type": "x"}, {"name": "A", "type": "x"}],
		"connections": {"A": {"main": [[{"node": "A_1", "type": "main", "index": 0}]]}}
	}`))

	assert.Equal(t, "A_1", result.Workflow.Nodes[1].Name)
	require.Contains(t, result.Workflow.Connections, "A")
	assert.Equal(t, "A_1", result.Workflow.Connections["A"]["main"][0][0].Node)
}

func TestRepair_ScalarDefaults(t *testing.T) {
	result := newTestEngine().Repair(decode(t, `{
		"name": "   ",
		"nodes": [{"name": "A", "type": "x"}],
		"active": "yes",
		"settings": [1],
		"versionId": "v1",
		"createdAt": "yesterday",
		"updatedAt": 5
	}`))

	w := result.Workflow
	assert.Equal(t, models.DefaultWorkflowName, w.Name)
	assert.False(t, w.Active)
	assert.Equal(t, map[string]any{}, w.Settings)
	assert.NotEqual(t, "v1", w.VersionID)
	assert.Equal(t, fixedNow, w.CreatedAt)
	assert.Equal(t, fixedNow, w.UpdatedAt)
	require.NoError(t, w.Check())

	paths := make(map[string]bool)
	for _, issue := range result.Issues {
		paths[issue.Path] = true
	}

	for _, path := range []string{"name", "active", "settings", "versionId", "createdAt", "updatedAt"} {
		assert.True(t, paths[path], path)
	}
}

func TestRepair_ActivePreserved(t *testing.T) {
	result := newTestEngine().Repair(decode(t, `{"active": true}`))

	assert.True(t, result.Workflow.Active)
}

func TestRepair_FallbackName(t *testing.T) {
	engine := New(WithFallbackName("Imported"))

	result := engine.Repair(map[string]any{})

	assert.Equal(t, "Imported", result.Workflow.Name)
}

func TestRepair_FloatNumbers(t *testing.T) {
	input := map[string]any{
		"nodes": []any{
			map[string]any{"name": "A", "type": "x", "typeVersion": float64(2), "position": []any{float64(10), 20}},
			map[string]any{"name": "B", "type": "x", "typeVersion": 2.5},
		},
		"connections": map[string]any{
			"A": map[string]any{"main": []any{[]any{map[string]any{"node": "B", "type": "main", "index": float64(0)}}}},
		},
	}

	result := newTestEngine().Repair(input)

	assert.Equal(t, 2, result.Workflow.Nodes[0].TypeVersion)
	assert.Equal(t, models.Position{10, 20}, result.Workflow.Nodes[0].Position)
	assert.Equal(t, 1, result.Workflow.Nodes[1].TypeVersion)
	assert.Len(t, result.Workflow.Connections["A"]["main"], 1)
}

func TestRepair_LogsIssues(t *testing.T) {
	var buf bytes.Buffer

	engine := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	engine.Repair(map[string]any{"nodes": []any{map[string]any{"name": "A"}}})

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "path=nodes[0].type")
}

func TestDecode(t *testing.T) {
	value, err := Decode([]byte(`{"typeVersion": 1}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"typeVersion": json.Number("1")}, value)

	_, err = Decode([]byte(`{"a": 1} {"b": 2}`))
	require.ErrorIs(t, err, ErrTrailingData)

	_, err = Decode([]byte(`{"a":`))
	require.Error(t, err)

	_, err = Decode([]byte(``))
	require.Error(t, err)
}
