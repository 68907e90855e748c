package models

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Fields of the n8n document interpreted by this module. Everything else is carried in Extra.
var (
	WorkflowFields = []string{"name", "nodes", "connections", "active", "settings", "versionId", "createdAt", "updatedAt"}
	NodeFields     = []string{"parameters", "id", "name", "type", "typeVersion", "position"}
)

// UnmarshalJSON reads the known fields and keeps the rest in Extra.
func (w *Workflow) UnmarshalJSON(data []byte) error {
	type workflow Workflow

	var known workflow
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	extra, err := unknownFields(data, WorkflowFields)
	if err != nil {
		return err
	}

	known.Extra = extra
	*w = Workflow(known)

	return nil
}

// UnmarshalJSON reads the known fields and keeps the rest in Extra.
func (n *Node) UnmarshalJSON(data []byte) error {
	type node Node

	var known node
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	extra, err := unknownFields(data, NodeFields)
	if err != nil {
		return err
	}

	known.Extra = extra
	*n = Node(known)

	return nil
}

func unknownFields(data []byte, known []string) (map[string]any, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	var extra map[string]any

	for key, raw := range fields {
		if slices.Contains(known, key) {
			continue
		}

		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.UseNumber()

		var value any
		if err := decoder.Decode(&value); err != nil {
			return nil, err
		}

		if extra == nil {
			extra = make(map[string]any)
		}

		extra[key] = value
	}

	return extra, nil
}
