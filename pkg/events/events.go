// Package events defines the notifications published after each workflow generation.
package events

import (
	"time"

	"github.com/dukex/n8ngen/pkg/ids"
)

type EventType string

// Topic carries every generation event.
const Topic = "n8ngen.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowGeneratedEvent        EventType = "workflow.generated"
	WorkflowGenerationFailedEvent EventType = "workflow.generation_failed"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RecordID  string    `json:"record_id,omitempty"`
	Provider  string    `json:"provider,omitempty"`
}

func newBaseEvent(eventType EventType, recordID, provider string) BaseEvent {
	return BaseEvent{
		ID:        ids.NewID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		RecordID:  recordID,
		Provider:  provider,
	}
}

// WorkflowGenerated is published when the model produced a usable workflow.
type WorkflowGenerated struct {
	BaseEvent

	Prompt       string `json:"prompt"`
	WorkflowName string `json:"workflow_name"`
	NodeCount    int    `json:"node_count"`
	RepairIssues int    `json:"repair_issues"`
	ExportPath   string `json:"export_path,omitempty"`
}

func NewWorkflowGenerated(recordID, provider, prompt, workflowName string, nodeCount, repairIssues int) *WorkflowGenerated {
	return &WorkflowGenerated{
		BaseEvent:    newBaseEvent(WorkflowGeneratedEvent, recordID, provider),
		Prompt:       prompt,
		WorkflowName: workflowName,
		NodeCount:    nodeCount,
		RepairIssues: repairIssues,
	}
}

func (e WorkflowGenerated) GetType() EventType {
	return WorkflowGeneratedEvent
}

// WorkflowGenerationFailed is published when generation fell back to a synthetic note workflow.
type WorkflowGenerationFailed struct {
	BaseEvent

	Prompt       string `json:"prompt"`
	ErrorKind    string `json:"error_kind"`
	ErrorMessage string `json:"error_message"`
}

func NewWorkflowGenerationFailed(recordID, provider, prompt, errorKind, errorMessage string) *WorkflowGenerationFailed {
	return &WorkflowGenerationFailed{
		BaseEvent:    newBaseEvent(WorkflowGenerationFailedEvent, recordID, provider),
		Prompt:       prompt,
		ErrorKind:    errorKind,
		ErrorMessage: errorMessage,
	}
}

func (e WorkflowGenerationFailed) GetType() EventType {
	return WorkflowGenerationFailedEvent
}

// New returns an empty event of the given type for decoding, or nil when the type is unknown.
func New(eventType EventType) any {
	switch eventType {
	case WorkflowGeneratedEvent:
		return &WorkflowGenerated{}
	case WorkflowGenerationFailedEvent:
		return &WorkflowGenerationFailed{}
	default:
		return nil
	}
}
