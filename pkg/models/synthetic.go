package models

// Names and messages of the synthetic documents.
const (
	StartNodeName          = "Start"
	MissingTypeMessage     = "Error: Node type was missing or invalid."
	ErrorWorkflowName      = "Error Generating Workflow"
	ErrorNodeName          = "Error Node"
	MissingKeyWorkflowName = "Error - API Key Missing"
	MissingKeyNodeName     = "API Key Error"
)

// NewStartNode returns the default start node placed at the first layout slot.
func NewStartNode(id string) *Node {
	return &Node{
		Parameters:  map[string]any{},
		ID:          id,
		Name:        StartNodeName,
		Type:        NodeTypeStart,
		TypeVersion: 1,
		Position:    DefaultPosition(0),
	}
}

// NewNoteNode returns a sticky note node that shows message in the n8n editor.
func NewNoteNode(id, name, message string) *Node {
	return &Node{
		Parameters:  map[string]any{"message": message},
		ID:          id,
		Name:        name,
		Type:        NodeTypeStickyNote,
		TypeVersion: 1,
		Position:    DefaultPosition(0),
	}
}

// NewNoteWorkflow returns a single-note document. Identifiers and timestamps are
// left blank for the repair engine to fill in.
func NewNoteWorkflow(name, nodeName, message string) *Workflow {
	return &Workflow{
		Name:        name,
		Nodes:       []*Node{NewNoteNode("", nodeName, message)},
		Connections: Connections{},
		Settings:    map[string]any{},
	}
}
