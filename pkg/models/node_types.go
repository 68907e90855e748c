package models

// Trigger node types.
const (
	TriggerTypeManual   = "n8n-nodes-base.manualTrigger"
	TriggerTypeWebhook  = "n8n-nodes-base.webhook"
	TriggerTypeSchedule = "n8n-nodes-base.scheduleTrigger"
	TriggerTypeEmail    = "n8n-nodes-base.emailReadImap"
	TriggerTypeFile     = "n8n-nodes-base.localFileTrigger"
)

// Built-in node types.
const (
	NodeTypeStart      = "n8n-nodes-base.start"
	NodeTypeStickyNote = "n8n-nodes-base.stickyNote"

	// Logic nodes
	NodeTypeIf       = "n8n-nodes-base.if"
	NodeTypeSwitch   = "n8n-nodes-base.switch"
	NodeTypeMerge    = "n8n-nodes-base.merge"
	NodeTypeSet      = "n8n-nodes-base.set"
	NodeTypeFunction = "n8n-nodes-base.function"

	// Action nodes
	NodeTypeHTTPRequest     = "n8n-nodes-base.httpRequest"
	NodeTypeEmailSend       = "n8n-nodes-base.emailSend"
	NodeTypeGmail           = "n8n-nodes-base.gmail"
	NodeTypeSlack           = "n8n-nodes-base.slack"
	NodeTypeGoogleSheets    = "n8n-nodes-base.googleSheets"
	NodeTypeWebhookResponse = "n8n-nodes-base.webhookResponse"
)

// ConnectionTypeMain is the generic flow port type.
const ConnectionTypeMain = "main"

// TriggerTypes lists the known trigger node types.
func TriggerTypes() []string {
	return []string{
		TriggerTypeManual,
		TriggerTypeWebhook,
		TriggerTypeSchedule,
		TriggerTypeEmail,
		TriggerTypeFile,
	}
}

// NodeTypes lists the known non-trigger node types.
func NodeTypes() []string {
	return []string{
		NodeTypeStart,
		NodeTypeIf,
		NodeTypeSwitch,
		NodeTypeMerge,
		NodeTypeSet,
		NodeTypeFunction,
		NodeTypeHTTPRequest,
		NodeTypeEmailSend,
		NodeTypeGmail,
		NodeTypeSlack,
		NodeTypeGoogleSheets,
		NodeTypeWebhookResponse,
		NodeTypeStickyNote,
	}
}
