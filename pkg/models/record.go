package models

import "time"

// Record is one archived generation: the request, its outcome and the document returned.
type Record struct {
	ID           string    `json:"id"`
	Prompt       string    `json:"prompt"`
	Status       string    `json:"status"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Provider     string    `json:"provider,omitempty"`
	Workflow     *Workflow `json:"workflow"`
	ExportPath   string    `json:"export_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
