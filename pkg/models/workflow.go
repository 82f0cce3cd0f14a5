// Package models defines the data shapes shared by the workflow backend, its
// REST client and the view models built on top of them.
package models

const (
	// Topic is the event topic that triggers a template refresh.
	Topic = "swf-refresh"

	// PluginID is the discovery identifier of the workflow backend.
	PluginID = "swf"

	// WorkflowType is the template type assigned to workflow templates.
	WorkflowType = "serverless-workflow"
)

// SwfItem is a single workflow definition as listed by the orchestration
// service. Definition holds the raw source and is empty in listings.
type SwfItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// SwfListResult is the paged listing returned by GET /items
type SwfListResult struct {
	Items      []SwfItem `json:"items"`
	Limit      int       `json:"limit"`
	Offset     int       `json:"offset"`
	TotalCount int       `json:"totalCount"`
}

// SwfSpecFile is an API specification file referenced by workflows
type SwfSpecFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}
