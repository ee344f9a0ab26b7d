package dashboard

import (
	core "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

// Editor exposes the underlying components/dashboard.Editor type.
type Editor = core.Editor

// EditorOptions re-export for convenience.
type EditorOptions = core.EditorOptions

// Document is the YAML configuration accepted by NewEditor.
type Document = core.DashboardDocument

// NewEditor proxies to the internal constructor.
func NewEditor(doc *Document, opts EditorOptions) (*Editor, error) {
	return core.NewEditor(doc, opts)
}

// ReadDocument proxies to the internal document loader.
func ReadDocument(path string) (*Document, error) {
	return core.ReadDocument(path)
}
