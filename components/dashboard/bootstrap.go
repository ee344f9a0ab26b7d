package dashboard

import (
	"fmt"
)

// EditorOptions configures NewEditor. Every collaborator is optional.
type EditorOptions struct {
	RefreshHook RefreshHook
	Telemetry   Telemetry
	// Policy overrides the document's unplaced policy when set.
	Policy UnplacedPolicy
}

// Editor bundles the Store and Reconciler built from one document.
type Editor struct {
	Store      *Store
	Reconciler *Reconciler
	Catalog    *Catalog
	Tabs       TabMapping
	Policy     UnplacedPolicy
}

// NewEditor validates the document and wires Store + Reconciler. A nil
// document uses DefaultDocument().
func NewEditor(doc *DashboardDocument, opts EditorOptions) (*Editor, error) {
	if doc == nil {
		doc = DefaultDocument()
	}
	cfg, err := doc.Build()
	if err != nil {
		return nil, fmt.Errorf("dashboard: build editor: %w", err)
	}
	if opts.Policy != "" {
		cfg.Policy = opts.Policy
	}
	store, err := NewStore(cfg.Categories,
		WithRefreshHook(opts.RefreshHook),
		WithStoreTelemetry(opts.Telemetry),
	)
	if err != nil {
		return nil, err
	}
	reconciler, err := NewReconciler(ReconcilerOptions{
		Store:     store,
		Catalog:   cfg.Catalog,
		Tabs:      cfg.Tabs,
		Policy:    cfg.Policy,
		Telemetry: opts.Telemetry,
	})
	if err != nil {
		return nil, err
	}
	return &Editor{
		Store:      store,
		Reconciler: reconciler,
		Catalog:    cfg.Catalog,
		Tabs:       cfg.Tabs,
		Policy:     cfg.Policy,
	}, nil
}
