package queries

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

type stubController struct {
	calls int
}

func (s *stubController) LayoutPayload(context.Context) (dashboard.LayoutPayload, error) {
	s.calls++
	return dashboard.LayoutPayload{Title: "CNAPP Dashboard"}, nil
}

func TestLayoutQuery(t *testing.T) {
	controller := &stubController{}
	query := NewLayoutQuery(controller)
	payload, err := query.Query(context.Background(), LayoutInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if controller.calls != 1 || payload.Title != "CNAPP Dashboard" {
		t.Fatalf("expected 1 call, got %d", controller.calls)
	}
}

func TestStoreQueries(t *testing.T) {
	editor, err := dashboard.NewEditor(nil, dashboard.EditorOptions{})
	if err != nil {
		t.Fatalf("NewEditor returned error: %v", err)
	}
	snapshot, err := NewSnapshotQuery(editor.Store).Query(context.Background(), SnapshotInput{})
	if err != nil {
		t.Fatalf("snapshot query returned error: %v", err)
	}
	if len(snapshot.Categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(snapshot.Categories))
	}
	visible := NewVisibleWidgetsQuery(editor.Store)
	widgets, err := visible.Query(context.Background(), VisibleWidgetsInput{CategoryID: "cwpp"})
	if err != nil || len(widgets) != 2 {
		t.Fatalf("expected 2 cwpp widgets, got %d (%v)", len(widgets), err)
	}
	widgets, err = visible.Query(context.Background(), VisibleWidgetsInput{CategoryID: "ticket"})
	if err != nil || widgets == nil || len(widgets) != 0 {
		t.Fatalf("expected empty list for missing category, got %v (%v)", widgets, err)
	}
}

func TestModalQueries(t *testing.T) {
	editor, err := dashboard.NewEditor(nil, dashboard.EditorOptions{})
	if err != nil {
		t.Fatalf("NewEditor returned error: %v", err)
	}
	editor.Reconciler.Open(context.Background(), "registry")
	state, err := NewModalStateQuery(editor.Reconciler).Query(context.Background(), ModalStateInput{})
	if err != nil {
		t.Fatalf("modal query returned error: %v", err)
	}
	if !state.Open || state.ActiveTab != dashboard.TabImage {
		t.Fatalf("unexpected modal state %+v", state)
	}
	tabs := NewTabEntriesQuery(editor.Reconciler)
	entries, err := tabs.Query(context.Background(), TabEntriesInput{Tab: dashboard.TabTicket})
	if err != nil || len(entries) != 2 {
		t.Fatalf("expected 2 ticket entries, got %d (%v)", len(entries), err)
	}
	if _, err := tabs.Query(context.Background(), TabEntriesInput{Tab: "Nope"}); !errors.Is(err, dashboard.ErrUnknownTab) {
		t.Fatalf("expected ErrUnknownTab, got %v", err)
	}
}
