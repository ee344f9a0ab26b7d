package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SnapshotStore is the part of the Store the reconciler depends on.
type SnapshotStore interface {
	Snapshot() Snapshot
	ApplyMerge(ctx context.Context, plan MergePlan, decisions []Decision) (MergeReport, error)
}

// ReconcilerOptions configures the Reconciler. Store and Catalog are required.
type ReconcilerOptions struct {
	Store     SnapshotStore
	Catalog   *Catalog
	Tabs      TabMapping
	Policy    UnplacedPolicy
	Telemetry Telemetry
	Clock     func() time.Time
}

// SessionInfo describes an open add-widget session.
type SessionInfo struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	ActiveTab  string    `json:"active_tab"`
	OpenedAt   time.Time `json:"opened_at"`
}

// TabEntry is a row of the add-widget list. An empty CategoryID means the
// widget has no home category yet.
type TabEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id,omitempty"`
	Checked    bool   `json:"checked"`
}

// ModalState is the outbound view of the add-widget modal.
type ModalState struct {
	Open       bool       `json:"open"`
	SessionID  string     `json:"session_id,omitempty"`
	CategoryID string     `json:"category_id,omitempty"`
	ActiveTab  string     `json:"active_tab,omitempty"`
	Tabs       []string   `json:"tabs"`
	Entries    []TabEntry `json:"entries,omitempty"`
	SearchTerm string     `json:"search_term,omitempty"`
}

type session struct {
	info      SessionInfo
	selection *SelectionMap
}

// Reconciler owns the transient Selection Map of the add-widget modal and
// merges it back into the Store on confirm.
type Reconciler struct {
	mu         sync.Mutex
	store      SnapshotStore
	catalog    *Catalog
	tabs       TabMapping
	merger     Merger
	telemetry  Telemetry
	clock      func() time.Time
	session    *session
	searchTerm string
}

// NewReconciler validates options and builds a Reconciler.
func NewReconciler(opts ReconcilerOptions) (*Reconciler, error) {
	if opts.Store == nil {
		return nil, errMissingStore
	}
	if opts.Catalog == nil {
		return nil, errMissingCatalog
	}
	for _, tab := range opts.Tabs.Tabs() {
		if !opts.Catalog.HasTab(tab) {
			return nil, fmt.Errorf("dashboard: tab %s is bound but has no catalog entry: %w", tab, ErrUnknownTab)
		}
	}
	if opts.Policy == "" {
		opts.Policy = PolicyDrop
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Reconciler{
		store:     opts.Store,
		catalog:   opts.Catalog,
		tabs:      opts.Tabs,
		merger:    Merger{Catalog: opts.Catalog, Tabs: opts.Tabs, Policy: opts.Policy},
		telemetry: normalizeTelemetry(opts.Telemetry),
		clock:     opts.Clock,
	}, nil
}

// Open starts (or restarts) a session for a category. Any in-progress
// selection is discarded and rebuilt from the current Store state.
func (r *Reconciler) Open(ctx context.Context, categoryID string) SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := r.store.Snapshot()
	info := SessionInfo{
		ID:         uuid.NewString(),
		CategoryID: categoryID,
		ActiveTab:  r.resolveTab(categoryID),
		OpenedAt:   r.clock(),
	}
	r.session = &session{
		info:      info,
		selection: buildSelection(snapshot, r.catalog),
	}
	r.telemetry.Record(ctx, "dashboard.selection.open", map[string]any{
		"session_id":  info.ID,
		"category_id": categoryID,
		"tab":         info.ActiveTab,
		"entries":     r.session.selection.Len(),
	})
	return info
}

func (r *Reconciler) resolveTab(categoryID string) string {
	if tab, ok := r.tabs.TabFor(categoryID); ok {
		return tab
	}
	if categoryID != "" {
		for _, tab := range r.catalog.Tabs() {
			if !r.tabs.HasTab(tab) && DerivedCategoryID(tab) == categoryID {
				return tab
			}
		}
	}
	if def := r.tabs.DefaultTab(); def != "" {
		return def
	}
	if tabs := r.catalog.Tabs(); len(tabs) > 0 {
		return tabs[0]
	}
	return ""
}

// SetActiveTab switches the visible tab without touching the selection.
func (r *Reconciler) SetActiveTab(tab string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return ErrNoSession
	}
	if !r.catalog.HasTab(tab) {
		return fmt.Errorf("%w: %s", ErrUnknownTab, tab)
	}
	r.session.info.ActiveTab = tab
	return nil
}

// ActiveTab returns the tab shown in the open session, or "" when closed.
func (r *Reconciler) ActiveTab() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return ""
	}
	return r.session.info.ActiveTab
}

// IsOpen reports whether a session is in progress.
func (r *Reconciler) IsOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil
}

// Selection returns a copy of the in-progress selection, or nil when closed.
func (r *Reconciler) Selection() map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return nil
	}
	return r.session.selection.Values()
}

// ListForTab returns the widgets offered under a tab: live widgets of the
// tab's category first, then catalog templates not already listed.
func (r *Reconciler) ListForTab(tab string) []TabEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listForTab(r.store.Snapshot(), tab)
}

func (r *Reconciler) listForTab(snapshot Snapshot, tab string) []TabEntry {
	if !r.catalog.HasTab(tab) && !r.tabs.HasTab(tab) {
		return nil
	}
	categoryID := r.tabs.placementCategory(tab)
	category, found := snapshot.Category(categoryID)
	if !found {
		categoryID = ""
	}

	var selection *SelectionMap
	if r.session != nil {
		selection = r.session.selection
	}
	checked := func(id string, live bool) bool {
		if v, ok := selection.Checked(id); ok {
			return v
		}
		return live
	}

	entries := make([]TabEntry, 0, len(category.Widgets)+len(r.catalog.Templates(tab)))
	listed := make(map[string]struct{}, cap(entries))
	for _, w := range category.Widgets {
		listed[w.ID] = struct{}{}
		entries = append(entries, TabEntry{ID: w.ID, Name: w.Name, CategoryID: categoryID, Checked: checked(w.ID, w.Active)})
	}
	for _, w := range r.catalog.Templates(tab) {
		if _, ok := listed[w.ID]; ok {
			continue
		}
		listed[w.ID] = struct{}{}
		entries = append(entries, TabEntry{ID: w.ID, Name: w.Name, CategoryID: categoryID, Checked: checked(w.ID, false)})
	}
	return entries
}

// Toggle records the desired checked state of a widget. The Store is not
// touched until Confirm.
func (r *Reconciler) Toggle(widgetID string, checked bool) error {
	if widgetID == "" {
		return ErrInvalidWidgetID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return ErrNoSession
	}
	r.session.selection.Set(widgetID, checked)
	return nil
}

// Cancel discards the session without touching the Store.
func (r *Reconciler) Cancel(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return
	}
	r.telemetry.Record(ctx, "dashboard.selection.cancel", map[string]any{
		"session_id": r.session.info.ID,
	})
	r.session = nil
}

// Confirm merges the selection into the Store and closes the session. When the
// merge is rejected the Store is unchanged and the session stays open.
func (r *Reconciler) Confirm(ctx context.Context) (MergeReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return MergeReport{}, ErrNoSession
	}
	sessionID := r.session.info.ID
	report, err := r.store.ApplyMerge(ctx, r.merger, r.session.selection.Decisions())
	if err != nil {
		return MergeReport{}, err
	}
	for _, warning := range report.Warnings {
		r.telemetry.Record(ctx, "dashboard.selection.warning", map[string]any{
			"session_id":  sessionID,
			"kind":        string(warning.Kind),
			"widget_id":   warning.WidgetID,
			"tab":         warning.Tab,
			"category_id": warning.CategoryID,
		})
	}
	r.telemetry.Record(ctx, "dashboard.selection.confirm", map[string]any{
		"session_id": sessionID,
		"version":    report.Version,
		"changed":    report.Changed(),
	})
	r.session = nil
	return report, nil
}

// Search stores the free-text search term. It does not filter any list.
func (r *Reconciler) Search(term string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searchTerm = term
}

// SearchTerm returns the last search term.
func (r *Reconciler) SearchTerm() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.searchTerm
}

// State returns the outbound modal snapshot, including the active tab list.
func (r *Reconciler) State() ModalState {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := ModalState{
		Tabs:       r.catalog.Tabs(),
		SearchTerm: r.searchTerm,
	}
	if r.session == nil {
		return state
	}
	state.Open = true
	state.SessionID = r.session.info.ID
	state.CategoryID = r.session.info.CategoryID
	state.ActiveTab = r.session.info.ActiveTab
	state.Entries = r.listForTab(r.store.Snapshot(), state.ActiveTab)
	return state
}

// TabDisplayName returns the catalog label of a tab, falling back to the key.
func (r *Reconciler) TabDisplayName(tab string) string {
	if name := r.catalog.displayName(tab); name != "" {
		return name
	}
	return tab
}
