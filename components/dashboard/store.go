package dashboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithRefreshHook sets the hook notified after each committed merge.
func WithRefreshHook(hook RefreshHook) StoreOption {
	return func(s *Store) {
		if hook != nil {
			s.hook = hook
		}
	}
}

// WithStoreTelemetry sets the telemetry sink for store events.
func WithStoreTelemetry(t Telemetry) StoreOption {
	return func(s *Store) {
		s.telemetry = normalizeTelemetry(t)
	}
}

// Store owns the canonical category tree. Readers load the current snapshot
// without locking; ApplyMerge is the only writer and is serialized.
type Store struct {
	current   atomic.Pointer[Snapshot]
	writeMu   sync.Mutex
	hook      RefreshHook
	telemetry Telemetry
}

// NewStore seeds a store with the given categories.
func NewStore(categories []Category, opts ...StoreOption) (*Store, error) {
	if err := validateCategories(categories); err != nil {
		return nil, err
	}
	s := &Store{
		hook:      noopRefreshHook{},
		telemetry: noopTelemetry{},
	}
	for _, opt := range opts {
		opt(s)
	}
	initial := Snapshot{Categories: categories}.Clone()
	s.current.Store(&initial)
	return s, nil
}

func validateCategories(categories []Category) error {
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if c.ID == "" {
			return errInvalidCategory
		}
		if _, exists := seen[c.ID]; exists {
			return fmt.Errorf("dashboard: category %s declared twice", c.ID)
		}
		seen[c.ID] = struct{}{}
		ids := make(map[string]struct{}, len(c.Widgets))
		for _, w := range c.Widgets {
			if w.ID == "" {
				return fmt.Errorf("dashboard: category %s: %w", c.ID, ErrInvalidWidgetID)
			}
			if _, exists := ids[w.ID]; exists {
				return fmt.Errorf("dashboard: category %s contains widget %s twice", c.ID, w.ID)
			}
			ids[w.ID] = struct{}{}
		}
	}
	return nil
}

func (s *Store) load() *Snapshot {
	return s.current.Load()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	return s.load().Clone()
}

// Version returns the current snapshot version.
func (s *Store) Version() uint64 {
	return s.load().Version
}

// Categories returns the category tree in order.
func (s *Store) Categories() []Category {
	return s.Snapshot().Categories
}

// Category returns a single category.
func (s *Store) Category(id string) (Category, bool) {
	c, ok := s.load().Category(id)
	if !ok {
		return Category{}, false
	}
	return c.Clone(), true
}

// VisibleWidgets returns the active widgets of a category in insertion order.
// Unknown categories yield an empty list.
func (s *Store) VisibleWidgets(categoryID string) []Widget {
	c, ok := s.load().Category(categoryID)
	if !ok {
		return nil
	}
	return c.VisibleWidgets()
}

// ApplyMerge runs the plan against the current snapshot and publishes the
// result with a single swap. Readers observe either the old or the new tree.
func (s *Store) ApplyMerge(ctx context.Context, plan MergePlan, decisions []Decision) (MergeReport, error) {
	if plan == nil {
		return MergeReport{}, fmt.Errorf("dashboard: merge plan is required")
	}
	s.writeMu.Lock()
	current := s.load()
	next, report, err := plan.Merge(*current, decisions)
	if err != nil {
		s.writeMu.Unlock()
		s.recordTelemetry(ctx, "dashboard.merge.rejected", map[string]any{
			"decisions": len(decisions),
			"error":     err.Error(),
		})
		return MergeReport{}, err
	}
	if report.Changed() {
		s.current.Store(&next)
	}
	s.writeMu.Unlock()

	s.notify(ctx, report)
	s.recordTelemetry(ctx, "dashboard.merge.apply", map[string]any{
		"version":     report.Version,
		"added":       len(report.Added),
		"activated":   len(report.Activated),
		"deactivated": len(report.Deactivated),
		"created":     len(report.Created),
		"warnings":    len(report.Warnings),
	})
	return report, nil
}

func (s *Store) notify(ctx context.Context, report MergeReport) {
	if !report.Changed() {
		return
	}
	actor := activityContextFrom(ctx)
	events := make([]WidgetEvent, 0, len(report.Created)+len(report.Added)+len(report.Activated)+len(report.Deactivated))
	for _, id := range report.Created {
		events = append(events, WidgetEvent{CategoryID: id, Reason: ReasonCreate})
	}
	for _, p := range report.Added {
		events = append(events, WidgetEvent{CategoryID: p.CategoryID, WidgetID: p.WidgetID, Reason: ReasonAdd})
	}
	for _, p := range report.Activated {
		events = append(events, WidgetEvent{CategoryID: p.CategoryID, WidgetID: p.WidgetID, Reason: ReasonActivate})
	}
	for _, p := range report.Deactivated {
		events = append(events, WidgetEvent{CategoryID: p.CategoryID, WidgetID: p.WidgetID, Reason: ReasonDeactivate})
	}
	for _, event := range events {
		event.Version = report.Version
		event.Actor = actor
		if err := s.hook.WidgetUpdated(ctx, event); err != nil {
			s.recordTelemetry(ctx, "dashboard.merge.hook_error", map[string]any{
				"widget_id": event.WidgetID,
				"reason":    event.Reason,
				"error":     err.Error(),
			})
		}
	}
}

func (s *Store) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.telemetry.Record(ctx, event, payload)
}
