package dashboard

import (
	"context"
	"slices"
)

// VizKind selects how a widget payload is visualized.
type VizKind string

const (
	VizDonut    VizKind = "donut"
	VizProgress VizKind = "progress"
	VizEmpty    VizKind = "empty"
)

// Valid reports whether the kind is one of the supported visualizations.
func (k VizKind) Valid() bool {
	switch k {
	case VizDonut, VizProgress, VizEmpty:
		return true
	default:
		return false
	}
}

// Segment is a single labeled slice of a donut or progress payload.
type Segment struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
	Color string  `json:"color,omitempty" yaml:"color,omitempty"`
}

// VizPayload carries the data rendered for a widget. Which fields apply depends
// on the widget Kind: donut uses Segments/Total, progress adds Subtitle and empty
// only uses PlaceholderText.
type VizPayload struct {
	Segments        []Segment `json:"segments,omitempty" yaml:"segments,omitempty"`
	Total           float64   `json:"total" yaml:"total,omitempty"`
	Subtitle        string    `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	PlaceholderText string    `json:"placeholder_text,omitempty" yaml:"placeholder_text,omitempty"`
}

// SegmentSum adds up all segment values.
func (p VizPayload) SegmentSum() float64 {
	var sum float64
	for _, s := range p.Segments {
		sum += s.Value
	}
	return sum
}

// SegmentShares returns each segment as a percentage of Total. A zero total
// yields zero shares; totals that disagree with the segment sum are not corrected.
func (p VizPayload) SegmentShares() []float64 {
	shares := make([]float64, len(p.Segments))
	if p.Total <= 0 {
		return shares
	}
	for i, s := range p.Segments {
		shares[i] = s.Value / p.Total * 100
	}
	return shares
}

func (p VizPayload) clone() VizPayload {
	p.Segments = slices.Clone(p.Segments)
	return p
}

// Widget is a single dashboard tile. Deactivated widgets stay in their category
// so their payload survives being hidden.
type Widget struct {
	ID      string     `json:"id" yaml:"id"`
	Name    string     `json:"name" yaml:"name"`
	Kind    VizKind    `json:"kind" yaml:"kind"`
	Payload VizPayload `json:"payload" yaml:"payload"`
	Active  bool       `json:"active" yaml:"active,omitempty"`
}

// Clone returns a deep copy of the widget.
func (w Widget) Clone() Widget {
	w.Payload = w.Payload.clone()
	return w
}

// Category is a named group of widgets rendered together.
type Category struct {
	ID          string   `json:"id" yaml:"id"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	Widgets     []Widget `json:"widgets" yaml:"widgets"`
}

// VisibleWidgets returns the active widgets in insertion order.
func (c Category) VisibleWidgets() []Widget {
	visible := make([]Widget, 0, len(c.Widgets))
	for _, w := range c.Widgets {
		if w.Active {
			visible = append(visible, w.Clone())
		}
	}
	return visible
}

// Clone returns a deep copy of the category.
func (c Category) Clone() Category {
	widgets := make([]Widget, len(c.Widgets))
	for i, w := range c.Widgets {
		widgets[i] = w.Clone()
	}
	c.Widgets = widgets
	return c
}

// Snapshot is the full category tree at a given version. Snapshots are never
// mutated once published; merges produce a new one.
type Snapshot struct {
	Version    uint64     `json:"version" yaml:"version"`
	Categories []Category `json:"categories" yaml:"categories"`
}

// Category looks up a category by id.
func (s Snapshot) Category(id string) (Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// HasCategory reports whether the snapshot contains the category.
func (s Snapshot) HasCategory(id string) bool {
	_, ok := s.Category(id)
	return ok
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	categories := make([]Category, len(s.Categories))
	for i, c := range s.Categories {
		categories[i] = c.Clone()
	}
	s.Categories = categories
	return s
}

// Decision is one checkbox outcome applied by a merge.
type Decision struct {
	WidgetID string `json:"widget_id" yaml:"widget_id"`
	Checked  bool   `json:"checked" yaml:"checked"`
}

// MergePlan computes the next snapshot for a batch of decisions. Implementations
// must not mutate the input snapshot.
type MergePlan interface {
	Merge(current Snapshot, decisions []Decision) (Snapshot, MergeReport, error)
}

// RefreshHook notifies transports (REST/WebSocket) about widget changes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// WidgetEvent describes a committed change transports might care about.
type WidgetEvent struct {
	CategoryID string          `json:"category_id"`
	WidgetID   string          `json:"widget_id"`
	Reason     string          `json:"reason"`
	Version    uint64          `json:"version"`
	Actor      ActivityContext `json:"actor"`
}

// Event reasons emitted after a merge.
const (
	ReasonAdd        = "add"
	ReasonActivate   = "activate"
	ReasonDeactivate = "deactivate"
	ReasonCreate     = "create_category"
)

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return nil
}
