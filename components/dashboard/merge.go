package dashboard

import (
	"fmt"
	"strings"
)

// UnplacedPolicy decides what happens when a selected template has no home
// category in the current snapshot.
type UnplacedPolicy string

const (
	// PolicyDrop skips the widget and reports a cannot_place_widget warning.
	PolicyDrop UnplacedPolicy = "drop"
	// PolicyCreate appends the missing category and places the widget in it.
	PolicyCreate UnplacedPolicy = "create"
	// PolicyReject aborts the merge with ErrCannotPlaceWidget.
	PolicyReject UnplacedPolicy = "reject"
)

// ParseUnplacedPolicy converts configuration text into a policy; empty means drop.
func ParseUnplacedPolicy(value string) (UnplacedPolicy, error) {
	switch UnplacedPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyDrop:
		return PolicyDrop, nil
	case PolicyCreate:
		return PolicyCreate, nil
	case PolicyReject:
		return PolicyReject, nil
	default:
		return "", fmt.Errorf("dashboard: unknown unplaced policy %q", value)
	}
}

// WarningKind classifies recoverable merge problems.
type WarningKind string

const (
	WarningUnresolvable WarningKind = "unresolvable_reference"
	WarningCannotPlace  WarningKind = "cannot_place_widget"
)

// MergeWarning describes a decision that was skipped.
type MergeWarning struct {
	Kind       WarningKind `json:"kind"`
	WidgetID   string      `json:"widget_id"`
	Tab        string      `json:"tab,omitempty"`
	CategoryID string      `json:"category_id,omitempty"`
}

func (w MergeWarning) Error() string {
	switch w.Kind {
	case WarningCannotPlace:
		return fmt.Sprintf("dashboard: widget %s from tab %s has no category %s", w.WidgetID, w.Tab, w.CategoryID)
	default:
		return fmt.Sprintf("dashboard: widget %s is not on the dashboard or in the catalog", w.WidgetID)
	}
}

// Placement identifies a widget and the category it lives in after a merge.
type Placement struct {
	CategoryID string `json:"category_id"`
	WidgetID   string `json:"widget_id"`
}

// MergeReport summarizes what a merge did.
type MergeReport struct {
	Version     uint64         `json:"version"`
	Added       []Placement    `json:"added,omitempty"`
	Activated   []Placement    `json:"activated,omitempty"`
	Deactivated []Placement    `json:"deactivated,omitempty"`
	Created     []string       `json:"created_categories,omitempty"`
	Unchanged   int            `json:"unchanged"`
	Warnings    []MergeWarning `json:"warnings,omitempty"`
}

// Changed reports whether the merge altered the snapshot.
func (r MergeReport) Changed() bool {
	return len(r.Added) > 0 || len(r.Activated) > 0 || len(r.Deactivated) > 0 || len(r.Created) > 0
}

// Merger applies selection decisions using the catalog and tab mapping.
type Merger struct {
	Catalog *Catalog
	Tabs    TabMapping
	Policy  UnplacedPolicy
}

var _ MergePlan = Merger{}

type widgetLocation struct {
	category int
	widget   int
}

// Merge computes the next snapshot. The input snapshot is left untouched, and
// under PolicyReject a placement failure returns the error with no snapshot.
func (m Merger) Merge(current Snapshot, decisions []Decision) (Snapshot, MergeReport, error) {
	next := current.Clone()
	var report MergeReport

	categories := make(map[string]int, len(next.Categories))
	located := map[string]widgetLocation{}
	for ci, category := range next.Categories {
		categories[category.ID] = ci
		for wi, w := range category.Widgets {
			if _, seen := located[w.ID]; !seen {
				located[w.ID] = widgetLocation{category: ci, widget: wi}
			}
		}
	}

	for _, d := range decisions {
		if loc, ok := located[d.WidgetID]; ok {
			category := &next.Categories[loc.category]
			w := &category.Widgets[loc.widget]
			placement := Placement{CategoryID: category.ID, WidgetID: w.ID}
			switch {
			case w.Active == d.Checked:
				report.Unchanged++
			case d.Checked:
				report.Activated = append(report.Activated, placement)
			default:
				report.Deactivated = append(report.Deactivated, placement)
			}
			w.Active = d.Checked
			continue
		}

		entry, inCatalog := m.Catalog.Lookup(d.WidgetID)
		if !inCatalog {
			report.Warnings = append(report.Warnings, MergeWarning{Kind: WarningUnresolvable, WidgetID: d.WidgetID})
			continue
		}
		if !d.Checked {
			report.Unchanged++
			continue
		}

		categoryID := m.Tabs.placementCategory(entry.Tab)
		ci, ok := categories[categoryID]
		if !ok {
			switch m.policy() {
			case PolicyCreate:
				ci = len(next.Categories)
				next.Categories = append(next.Categories, Category{
					ID:          categoryID,
					DisplayName: m.Tabs.placementName(entry.Tab),
				})
				categories[categoryID] = ci
				report.Created = append(report.Created, categoryID)
			case PolicyReject:
				return Snapshot{}, MergeReport{}, fmt.Errorf("%w: %s from tab %s has no category %s",
					ErrCannotPlaceWidget, d.WidgetID, entry.Tab, categoryID)
			default:
				report.Warnings = append(report.Warnings, MergeWarning{
					Kind:       WarningCannotPlace,
					WidgetID:   d.WidgetID,
					Tab:        entry.Tab,
					CategoryID: categoryID,
				})
				continue
			}
		}

		widget := entry.Template
		widget.Active = true
		category := &next.Categories[ci]
		located[widget.ID] = widgetLocation{category: ci, widget: len(category.Widgets)}
		category.Widgets = append(category.Widgets, widget)
		report.Added = append(report.Added, Placement{CategoryID: category.ID, WidgetID: widget.ID})
	}

	if report.Changed() {
		next.Version = current.Version + 1
	} else {
		next = current
	}
	report.Version = next.Version
	return next, report, nil
}

func (m Merger) policy() UnplacedPolicy {
	if m.Policy == "" {
		return PolicyDrop
	}
	return m.Policy
}
