package dashboard

import (
	"fmt"

	"github.com/ettle/strcase"
)

// TabBinding ties a catalog tab to the category its widgets are placed into.
// An empty CategoryID means the tab has no pre-existing home category.
type TabBinding struct {
	Tab         string `json:"tab" yaml:"tab"`
	CategoryID  string `json:"category_id,omitempty" yaml:"category_id,omitempty"`
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`
}

// TabMapping is the immutable tab↔category correspondence used by the
// reconciler. The zero value maps nothing and has no default tab.
type TabMapping struct {
	bindings   []TabBinding
	byTab      map[string]int
	byCategory map[string]string
	defaultTab string
}

// NewTabMapping validates bindings; a category can be the home of at most one tab.
func NewTabMapping(defaultTab string, bindings ...TabBinding) (TabMapping, error) {
	m := TabMapping{
		bindings:   make([]TabBinding, 0, len(bindings)),
		byTab:      make(map[string]int, len(bindings)),
		byCategory: make(map[string]string, len(bindings)),
		defaultTab: defaultTab,
	}
	for _, b := range bindings {
		if b.Tab == "" {
			return TabMapping{}, errMissingTabKey
		}
		if _, exists := m.byTab[b.Tab]; exists {
			return TabMapping{}, fmt.Errorf("dashboard: tab %s bound twice", b.Tab)
		}
		if b.CategoryID != "" {
			if other, exists := m.byCategory[b.CategoryID]; exists {
				return TabMapping{}, fmt.Errorf("dashboard: category %s bound to tabs %s and %s", b.CategoryID, other, b.Tab)
			}
			m.byCategory[b.CategoryID] = b.Tab
		}
		m.byTab[b.Tab] = len(m.bindings)
		m.bindings = append(m.bindings, b)
	}
	if defaultTab != "" {
		if _, ok := m.byTab[defaultTab]; !ok {
			return TabMapping{}, fmt.Errorf("dashboard: default tab %s is not bound: %w", defaultTab, ErrUnknownTab)
		}
	} else if len(m.bindings) > 0 {
		m.defaultTab = m.bindings[0].Tab
	}
	return m, nil
}

// DefaultTab is the tab used when a category has no tab of its own.
func (m TabMapping) DefaultTab() string {
	return m.defaultTab
}

// Tabs returns bound tab keys in declaration order.
func (m TabMapping) Tabs() []string {
	keys := make([]string, len(m.bindings))
	for i, b := range m.bindings {
		keys[i] = b.Tab
	}
	return keys
}

// Bindings returns a copy of the configured bindings.
func (m TabMapping) Bindings() []TabBinding {
	return append([]TabBinding(nil), m.bindings...)
}

// TabFor returns the tab whose widgets land in a category: the tab bound to
// it, or an unbound tab whose derived id matches.
func (m TabMapping) TabFor(categoryID string) (string, bool) {
	if tab, ok := m.byCategory[categoryID]; ok {
		return tab, true
	}
	if categoryID == "" {
		return "", false
	}
	for _, b := range m.bindings {
		if b.CategoryID == "" && DerivedCategoryID(b.Tab) == categoryID {
			return b.Tab, true
		}
	}
	return "", false
}

// Resolve returns the tab for a category, falling back to the default tab.
func (m TabMapping) Resolve(categoryID string) string {
	if tab, ok := m.TabFor(categoryID); ok {
		return tab
	}
	return m.defaultTab
}

// CategoryFor returns the explicitly bound category of a tab.
func (m TabMapping) CategoryFor(tab string) (string, bool) {
	idx, ok := m.byTab[tab]
	if !ok || m.bindings[idx].CategoryID == "" {
		return "", false
	}
	return m.bindings[idx].CategoryID, true
}

// HasTab reports whether the tab is bound.
func (m TabMapping) HasTab(tab string) bool {
	_, ok := m.byTab[tab]
	return ok
}

// placementCategory is the category id widgets of a tab land in: the bound
// category, or an id derived from the tab key for unbound tabs.
func (m TabMapping) placementCategory(tab string) string {
	if id, ok := m.CategoryFor(tab); ok {
		return id
	}
	return DerivedCategoryID(tab)
}

func (m TabMapping) placementName(tab string) string {
	if idx, ok := m.byTab[tab]; ok && m.bindings[idx].DisplayName != "" {
		return m.bindings[idx].DisplayName
	}
	return tab + " Dashboard"
}

// DerivedCategoryID builds the category id used for tabs without a binding.
func DerivedCategoryID(tab string) string {
	return strcase.ToKebab(tab)
}
