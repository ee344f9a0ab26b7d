package dashboard

import (
	"fmt"
)

// CatalogTab groups addable widget templates under a tab key.
type CatalogTab struct {
	Key         string   `json:"key" yaml:"key"`
	DisplayName string   `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Widgets     []Widget `json:"widgets" yaml:"widgets"`
}

// CatalogEntry is the result of an id lookup: the owning tab and its template.
type CatalogEntry struct {
	Tab      string
	Template Widget
}

type catalogPosition struct {
	tab    int
	widget int
}

// Catalog is the static library of widget templates. It is built once and never
// mutated; lookups by id go through an index computed at construction.
type Catalog struct {
	tabs  []CatalogTab
	keys  map[string]int
	index map[string]catalogPosition
}

// NewCatalog validates the tabs and builds the id index. Template ids must be
// unique across the whole catalog and every template is stored inactive.
func NewCatalog(tabs ...CatalogTab) (*Catalog, error) {
	c := &Catalog{
		tabs:  make([]CatalogTab, 0, len(tabs)),
		keys:  make(map[string]int, len(tabs)),
		index: map[string]catalogPosition{},
	}
	for _, tab := range tabs {
		if tab.Key == "" {
			return nil, errMissingTabKey
		}
		if _, exists := c.keys[tab.Key]; exists {
			return nil, fmt.Errorf("dashboard: catalog tab %s declared twice", tab.Key)
		}
		tabIdx := len(c.tabs)
		stored := CatalogTab{Key: tab.Key, DisplayName: tab.DisplayName, Widgets: make([]Widget, 0, len(tab.Widgets))}
		for _, w := range tab.Widgets {
			if w.ID == "" {
				return nil, fmt.Errorf("dashboard: catalog tab %s has a template without id", tab.Key)
			}
			if prev, exists := c.index[w.ID]; exists {
				return nil, fmt.Errorf("dashboard: catalog template %s duplicated in tabs %s and %s",
					w.ID, c.tabs[prev.tab].Key, tab.Key)
			}
			template := w.Clone()
			template.Active = false
			c.index[w.ID] = catalogPosition{tab: tabIdx, widget: len(stored.Widgets)}
			stored.Widgets = append(stored.Widgets, template)
		}
		c.keys[tab.Key] = tabIdx
		c.tabs = append(c.tabs, stored)
	}
	return c, nil
}

// Tabs returns the tab keys in declaration order.
func (c *Catalog) Tabs() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.tabs))
	for i, tab := range c.tabs {
		keys[i] = tab.Key
	}
	return keys
}

// HasTab reports whether the tab key is declared.
func (c *Catalog) HasTab(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c.keys[key]
	return ok
}

// Templates returns copies of the templates registered under a tab.
func (c *Catalog) Templates(key string) []Widget {
	if c == nil {
		return nil
	}
	idx, ok := c.keys[key]
	if !ok {
		return nil
	}
	out := make([]Widget, len(c.tabs[idx].Widgets))
	for i, w := range c.tabs[idx].Widgets {
		out[i] = w.Clone()
	}
	return out
}

// Lookup resolves a template id to its tab and a copy of the template.
func (c *Catalog) Lookup(id string) (CatalogEntry, bool) {
	if c == nil {
		return CatalogEntry{}, false
	}
	pos, ok := c.index[id]
	if !ok {
		return CatalogEntry{}, false
	}
	tab := c.tabs[pos.tab]
	return CatalogEntry{Tab: tab.Key, Template: tab.Widgets[pos.widget].Clone()}, true
}

// Len returns the number of templates in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.index)
}

// Export returns a deep copy of the catalog tabs, e.g. for document encoding.
func (c *Catalog) Export() []CatalogTab {
	if c == nil {
		return nil
	}
	out := make([]CatalogTab, len(c.tabs))
	for i, tab := range c.tabs {
		out[i] = CatalogTab{Key: tab.Key, DisplayName: tab.DisplayName, Widgets: c.Templates(tab.Key)}
	}
	return out
}

func (c *Catalog) displayName(key string) string {
	if c == nil {
		return ""
	}
	if idx, ok := c.keys[key]; ok {
		return c.tabs[idx].DisplayName
	}
	return ""
}
