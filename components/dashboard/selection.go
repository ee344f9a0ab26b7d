package dashboard

// SelectionMap is the per-session record of desired checked state. It keeps
// first-insertion order so merges append new widgets deterministically.
type SelectionMap struct {
	order  []string
	values map[string]bool
}

func newSelectionMap(capacity int) *SelectionMap {
	return &SelectionMap{
		order:  make([]string, 0, capacity),
		values: make(map[string]bool, capacity),
	}
}

// buildSelection seeds a map from every live widget (value = its activation
// flag) followed by every catalog template not already present (value = false).
func buildSelection(snapshot Snapshot, catalog *Catalog) *SelectionMap {
	sel := newSelectionMap(catalog.Len())
	for _, category := range snapshot.Categories {
		for _, w := range category.Widgets {
			sel.seed(w.ID, w.Active)
		}
	}
	for _, tab := range catalog.Tabs() {
		for _, w := range catalog.Templates(tab) {
			sel.seed(w.ID, false)
		}
	}
	return sel
}

// Set records the checked state, overwriting any previous value.
func (m *SelectionMap) Set(id string, checked bool) {
	if _, ok := m.values[id]; !ok {
		m.order = append(m.order, id)
	}
	m.values[id] = checked
}

func (m *SelectionMap) seed(id string, checked bool) {
	if _, ok := m.values[id]; ok {
		return
	}
	m.Set(id, checked)
}

// Checked returns the recorded state and whether the id is present.
func (m *SelectionMap) Checked(id string) (bool, bool) {
	if m == nil {
		return false, false
	}
	v, ok := m.values[id]
	return v, ok
}

// Len returns the number of ids in the map.
func (m *SelectionMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Decisions flattens the map into ordered decisions.
func (m *SelectionMap) Decisions() []Decision {
	if m == nil {
		return nil
	}
	out := make([]Decision, len(m.order))
	for i, id := range m.order {
		out[i] = Decision{WidgetID: id, Checked: m.values[id]}
	}
	return out
}

// Values returns a copy of the id → checked map.
func (m *SelectionMap) Values() map[string]bool {
	out := make(map[string]bool, m.Len())
	if m == nil {
		return out
	}
	for id, v := range m.values {
		out[id] = v
	}
	return out
}
