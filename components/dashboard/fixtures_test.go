package dashboard

import "testing"

func defaultConfig(t *testing.T) DocumentConfig {
	t.Helper()
	cfg, err := DefaultDocument().Build()
	if err != nil {
		t.Fatalf("build default document: %v", err)
	}
	return cfg
}

func newDefaultEditor(t *testing.T, opts EditorOptions) *Editor {
	t.Helper()
	editor, err := NewEditor(nil, opts)
	if err != nil {
		t.Fatalf("NewEditor returned error: %v", err)
	}
	return editor
}

func widgetIDs(widgets []Widget) []string {
	ids := make([]string, len(widgets))
	for i, w := range widgets {
		ids[i] = w.ID
	}
	return ids
}
