package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	documentVersionV1 = "1"
	// DocumentVersion exposes the current dashboard document format version for tooling.
	DocumentVersion = documentVersionV1
)

// DashboardDocument is the YAML configuration that seeds a dashboard editor:
// the starting categories, the catalog tabs and how tabs map to categories.
type DashboardDocument struct {
	Version    string        `json:"version" yaml:"version"`
	Name       string        `json:"name,omitempty" yaml:"name,omitempty"`
	DefaultTab string        `json:"default_tab,omitempty" yaml:"default_tab,omitempty"`
	Policy     string        `json:"unplaced_policy,omitempty" yaml:"unplaced_policy,omitempty"`
	Categories []Category    `json:"categories" yaml:"categories"`
	Tabs       []DocumentTab `json:"tabs" yaml:"tabs"`
	Source     string        `json:"-" yaml:"-"`
}

// DocumentTab declares a catalog tab together with its category binding.
type DocumentTab struct {
	Key         string   `json:"key" yaml:"key"`
	DisplayName string   `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	CategoryID  string   `json:"category_id,omitempty" yaml:"category_id,omitempty"`
	Widgets     []Widget `json:"widgets" yaml:"widgets"`
}

// DocumentConfig is the validated, immutable configuration built from a document.
type DocumentConfig struct {
	Categories []Category
	Catalog    *Catalog
	Tabs       TabMapping
	Policy     UnplacedPolicy
}

// ReadDocument loads a document from disk.
func ReadDocument(path string) (*DashboardDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open document %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeDocument(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode document %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeDocument reads and validates a document from any reader.
func DecodeDocument(r io.Reader) (*DashboardDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc DashboardDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dashboard: document is empty")
		}
		return nil, fmt.Errorf("dashboard: parse document: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeDocument writes the document as YAML.
func EncodeDocument(w io.Writer, doc *DashboardDocument) error {
	if doc == nil {
		return fmt.Errorf("dashboard: document is nil")
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("dashboard: encode document: %w", err)
	}
	return encoder.Close()
}

// Validate checks required fields, id uniqueness and widget payloads.
func (doc *DashboardDocument) Validate() error {
	return doc.ValidateWith(NewJSONSchemaValidator())
}

// ValidateWith validates the document using the provided payload validator.
func (doc *DashboardDocument) ValidateWith(validator PayloadValidator) error {
	if doc.Version != documentVersionV1 {
		return fmt.Errorf("dashboard: unsupported document version %q", doc.Version)
	}
	if validator == nil {
		validator = noopPayloadValidator{}
	}
	if _, err := ParseUnplacedPolicy(doc.Policy); err != nil {
		return err
	}
	if err := validateCategories(doc.Categories); err != nil {
		return err
	}
	var errs error
	for _, c := range doc.Categories {
		for _, w := range c.Widgets {
			if err := validateWidget(validator, w); err != nil {
				errs = errors.Join(errs, fmt.Errorf("category %s: %w", c.ID, err))
			}
		}
	}
	for idx, tab := range doc.Tabs {
		if tab.Key == "" {
			return fmt.Errorf("dashboard: document tab at index %d is missing key", idx)
		}
		for _, w := range tab.Widgets {
			if err := validateWidget(validator, w); err != nil {
				errs = errors.Join(errs, fmt.Errorf("tab %s: %w", tab.Key, err))
			}
		}
	}
	if errs != nil {
		return errs
	}
	_, err := doc.Build()
	return err
}

func validateWidget(validator PayloadValidator, w Widget) error {
	if w.Name == "" {
		return fmt.Errorf("dashboard: widget %s missing name", w.ID)
	}
	return validator.Validate(w)
}

// Build turns the document into catalog, tab mapping and starting categories.
func (doc *DashboardDocument) Build() (DocumentConfig, error) {
	if doc == nil {
		return DocumentConfig{}, fmt.Errorf("dashboard: document is nil")
	}
	policy, err := ParseUnplacedPolicy(doc.Policy)
	if err != nil {
		return DocumentConfig{}, err
	}
	tabs := make([]CatalogTab, 0, len(doc.Tabs))
	bindings := make([]TabBinding, 0, len(doc.Tabs))
	for _, t := range doc.Tabs {
		tabs = append(tabs, CatalogTab{Key: t.Key, DisplayName: t.DisplayName, Widgets: t.Widgets})
		bindings = append(bindings, TabBinding{Tab: t.Key, CategoryID: t.CategoryID, DisplayName: t.DisplayName})
	}
	catalog, err := NewCatalog(tabs...)
	if err != nil {
		return DocumentConfig{}, err
	}
	mapping, err := NewTabMapping(doc.DefaultTab, bindings...)
	if err != nil {
		return DocumentConfig{}, err
	}
	if err := validateCategories(doc.Categories); err != nil {
		return DocumentConfig{}, err
	}
	categories := make([]Category, len(doc.Categories))
	for i, c := range doc.Categories {
		categories[i] = c.Clone()
	}
	return DocumentConfig{
		Categories: categories,
		Catalog:    catalog,
		Tabs:       mapping,
		Policy:     policy,
	}, nil
}

// WithSnapshot returns a copy of the document whose categories reflect the snapshot.
func (doc *DashboardDocument) WithSnapshot(snapshot Snapshot) *DashboardDocument {
	out := *doc
	out.Categories = snapshot.Clone().Categories
	out.Tabs = append([]DocumentTab(nil), doc.Tabs...)
	return &out
}

func (doc *DashboardDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = documentVersionV1
	}
	if doc.Policy == "" {
		doc.Policy = string(PolicyDrop)
	}
}
