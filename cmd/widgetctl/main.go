package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"

	"github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

type cli struct {
	Validate validateCmd `cmd:"" help:"Validate a dashboard document."`
	Dump     dumpCmd     `cmd:"" help:"Print a dashboard document (the built-in default when no path is given)."`
	Scaffold scaffoldCmd `cmd:"" help:"Add a widget template to a catalog tab of a dashboard document."`
	Simulate simulateCmd `cmd:"" help:"Open the add-widget modal, apply toggles and print the merge report."`

	Verbose bool `short:"v" help:"Log editor telemetry to stderr."`
}

type validateCmd struct {
	Document string `arg:"" type:"existingfile" help:"Path to the dashboard YAML document."`
}

type dumpCmd struct {
	Document string `arg:"" optional:"" type:"existingfile" help:"Path to the dashboard YAML document."`
	Format   string `default:"yaml" enum:"yaml,json" help:"Output format (yaml or json)."`
}

type scaffoldCmd struct {
	Document  string  `required:"" type:"path" help:"Dashboard document to update; created from the default when missing."`
	Tab       string  `required:"" help:"Catalog tab key (e.g. CSPM, Ticket)."`
	Name      string  `required:"" help:"Display name of the widget."`
	ID        string  `help:"Widget id (defaults to the kebab-cased name)."`
	Kind      string  `default:"empty" enum:"donut,progress,empty" help:"Visualization kind."`
	Total     float64 `help:"Total shown by donut and progress widgets."`
	Category  string  `help:"Category id to bind a new tab to."`
	Overwrite bool    `help:"Replace an existing template with the same id."`
}

type simulateCmd struct {
	Document string   `optional:"" type:"existingfile" help:"Dashboard document (defaults to the built-in dashboard)."`
	Category string   `help:"Category the modal is opened from."`
	Tab      string   `help:"Tab to switch to before toggling."`
	Policy   string   `help:"Override the unplaced widget policy (drop, create, reject)."`
	Toggle   []string `help:"Toggles as id=true|false (repeatable)."`
}

type runContext struct {
	out       io.Writer
	telemetry dashboard.Telemetry
}

func main() {
	var root cli
	rc := &runContext{out: os.Stdout}
	ctx := kong.Parse(&root,
		kong.Description("Tooling for CNAPP dashboard documents."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
		kong.Bind(rc),
	)
	if root.Verbose {
		rc.telemetry = dashboard.NewLogTelemetry(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func (cmd *validateCmd) Run(_ context.Context, rc *runContext) error {
	doc, err := dashboard.ReadDocument(cmd.Document)
	if err != nil {
		return err
	}
	cfg, err := doc.Build()
	if err != nil {
		return err
	}
	fmt.Fprintf(rc.out, "✓ %s: %d categories, %d catalog templates, policy %s\n",
		cmd.Document, len(cfg.Categories), cfg.Catalog.Len(), cfg.Policy)
	for _, category := range cfg.Categories {
		for _, id := range dashboard.TotalMismatches(category.Widgets) {
			fmt.Fprintf(rc.out, "! %s/%s: total differs from segment sum\n", category.ID, id)
		}
	}
	return nil
}

func (cmd *dumpCmd) Run(_ context.Context, rc *runContext) error {
	doc, err := loadDocument(cmd.Document)
	if err != nil {
		return err
	}
	if cmd.Format == "json" {
		encoder := json.NewEncoder(rc.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)
	}
	return dashboard.EncodeDocument(rc.out, doc)
}

func (cmd *scaffoldCmd) Run(_ context.Context, rc *runContext) error {
	path, err := filepath.Abs(cmd.Document)
	if err != nil {
		return fmt.Errorf("widgetctl: resolve document path: %w", err)
	}
	doc, err := loadOrInitDocument(path)
	if err != nil {
		return err
	}
	widget := cmd.widget()
	if err := addTemplate(doc, cmd.Tab, cmd.Category, widget, cmd.Overwrite); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("widgetctl: document invalid after scaffold: %w", err)
	}
	if err := writeDocument(path, doc); err != nil {
		return err
	}
	fmt.Fprintf(rc.out, "✓ Added %s to tab %s in %s\n", widget.ID, cmd.Tab, path)
	return nil
}

func (cmd *scaffoldCmd) widget() dashboard.Widget {
	id := cmd.ID
	if id == "" {
		id = strcase.ToKebab(cmd.Name)
	}
	w := dashboard.Widget{
		ID:   id,
		Name: cmd.Name,
		Kind: dashboard.VizKind(cmd.Kind),
	}
	if w.Kind == dashboard.VizEmpty {
		w.Payload.PlaceholderText = "No Graph data available!"
	} else {
		w.Payload.Total = cmd.Total
	}
	return w
}

func (cmd *simulateCmd) Run(ctx context.Context, rc *runContext) error {
	doc, err := loadDocument(cmd.Document)
	if err != nil {
		return err
	}
	toggles, err := parseToggles(cmd.Toggle)
	if err != nil {
		return err
	}
	policy, err := dashboard.ParseUnplacedPolicy(cmd.Policy)
	if err != nil {
		return err
	}
	opts := dashboard.EditorOptions{Telemetry: rc.telemetry}
	if cmd.Policy != "" {
		opts.Policy = policy
	}
	editor, err := dashboard.NewEditor(doc, opts)
	if err != nil {
		return err
	}
	report, err := simulate(ctx, editor.Reconciler, cmd.Category, cmd.Tab, toggles)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(rc.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]any{
		"report":   report,
		"snapshot": editor.Store.Snapshot(),
	})
}

func simulate(ctx context.Context, r *dashboard.Reconciler, categoryID, tab string, toggles []dashboard.Decision) (dashboard.MergeReport, error) {
	r.Open(ctx, categoryID)
	if tab != "" {
		if err := r.SetActiveTab(tab); err != nil {
			return dashboard.MergeReport{}, err
		}
	}
	for _, t := range toggles {
		if err := r.Toggle(t.WidgetID, t.Checked); err != nil {
			return dashboard.MergeReport{}, err
		}
	}
	return r.Confirm(ctx)
}

func parseToggles(values []string) ([]dashboard.Decision, error) {
	out := make([]dashboard.Decision, 0, len(values))
	for _, value := range values {
		id, raw, ok := strings.Cut(value, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("widgetctl: toggle %q must be id=true|false", value)
		}
		checked, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("widgetctl: toggle %q: %w", value, err)
		}
		out = append(out, dashboard.Decision{WidgetID: id, Checked: checked})
	}
	return out, nil
}

func addTemplate(doc *dashboard.DashboardDocument, tab, categoryID string, widget dashboard.Widget, overwrite bool) error {
	for ti := range doc.Tabs {
		for wi, existing := range doc.Tabs[ti].Widgets {
			if existing.ID != widget.ID {
				continue
			}
			if !overwrite {
				return fmt.Errorf("widgetctl: document already defines widget %s (use --overwrite to replace)", widget.ID)
			}
			if doc.Tabs[ti].Key == tab {
				doc.Tabs[ti].Widgets[wi] = widget
				return nil
			}
			doc.Tabs[ti].Widgets = append(doc.Tabs[ti].Widgets[:wi], doc.Tabs[ti].Widgets[wi+1:]...)
			break
		}
	}
	for ti := range doc.Tabs {
		if doc.Tabs[ti].Key == tab {
			doc.Tabs[ti].Widgets = append(doc.Tabs[ti].Widgets, widget)
			return nil
		}
	}
	doc.Tabs = append(doc.Tabs, dashboard.DocumentTab{
		Key:        tab,
		CategoryID: categoryID,
		Widgets:    []dashboard.Widget{widget},
	})
	return nil
}

func loadDocument(path string) (*dashboard.DashboardDocument, error) {
	if path == "" {
		return dashboard.DefaultDocument(), nil
	}
	return dashboard.ReadDocument(path)
}

func loadOrInitDocument(path string) (*dashboard.DashboardDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			doc := dashboard.DefaultDocument()
			doc.Source = path
			return doc, nil
		}
		return nil, fmt.Errorf("widgetctl: stat document: %w", err)
	}
	return dashboard.ReadDocument(path)
}

func writeDocument(path string, doc *dashboard.DashboardDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("widgetctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("widgetctl: create document %s: %w", path, err)
	}
	if err := writeAndClose(file, doc); err != nil {
		return fmt.Errorf("widgetctl: write document %s: %w", path, err)
	}
	return nil
}

// writeAndClose encodes doc and reports a failed close when the encode succeeded.
func writeAndClose(w io.WriteCloser, doc *dashboard.DashboardDocument) error {
	err := dashboard.EncodeDocument(w, doc)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}
