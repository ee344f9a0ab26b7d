package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	defaultTemplate = "dashboard.html"
	defaultTitle    = "CNAPP Dashboard"
	defaultPagePath = "/cnapp/dashboard"
)

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// SnapshotReader exposes the current category tree.
type SnapshotReader interface {
	Snapshot() Snapshot
}

// ModalReader exposes the add-widget modal state.
type ModalReader interface {
	State() ModalState
}

// WidgetRenderer renders a widget visualization.
type WidgetRenderer interface {
	Render(w Widget) (RenderedWidget, error)
}

// ControllerOptions wires the read side of the editor into a controller.
type ControllerOptions struct {
	Store    SnapshotReader
	Modal    ModalReader
	Renderer Renderer
	Viz      WidgetRenderer
	Template string
	Title    string
	Actions  ActionPaths
}

// ActionPaths are the absolute URLs the rendered page posts modal actions to.
// Tab is a prefix; the tab key is appended to it.
type ActionPaths struct {
	Open    string `json:"open"`
	Tab     string `json:"tab"`
	Toggle  string `json:"toggle"`
	Confirm string `json:"confirm"`
	Cancel  string `json:"cancel"`
	Search  string `json:"search"`
}

// DefaultActionPaths derives the modal action URLs from the page path.
func DefaultActionPaths(pagePath string) ActionPaths {
	pagePath = strings.TrimSuffix(pagePath, "/")
	if pagePath == "" {
		pagePath = defaultPagePath
	}
	return ActionPaths{
		Open:    pagePath + "/modal/open",
		Tab:     pagePath + "/modal/tab/",
		Toggle:  pagePath + "/modal/toggle",
		Confirm: pagePath + "/modal/confirm",
		Cancel:  pagePath + "/modal/cancel",
		Search:  pagePath + "/search",
	}
}

func (a ActionPaths) withDefaults() ActionPaths {
	def := DefaultActionPaths(defaultPagePath)
	if a.Open == "" {
		a.Open = def.Open
	}
	if a.Tab == "" {
		a.Tab = def.Tab
	}
	if a.Toggle == "" {
		a.Toggle = def.Toggle
	}
	if a.Confirm == "" {
		a.Confirm = def.Confirm
	}
	if a.Cancel == "" {
		a.Cancel = def.Cancel
	}
	if a.Search == "" {
		a.Search = def.Search
	}
	return a
}

// Controller builds dashboard view models and renders them for transports.
type Controller struct {
	store    SnapshotReader
	modal    ModalReader
	renderer Renderer
	viz      WidgetRenderer
	template string
	title    string
	actions  ActionPaths
}

// CategoryView is a category with its visible widgets rendered.
type CategoryView struct {
	ID          string           `json:"id"`
	DisplayName string           `json:"display_name"`
	Widgets     []RenderedWidget `json:"widgets"`
}

// LayoutPayload is the JSON/HTML view of the dashboard.
type LayoutPayload struct {
	Title      string         `json:"title"`
	Version    uint64         `json:"version"`
	Categories []CategoryView `json:"categories"`
	Modal      ModalState     `json:"modal"`
}

// NewController wires the options into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultTemplate
	}
	if opts.Title == "" {
		opts.Title = defaultTitle
	}
	if opts.Viz == nil {
		opts.Viz = NewVizRenderer()
	}
	return &Controller{
		store:    opts.Store,
		modal:    opts.Modal,
		renderer: opts.Renderer,
		viz:      opts.Viz,
		template: opts.Template,
		title:    opts.Title,
		actions:  opts.Actions.withDefaults(),
	}
}

// SetActionPaths replaces the URLs the page posts to. Call it before serving.
func (c *Controller) SetActionPaths(actions ActionPaths) {
	c.actions = actions.withDefaults()
}

// ActionPaths returns the URLs the page posts to.
func (c *Controller) ActionPaths() ActionPaths {
	return c.actions
}

// LayoutPayload renders every visible widget of the current snapshot.
func (c *Controller) LayoutPayload(ctx context.Context) (LayoutPayload, error) {
	if c.store == nil {
		return LayoutPayload{}, errMissingStore
	}
	snapshot := c.store.Snapshot()
	payload := LayoutPayload{
		Title:      c.title,
		Version:    snapshot.Version,
		Categories: make([]CategoryView, 0, len(snapshot.Categories)),
	}
	for _, category := range snapshot.Categories {
		view := CategoryView{ID: category.ID, DisplayName: category.DisplayName}
		for _, w := range category.VisibleWidgets() {
			rendered, err := c.viz.Render(w)
			if err != nil {
				return LayoutPayload{}, fmt.Errorf("dashboard: render widget %s: %w", w.ID, err)
			}
			view.Widgets = append(view.Widgets, rendered)
		}
		payload.Categories = append(payload.Categories, view)
	}
	if c.modal != nil {
		payload.Modal = c.modal.State()
	}
	return payload, nil
}

// RenderTemplate renders the dashboard page into out.
func (c *Controller) RenderTemplate(ctx context.Context, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("dashboard: renderer not configured")
	}
	payload, err := c.LayoutPayload(ctx)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.template, templateData(payload, c.actions), out)
	return err
}

// templateData keys follow the json tags of the payload types. The version is
// a string so it survives the JSON round trip without becoming a float.
func templateData(payload LayoutPayload, actions ActionPaths) map[string]any {
	return map[string]any{
		"title":      payload.Title,
		"version":    strconv.FormatUint(payload.Version, 10),
		"categories": payload.Categories,
		"modal":      payload.Modal,
		"actions":    actions,
	}
}
