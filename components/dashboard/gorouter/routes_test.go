package gorouter

import (
	"context"
	"net/http"
	"strings"
	"testing"

	router "github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"

	"github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/httpapi"
)

func TestRegisterValidatesConfig(t *testing.T) {
	if err := Register(Config[struct{}]{}); err == nil {
		t.Fatalf("expected error when router/controller missing")
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{})
	if err := Register(Config[struct{}]{Controller: controller}); err == nil {
		t.Fatalf("expected error when router missing")
	}
}

func TestDefaultRouteConfig(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{Confirm: "/custom/confirm"})
	if routes.Confirm != "/custom/confirm" {
		t.Fatalf("expected override to be kept, got %s", routes.Confirm)
	}
	if routes.Tab != "/dashboard/modal/tab/:tab" {
		t.Fatalf("unexpected tab route %s", routes.Tab)
	}
	if routes.Layout != "/dashboard/_layout" || routes.WebSocket != "/dashboard/ws" {
		t.Fatalf("unexpected defaults %+v", routes)
	}
}

func TestRegisterHTMLRoute(t *testing.T) {
	fixture := newRouteFixture(t)

	h := fixture.route(t, "GET:/cnapp/dashboard")
	ctx := newRouteContext()
	ctx.On("SetHeader", "Content-Type", "text/html; charset=utf-8").Return()
	ctx.On("Send", mock.Anything).Return(nil)
	if err := h(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	page := ctx.ResponseBodyM
	if !strings.Contains(page, `<h2 class="category-title">Registry Scan</h2>`) {
		t.Fatalf("expected category title in page:\n%s", page)
	}
	if !strings.Contains(page, `data-post="/cnapp/dashboard/modal/open?category_id=registry"`) {
		t.Fatalf("expected absolute open action in page:\n%s", page)
	}
	ctx.AssertExpectations(t)
}

func TestRegisterSetsControllerActionPaths(t *testing.T) {
	mr := newMockRouter()
	controller := dashboard.NewController(dashboard.ControllerOptions{})
	err := Register(Config[struct{}]{
		Router:     mr,
		Controller: controller,
		BasePath:   "/ops",
		Routes:     RouteConfig{Tab: "/board/tabs/:tab", Confirm: "/board/apply"},
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	actions := controller.ActionPaths()
	if actions.Tab != "/ops/board/tabs/" || actions.Confirm != "/ops/board/apply" {
		t.Fatalf("unexpected action paths %+v", actions)
	}
	if actions.Open != "/ops/dashboard/modal/open" {
		t.Fatalf("expected default open route under base, got %s", actions.Open)
	}
}

func TestRegisterLayoutRoute(t *testing.T) {
	fixture := newRouteFixture(t)

	ctx := newRouteContext()
	if err := fixture.route(t, "GET:/cnapp/dashboard/_layout")(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	status, body := lastJSON(t, ctx)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	payload, ok := body.(dashboard.LayoutPayload)
	if !ok || len(payload.Categories) != 3 {
		t.Fatalf("unexpected layout payload %#v", body)
	}
}

func TestRegisterOpenAndTabRoutes(t *testing.T) {
	fixture := newRouteFixture(t)

	ctx := newRouteContext()
	ctx.QueriesM["category_id"] = "registry"
	ctx.LocalsMock["actor_id"] = "alice"
	if err := fixture.route(t, "POST:/cnapp/dashboard/modal/open")(ctx); err != nil {
		t.Fatalf("open handler returned error: %v", err)
	}
	status, body := lastJSON(t, ctx)
	info, ok := body.(dashboard.SessionInfo)
	if status != http.StatusCreated || !ok || info.ActiveTab != dashboard.TabImage {
		t.Fatalf("unexpected open response %d %#v", status, body)
	}

	tab := fixture.route(t, "POST:/cnapp/dashboard/modal/tab/:tab")
	cases := []struct {
		tab  string
		code int
	}{
		{dashboard.TabCWPP, http.StatusOK},
		{"Nope", http.StatusNotFound},
		{"", http.StatusBadRequest},
	}
	for _, tc := range cases {
		ctx := newRouteContext()
		if tc.tab != "" {
			ctx.ParamsM["tab"] = tc.tab
		}
		if err := tab(ctx); err != nil {
			t.Fatalf("tab %q: handler returned error: %v", tc.tab, err)
		}
		if status, _ := lastJSON(t, ctx); status != tc.code {
			t.Fatalf("tab %q: expected %d, got %d", tc.tab, tc.code, status)
		}
	}
	if got := fixture.editor.Reconciler.ActiveTab(); got != dashboard.TabCWPP {
		t.Fatalf("expected active tab CWPP, got %q", got)
	}
}

func TestRegisterToggleRejectsBadJSON(t *testing.T) {
	fixture := newRouteFixture(t)
	toggle := fixture.route(t, "POST:/cnapp/dashboard/modal/toggle")

	ctx := newRouteContext()
	ctx.On("Body").Return([]byte("{"))
	if err := toggle(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if status, _ := lastJSON(t, ctx); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", status)
	}

	fixture.editor.Reconciler.Open(context.Background(), "registry")
	ctx = newRouteContext()
	ctx.On("Body").Return([]byte(`{"widget_id":"","checked":true}`))
	if err := toggle(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if status, _ := lastJSON(t, ctx); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty widget id, got %d", status)
	}
}

func TestRegisterConfirmRoute(t *testing.T) {
	fixture := newRouteFixture(t)
	confirm := fixture.route(t, "POST:/cnapp/dashboard/modal/confirm")

	ctx := newRouteContext()
	if err := confirm(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if status, _ := lastJSON(t, ctx); status != http.StatusConflict {
		t.Fatalf("expected 409 without a session, got %d", status)
	}

	fixture.editor.Reconciler.Open(context.Background(), "cspm")
	ctx = newRouteContext()
	ctx.On("Body").Return([]byte(`{"widget_id":"cloud-risk","checked":false}`))
	if err := fixture.route(t, "POST:/cnapp/dashboard/modal/toggle")(ctx); err != nil {
		t.Fatalf("toggle handler returned error: %v", err)
	}

	ctx = newRouteContext()
	if err := confirm(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	status, body := lastJSON(t, ctx)
	report, ok := body.(dashboard.MergeReport)
	if status != http.StatusOK || !ok || report.Version != 1 {
		t.Fatalf("unexpected confirm response %d %#v", status, body)
	}
	if len(fixture.editor.Store.VisibleWidgets("cspm")) != 1 {
		t.Fatalf("expected cloud-risk to be hidden after confirm")
	}
}

func TestRegisterWebSocketRoute(t *testing.T) {
	fixture := newRouteFixture(t)
	if _, ok := fixture.router.ws["/cnapp/dashboard/ws"]; !ok {
		t.Fatalf("expected websocket route to be registered")
	}
}

// --- Test helpers ---

type routeFixture struct {
	router *mockRouter
	editor *dashboard.Editor
}

func newRouteFixture(t *testing.T) routeFixture {
	t.Helper()
	editor, err := dashboard.NewEditor(nil, dashboard.EditorOptions{})
	if err != nil {
		t.Fatalf("NewEditor returned error: %v", err)
	}
	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		t.Fatalf("NewTemplateRenderer returned error: %v", err)
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Store:    editor.Store,
		Modal:    editor.Reconciler,
		Renderer: renderer,
		Viz:      stubViz{},
	})
	mr := newMockRouter()
	err = Register(Config[struct{}]{
		Router:     mr,
		Controller: controller,
		Modal:      editor.Reconciler,
		API:        httpapi.NewCommandExecutor(editor.Reconciler, nil),
		Broadcast:  dashboard.NewBroadcastHook(0),
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	return routeFixture{router: mr, editor: editor}
}

func (f routeFixture) route(t *testing.T, key string) router.HandlerFunc {
	t.Helper()
	h, ok := f.router.routes[key]
	if !ok {
		t.Fatalf("expected route %s to be registered", key)
	}
	return h
}

func newRouteContext() *router.MockContext {
	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background()).Maybe()
	ctx.On("JSON", mock.Anything, mock.Anything).Return(nil).Maybe()
	return ctx
}

func lastJSON(t *testing.T, ctx *router.MockContext) (int, any) {
	t.Helper()
	for i := len(ctx.Calls) - 1; i >= 0; i-- {
		if ctx.Calls[i].Method == "JSON" {
			return ctx.Calls[i].Arguments.Int(0), ctx.Calls[i].Arguments.Get(1)
		}
	}
	t.Fatalf("expected a JSON response")
	return 0, nil
}

type stubViz struct{}

func (stubViz) Render(w dashboard.Widget) (dashboard.RenderedWidget, error) {
	return dashboard.RenderedWidget{ID: w.ID, Name: w.Name, Kind: w.Kind, HTML: "<div>" + w.ID + "</div>"}, nil
}

type mockRouter struct {
	prefix string
	routes map[string]router.HandlerFunc
	ws     map[string]func(router.WebSocketContext) error
}

func newMockRouter() *mockRouter {
	return &mockRouter{
		routes: map[string]router.HandlerFunc{},
		ws:     map[string]func(router.WebSocketContext) error{},
	}
}

func (m *mockRouter) record(method router.HTTPMethod, path string, handler router.HandlerFunc) router.RouteInfo {
	m.routes[string(method)+":"+m.prefix+path] = handler
	return mockRouteInfo{}
}

func (m *mockRouter) Handle(method router.HTTPMethod, path string, handler router.HandlerFunc, _ ...router.MiddlewareFunc) router.RouteInfo {
	return m.record(method, path, handler)
}

func (m *mockRouter) Group(prefix string) router.Router[struct{}] {
	return &mockRouter{prefix: m.prefix + prefix, routes: m.routes, ws: m.ws}
}

func (m *mockRouter) Mount(prefix string) router.Router[struct{}] { return m.Group(prefix) }

func (m *mockRouter) WithGroup(path string, cb func(r router.Router[struct{}])) router.Router[struct{}] {
	group := m.Group(path)
	cb(group)
	return group
}

func (m *mockRouter) Use(...router.MiddlewareFunc) router.Router[struct{}] { return m }

func (m *mockRouter) Get(path string, handler router.HandlerFunc, _ ...router.MiddlewareFunc) router.RouteInfo {
	return m.record(router.GET, path, handler)
}

func (m *mockRouter) Post(path string, handler router.HandlerFunc, _ ...router.MiddlewareFunc) router.RouteInfo {
	return m.record(router.POST, path, handler)
}

func (m *mockRouter) Put(path string, handler router.HandlerFunc, _ ...router.MiddlewareFunc) router.RouteInfo {
	return m.record(router.PUT, path, handler)
}

func (m *mockRouter) Delete(path string, handler router.HandlerFunc, _ ...router.MiddlewareFunc) router.RouteInfo {
	return m.record(router.DELETE, path, handler)
}

func (m *mockRouter) Patch(path string, handler router.HandlerFunc, _ ...router.MiddlewareFunc) router.RouteInfo {
	return m.record(router.PATCH, path, handler)
}

func (m *mockRouter) Head(path string, handler router.HandlerFunc, _ ...router.MiddlewareFunc) router.RouteInfo {
	return m.record(router.HEAD, path, handler)
}

func (m *mockRouter) Static(string, string, ...router.Static) router.Router[struct{}] { return m }

func (m *mockRouter) WebSocket(path string, _ router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo {
	m.ws[m.prefix+path] = handler
	return mockRouteInfo{}
}

func (m *mockRouter) Routes() []router.RouteDefinition { return nil }

func (m *mockRouter) ValidateRoutes() []error { return nil }

func (m *mockRouter) PrintRoutes() {}

func (m *mockRouter) WithLogger(router.Logger) router.Router[struct{}] { return m }

type mockRouteInfo struct{}

func (r mockRouteInfo) SetName(string) router.RouteInfo        { return r }
func (r mockRouteInfo) SetDescription(string) router.RouteInfo { return r }
func (r mockRouteInfo) SetSummary(string) router.RouteInfo     { return r }
func (r mockRouteInfo) AddTags(...string) router.RouteInfo     { return r }
func (r mockRouteInfo) AddParameter(string, string, bool, map[string]any) router.RouteInfo {
	return r
}
func (r mockRouteInfo) SetRequestBody(string, bool, map[string]any) router.RouteInfo { return r }
func (r mockRouteInfo) AddResponse(int, string, map[string]any) router.RouteInfo     { return r }
