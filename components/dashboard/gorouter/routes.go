package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/httpapi"
)

// ActorResolver extracts the acting user from a router.Context.
type ActorResolver func(router.Context) dashboard.ActivityContext

// Config wires go-router with the dashboard controller, executor and broadcast hook.
type Config[T any] struct {
	Router        router.Router[T]
	Controller    *dashboard.Controller
	Modal         dashboard.ModalReader
	API           httpapi.Executor
	Broadcast     *dashboard.BroadcastHook
	ActorResolver ActorResolver
	BasePath      string
	Routes        RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML      string
	Layout    string
	Modal     string
	Open      string
	Tab       string
	Toggle    string
	Confirm   string
	Cancel    string
	Search    string
	WebSocket string
}

// Register mounts dashboard routes (HTML, JSON, modal actions, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/cnapp"
	}
	resolver := cfg.ActorResolver
	if resolver == nil {
		resolver = defaultActorResolver
	}

	cfg.Controller.SetActionPaths(actionPaths(base, routes))

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		payload, err := cfg.Controller.LayoutPayload(ctx.Context())
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	if cfg.Modal != nil {
		group.Get(routes.Modal, router.WrapHandler(func(ctx router.Context) error {
			return ctx.JSON(http.StatusOK, cfg.Modal.State())
		}))
	}

	if cfg.API != nil {
		registerAPI(group, cfg.API, resolver, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ActorResolver, routes RouteConfig) {
	r.Post(routes.Open, router.WrapHandler(func(ctx router.Context) error {
		input := commands.OpenCatalogInput{
			CategoryID: ctx.Query("category_id"),
			Actor:      resolver(ctx),
		}
		info, err := api.Open(ctx.Context(), input)
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusCreated, info)
	}))

	r.Post(routes.Tab, router.WrapHandler(func(ctx router.Context) error {
		tab := ctx.Param("tab")
		if tab == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("tab is required"))
		}
		if err := api.SwitchTab(ctx.Context(), commands.SwitchTabInput{Tab: tab}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "switched", "tab": tab})
	}))

	r.Post(routes.Toggle, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ToggleWidgetInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Toggle(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "toggled"})
	}))

	r.Post(routes.Confirm, router.WrapHandler(func(ctx router.Context) error {
		report, err := api.Confirm(ctx.Context(), commands.ConfirmSelectionInput{Actor: resolver(ctx)})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, report)
	}))

	r.Post(routes.Cancel, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Cancel(ctx.Context()); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "canceled"})
	}))

	r.Post(routes.Search, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SearchInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Search(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "stored"})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func defaultActorResolver(ctx router.Context) dashboard.ActivityContext {
	var actor dashboard.ActivityContext
	if v, ok := ctx.Locals("actor_id").(string); ok {
		actor.ActorID = v
	}
	if v, ok := ctx.Locals("user_id").(string); ok {
		actor.UserID = v
	}
	if v, ok := ctx.Locals("tenant_id").(string); ok {
		actor.TenantID = v
	}
	if actor.ActorID == "" {
		actor.ActorID = actor.UserID
	}
	return actor
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

// actionPaths maps the registered command routes to the URLs the page posts to.
func actionPaths(base string, routes RouteConfig) dashboard.ActionPaths {
	return dashboard.ActionPaths{
		Open:    base + routes.Open,
		Tab:     base + strings.TrimSuffix(routes.Tab, ":tab"),
		Toggle:  base + routes.Toggle,
		Confirm: base + routes.Confirm,
		Cancel:  base + routes.Cancel,
		Search:  base + routes.Search,
	}
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Layout == "" {
		routes.Layout = "/dashboard/_layout"
	}
	if routes.Modal == "" {
		routes.Modal = "/dashboard/modal"
	}
	if routes.Open == "" {
		routes.Open = "/dashboard/modal/open"
	}
	if routes.Tab == "" {
		routes.Tab = "/dashboard/modal/tab/:tab"
	}
	if routes.Toggle == "" {
		routes.Toggle = "/dashboard/modal/toggle"
	}
	if routes.Confirm == "" {
		routes.Confirm = "/dashboard/modal/confirm"
	}
	if routes.Cancel == "" {
		routes.Cancel = "/dashboard/modal/cancel"
	}
	if routes.Search == "" {
		routes.Search = "/dashboard/search"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}
