package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/queries"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

type stubQuerier[T any, R any] struct {
	result R
	err    error
}

func (s *stubQuerier[T, R]) Query(context.Context, T) (R, error) {
	return s.result, s.err
}

func TestHandleToggle(t *testing.T) {
	toggle := &stubCommander[commands.ToggleWidgetInput]{}
	api := &Handlers{Toggle: toggle}
	buf, _ := json.Marshal(commands.ToggleWidgetInput{WidgetID: "cloud-risk", Checked: false})
	req := httptest.NewRequest(http.MethodPost, "/modal/toggle", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleToggle(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if toggle.last.WidgetID != "cloud-risk" {
		t.Fatalf("expected widget id propagation")
	}

	rec = httptest.NewRecorder()
	api.HandleToggle(rec, httptest.NewRequest(http.MethodPost, "/modal/toggle", bytes.NewReader([]byte("{"))))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", rec.Code)
	}
}

func TestHandleOpenPassesCategoryAndActor(t *testing.T) {
	open := &stubCommander[commands.OpenCatalogInput]{}
	api := &Handlers{Open: open}
	req := httptest.NewRequest(http.MethodPost, "/modal/open?category_id=registry", nil)
	req.Header.Set("X-Actor-ID", "alice")
	rec := httptest.NewRecorder()
	api.HandleOpen(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if open.last.CategoryID != "registry" || open.last.Actor.ActorID != "alice" {
		t.Fatalf("unexpected input %+v", open.last)
	}
}

func TestHandleConfirmMapsErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{nil, http.StatusOK},
		{dashboard.ErrNoSession, http.StatusConflict},
		{fmt.Errorf("wrap: %w", dashboard.ErrCannotPlaceWidget), http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		confirm := &stubCommander[commands.ConfirmSelectionInput]{err: tc.err}
		api := &Handlers{Confirm: confirm}
		rec := httptest.NewRecorder()
		api.HandleConfirm(rec, httptest.NewRequest(http.MethodPost, "/modal/confirm", nil))
		if rec.Code != tc.code {
			t.Fatalf("error %v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
	}
}

func TestHandleSwitchTabUnknown(t *testing.T) {
	tab := &stubCommander[commands.SwitchTabInput]{err: dashboard.ErrUnknownTab}
	api := &Handlers{Tab: tab}
	rec := httptest.NewRecorder()
	api.HandleSwitchTab(rec, httptest.NewRequest(http.MethodPost, "/modal/tab/Nope", nil), "Nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if tab.last.Tab != "Nope" {
		t.Fatalf("expected tab propagation")
	}
}

func TestHandlersRejectMissingInputAsBadRequest(t *testing.T) {
	editor, err := dashboard.NewEditor(nil, dashboard.EditorOptions{})
	if err != nil {
		t.Fatalf("NewEditor returned error: %v", err)
	}
	api := &Handlers{
		Open:   commands.NewOpenCatalogCommand(editor.Reconciler, nil),
		Tab:    commands.NewSwitchTabCommand(editor.Reconciler, nil),
		Toggle: commands.NewToggleWidgetCommand(editor.Reconciler),
	}
	api.HandleOpen(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/modal/open?category_id=cspm", nil))

	buf, _ := json.Marshal(commands.ToggleWidgetInput{WidgetID: "", Checked: true})
	rec := httptest.NewRecorder()
	api.HandleToggle(rec, httptest.NewRequest(http.MethodPost, "/modal/toggle", bytes.NewReader(buf)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty widget id, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	api.HandleSwitchTab(rec, httptest.NewRequest(http.MethodPost, "/modal/tab/", nil), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty tab, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestStatusForInputErrors(t *testing.T) {
	if got := StatusFor(fmt.Errorf("wrap: %w", dashboard.ErrInvalidWidgetID)); got != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid widget id, got %d", got)
	}
	if got := StatusFor(commands.ErrTabRequired); got != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing tab, got %d", got)
	}
}

func TestHandleLayoutAndModal(t *testing.T) {
	api := &Handlers{
		Layout: &stubQuerier[queries.LayoutInput, dashboard.LayoutPayload]{result: dashboard.LayoutPayload{Title: "CNAPP Dashboard", Version: 2}},
		Modal:  &stubQuerier[queries.ModalStateInput, dashboard.ModalState]{result: dashboard.ModalState{Open: true, ActiveTab: dashboard.TabCWPP}},
	}
	rec := httptest.NewRecorder()
	api.HandleLayout(rec, httptest.NewRequest(http.MethodGet, "/_layout", nil))
	var payload dashboard.LayoutPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode layout: %v", err)
	}
	if payload.Version != 2 {
		t.Fatalf("expected version 2, got %d", payload.Version)
	}

	rec = httptest.NewRecorder()
	api.HandleModal(rec, httptest.NewRequest(http.MethodGet, "/modal", nil))
	var state dashboard.ModalState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode modal: %v", err)
	}
	if !state.Open || state.ActiveTab != dashboard.TabCWPP {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestHandlersEndToEnd(t *testing.T) {
	editor, err := dashboard.NewEditor(nil, dashboard.EditorOptions{})
	if err != nil {
		t.Fatalf("NewEditor returned error: %v", err)
	}
	api := &Handlers{
		Open:    commands.NewOpenCatalogCommand(editor.Reconciler, nil),
		Toggle:  commands.NewToggleWidgetCommand(editor.Reconciler),
		Confirm: commands.NewConfirmSelectionCommand(editor.Reconciler, nil),
	}
	api.HandleOpen(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/modal/open?category_id=cspm", nil))
	buf, _ := json.Marshal(commands.ToggleWidgetInput{WidgetID: "cloud-compliance", Checked: true})
	api.HandleToggle(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/modal/toggle", bytes.NewReader(buf)))
	rec := httptest.NewRecorder()
	api.HandleConfirm(rec, httptest.NewRequest(http.MethodPost, "/modal/confirm", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var report dashboard.MergeReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Version != 1 || len(report.Added) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestCommandExecutorRoundTrip(t *testing.T) {
	editor, err := dashboard.NewEditor(nil, dashboard.EditorOptions{Policy: dashboard.PolicyCreate})
	if err != nil {
		t.Fatalf("NewEditor returned error: %v", err)
	}
	exec := NewCommandExecutor(editor.Reconciler, nil)
	ctx := context.Background()

	info, err := exec.Open(ctx, commands.OpenCatalogInput{CategoryID: "cwpp"})
	if err != nil || info.ActiveTab != dashboard.TabCWPP {
		t.Fatalf("unexpected open result %+v (%v)", info, err)
	}
	if err := exec.SwitchTab(ctx, commands.SwitchTabInput{Tab: dashboard.TabTicket}); err != nil {
		t.Fatalf("SwitchTab returned error: %v", err)
	}
	if err := exec.Toggle(ctx, commands.ToggleWidgetInput{WidgetID: "ticket-trend", Checked: true}); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	report, err := exec.Confirm(ctx, commands.ConfirmSelectionInput{})
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if len(report.Created) != 1 || report.Created[0] != "ticket" {
		t.Fatalf("expected ticket category to be created, got %+v", report)
	}
	if err := exec.Cancel(ctx); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if err := (&CommandExecutor{}).Search(ctx, commands.SearchInput{}); !errors.Is(err, errCommandNotConfigured) {
		t.Fatalf("expected unconfigured error, got %v", err)
	}
}
