package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/queries"
	gocommand "github.com/goliatone/go-command"
)

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Open    gocommand.Commander[commands.OpenCatalogInput]
	Tab     gocommand.Commander[commands.SwitchTabInput]
	Toggle  gocommand.Commander[commands.ToggleWidgetInput]
	Confirm gocommand.Commander[commands.ConfirmSelectionInput]
	Cancel  gocommand.Commander[commands.CancelSelectionInput]
	Search  gocommand.Commander[commands.SearchInput]
	Layout  gocommand.Querier[queries.LayoutInput, dashboard.LayoutPayload]
	Modal   gocommand.Querier[queries.ModalStateInput, dashboard.ModalState]
}

// HandleLayout writes the rendered dashboard as JSON.
func (h *Handlers) HandleLayout(w http.ResponseWriter, r *http.Request) {
	payload, err := h.Layout.Query(r.Context(), queries.LayoutInput{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// HandleModal writes the modal state as JSON.
func (h *Handlers) HandleModal(w http.ResponseWriter, r *http.Request) {
	state, err := h.Modal.Query(r.Context(), queries.ModalStateInput{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// HandleOpen opens the add-widget modal for the category_id query parameter.
func (h *Handlers) HandleOpen(w http.ResponseWriter, r *http.Request) {
	var info dashboard.SessionInfo
	input := commands.OpenCatalogInput{
		CategoryID: r.URL.Query().Get("category_id"),
		Actor:      actorFromRequest(r),
		Session:    &info,
	}
	if err := h.Open.Execute(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// HandleSwitchTab changes the active tab.
func (h *Handlers) HandleSwitchTab(w http.ResponseWriter, r *http.Request, tab string) {
	if err := h.Tab.Execute(r.Context(), commands.SwitchTabInput{Tab: tab}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggle records a checkbox change.
func (h *Handlers) HandleToggle(w http.ResponseWriter, r *http.Request) {
	var payload commands.ToggleWidgetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Toggle.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleConfirm merges the selection and returns the merge report.
func (h *Handlers) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	var report dashboard.MergeReport
	input := commands.ConfirmSelectionInput{Actor: actorFromRequest(r), Report: &report}
	if err := h.Confirm.Execute(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleCancel discards the selection.
func (h *Handlers) HandleCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.Cancel.Execute(r.Context(), commands.CancelSelectionInput{}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSearch stores the search term.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var payload commands.SearchInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Search.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatusFor maps dashboard errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrNoSession):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrUnknownTab):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrCannotPlaceWidget):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dashboard.ErrInvalidWidgetID), errors.Is(err, commands.ErrTabRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), StatusFor(err))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func actorFromRequest(r *http.Request) dashboard.ActivityContext {
	return dashboard.ActivityContext{
		ActorID:  r.Header.Get("X-Actor-ID"),
		UserID:   r.Header.Get("X-User-ID"),
		TenantID: r.Header.Get("X-Tenant-ID"),
	}
}
