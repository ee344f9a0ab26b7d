package queries

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

type modalReader interface {
	State() dashboard.ModalState
}

type tabLister interface {
	ListForTab(tab string) []dashboard.TabEntry
}

// ModalStateInput requests the add-widget modal state.
type ModalStateInput struct{}

// ModalStateQuery exposes the open session, active tab and its entries.
type ModalStateQuery struct {
	reconciler modalReader
}

// NewModalStateQuery builds the query.
func NewModalStateQuery(reconciler modalReader) *ModalStateQuery {
	return &ModalStateQuery{reconciler: reconciler}
}

var _ gocommand.Querier[ModalStateInput, dashboard.ModalState] = (*ModalStateQuery)(nil)

// Query returns the modal state.
func (q *ModalStateQuery) Query(context.Context, ModalStateInput) (dashboard.ModalState, error) {
	if q.reconciler == nil {
		return dashboard.ModalState{}, errors.New("modal query requires reconciler")
	}
	return q.reconciler.State(), nil
}

// TabEntriesInput selects a catalog tab.
type TabEntriesInput struct {
	Tab string `json:"tab"`
}

// TabEntriesQuery lists the widgets offered under a tab.
type TabEntriesQuery struct {
	reconciler tabLister
}

// NewTabEntriesQuery builds the query.
func NewTabEntriesQuery(reconciler tabLister) *TabEntriesQuery {
	return &TabEntriesQuery{reconciler: reconciler}
}

var _ gocommand.Querier[TabEntriesInput, []dashboard.TabEntry] = (*TabEntriesQuery)(nil)

// Query lists the tab entries, failing for tabs that are not configured.
func (q *TabEntriesQuery) Query(_ context.Context, input TabEntriesInput) ([]dashboard.TabEntry, error) {
	if q.reconciler == nil {
		return nil, errors.New("tab entries query requires reconciler")
	}
	entries := q.reconciler.ListForTab(input.Tab)
	if entries == nil {
		return nil, dashboard.ErrUnknownTab
	}
	return entries, nil
}
