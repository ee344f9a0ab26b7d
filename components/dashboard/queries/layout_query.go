package queries

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

type layoutBuilder interface {
	LayoutPayload(ctx context.Context) (dashboard.LayoutPayload, error)
}

// LayoutInput requests the rendered dashboard.
type LayoutInput struct{}

// LayoutQuery renders every visible widget of the current snapshot.
type LayoutQuery struct {
	controller layoutBuilder
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(controller layoutBuilder) *LayoutQuery {
	return &LayoutQuery{controller: controller}
}

var _ gocommand.Querier[LayoutInput, dashboard.LayoutPayload] = (*LayoutQuery)(nil)

// Query builds the layout payload.
func (q *LayoutQuery) Query(ctx context.Context, _ LayoutInput) (dashboard.LayoutPayload, error) {
	if q.controller == nil {
		return dashboard.LayoutPayload{}, errors.New("layout query requires controller")
	}
	return q.controller.LayoutPayload(ctx)
}

type snapshotReader interface {
	Snapshot() dashboard.Snapshot
}

// SnapshotInput requests the raw category tree.
type SnapshotInput struct{}

// SnapshotQuery returns the current snapshot, including inactive widgets.
type SnapshotQuery struct {
	store snapshotReader
}

// NewSnapshotQuery builds the query.
func NewSnapshotQuery(store snapshotReader) *SnapshotQuery {
	return &SnapshotQuery{store: store}
}

var _ gocommand.Querier[SnapshotInput, dashboard.Snapshot] = (*SnapshotQuery)(nil)

// Query returns a copy of the snapshot.
func (q *SnapshotQuery) Query(context.Context, SnapshotInput) (dashboard.Snapshot, error) {
	if q.store == nil {
		return dashboard.Snapshot{}, errors.New("snapshot query requires store")
	}
	return q.store.Snapshot(), nil
}

type visibleReader interface {
	VisibleWidgets(categoryID string) []dashboard.Widget
}

// VisibleWidgetsInput selects the category to read.
type VisibleWidgetsInput struct {
	CategoryID string `json:"category_id"`
}

// VisibleWidgetsQuery lists the active widgets of one category.
type VisibleWidgetsQuery struct {
	store visibleReader
}

// NewVisibleWidgetsQuery builds the query.
func NewVisibleWidgetsQuery(store visibleReader) *VisibleWidgetsQuery {
	return &VisibleWidgetsQuery{store: store}
}

var _ gocommand.Querier[VisibleWidgetsInput, []dashboard.Widget] = (*VisibleWidgetsQuery)(nil)

// Query returns the visible widgets; unknown categories yield an empty list.
func (q *VisibleWidgetsQuery) Query(_ context.Context, input VisibleWidgetsInput) ([]dashboard.Widget, error) {
	if q.store == nil {
		return nil, errors.New("visible widgets query requires store")
	}
	widgets := q.store.VisibleWidgets(input.CategoryID)
	if widgets == nil {
		widgets = []dashboard.Widget{}
	}
	return widgets, nil
}
