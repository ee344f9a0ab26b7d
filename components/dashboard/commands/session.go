package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// ErrTabRequired is returned when a tab switch names no tab.
var ErrTabRequired = errors.New("switch tab command requires tab")

type opener interface {
	Open(ctx context.Context, categoryID string) dashboard.SessionInfo
}

type tabSwitcher interface {
	SetActiveTab(tab string) error
}

type canceler interface {
	Cancel(ctx context.Context)
}

type searcher interface {
	Search(term string)
}

// OpenCatalogInput starts an add-widget session. CategoryID may be empty when
// the modal is opened from the header button.
type OpenCatalogInput struct {
	CategoryID string                    `json:"category_id"`
	Actor      dashboard.ActivityContext `json:"actor"`
	Session    *dashboard.SessionInfo    `json:"-"`
}

// OpenCatalogCommand opens (or reopens) the add-widget modal.
type OpenCatalogCommand struct {
	reconciler opener
	telemetry  Telemetry
}

// NewOpenCatalogCommand builds the command.
func NewOpenCatalogCommand(reconciler opener, telemetry Telemetry) *OpenCatalogCommand {
	return &OpenCatalogCommand{reconciler: reconciler, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[OpenCatalogInput] = (*OpenCatalogCommand)(nil)

// Execute opens the session and stores its info on msg.Session when provided.
func (c *OpenCatalogCommand) Execute(ctx context.Context, msg OpenCatalogInput) error {
	if c.reconciler == nil {
		return errors.New("open catalog command requires reconciler")
	}
	ctx = withActor(ctx, msg.Actor)
	info := c.reconciler.Open(ctx, msg.CategoryID)
	if msg.Session != nil {
		*msg.Session = info
	}
	c.telemetry.Record(ctx, "dashboard.catalog.open", map[string]any{
		"category_id": msg.CategoryID,
		"tab":         info.ActiveTab,
	})
	return nil
}

// SwitchTabInput selects the visible catalog tab.
type SwitchTabInput struct {
	Tab string `json:"tab"`
}

// SwitchTabCommand changes the active tab without touching the selection.
type SwitchTabCommand struct {
	reconciler tabSwitcher
	telemetry  Telemetry
}

// NewSwitchTabCommand builds the command.
func NewSwitchTabCommand(reconciler tabSwitcher, telemetry Telemetry) *SwitchTabCommand {
	return &SwitchTabCommand{reconciler: reconciler, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SwitchTabInput] = (*SwitchTabCommand)(nil)

// Execute switches the tab.
func (c *SwitchTabCommand) Execute(ctx context.Context, msg SwitchTabInput) error {
	if c.reconciler == nil {
		return errors.New("switch tab command requires reconciler")
	}
	if msg.Tab == "" {
		return ErrTabRequired
	}
	if err := c.reconciler.SetActiveTab(msg.Tab); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.catalog.tab", map[string]any{"tab": msg.Tab})
	return nil
}

// CancelSelectionInput closes the modal without changes.
type CancelSelectionInput struct{}

// CancelSelectionCommand discards the in-progress selection.
type CancelSelectionCommand struct {
	reconciler canceler
}

// NewCancelSelectionCommand builds the command.
func NewCancelSelectionCommand(reconciler canceler) *CancelSelectionCommand {
	return &CancelSelectionCommand{reconciler: reconciler}
}

var _ gocommand.Commander[CancelSelectionInput] = (*CancelSelectionCommand)(nil)

// Execute cancels the session.
func (c *CancelSelectionCommand) Execute(ctx context.Context, _ CancelSelectionInput) error {
	if c.reconciler == nil {
		return errors.New("cancel command requires reconciler")
	}
	c.reconciler.Cancel(ctx)
	return nil
}

// SearchInput carries the free-text term typed in the header search box.
type SearchInput struct {
	Term string `json:"term"`
}

// SearchCommand records the search term. It does not filter widgets.
type SearchCommand struct {
	reconciler searcher
}

// NewSearchCommand builds the command.
func NewSearchCommand(reconciler searcher) *SearchCommand {
	return &SearchCommand{reconciler: reconciler}
}

var _ gocommand.Commander[SearchInput] = (*SearchCommand)(nil)

// Execute stores the term.
func (c *SearchCommand) Execute(_ context.Context, msg SearchInput) error {
	if c.reconciler == nil {
		return errors.New("search command requires reconciler")
	}
	c.reconciler.Search(msg.Term)
	return nil
}
