package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

type toggler interface {
	Toggle(widgetID string, checked bool) error
}

type confirmer interface {
	Confirm(ctx context.Context) (dashboard.MergeReport, error)
}

// ToggleWidgetInput records the desired checked state of one widget.
type ToggleWidgetInput struct {
	WidgetID string `json:"widget_id"`
	Checked  bool   `json:"checked"`
}

// ToggleWidgetCommand updates the in-progress selection.
type ToggleWidgetCommand struct {
	reconciler toggler
}

// NewToggleWidgetCommand builds the command.
func NewToggleWidgetCommand(reconciler toggler) *ToggleWidgetCommand {
	return &ToggleWidgetCommand{reconciler: reconciler}
}

var _ gocommand.Commander[ToggleWidgetInput] = (*ToggleWidgetCommand)(nil)

// Execute toggles the widget.
func (c *ToggleWidgetCommand) Execute(_ context.Context, msg ToggleWidgetInput) error {
	if c.reconciler == nil {
		return errors.New("toggle command requires reconciler")
	}
	return c.reconciler.Toggle(msg.WidgetID, msg.Checked)
}

// ConfirmSelectionInput merges the selection into the dashboard. When Report
// is set it receives the merge report.
type ConfirmSelectionInput struct {
	Actor  dashboard.ActivityContext `json:"actor"`
	Report *dashboard.MergeReport    `json:"-"`
}

// ConfirmSelectionCommand applies the selection and emits telemetry.
type ConfirmSelectionCommand struct {
	reconciler confirmer
	telemetry  Telemetry
}

// NewConfirmSelectionCommand builds the command.
func NewConfirmSelectionCommand(reconciler confirmer, telemetry Telemetry) *ConfirmSelectionCommand {
	return &ConfirmSelectionCommand{reconciler: reconciler, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ConfirmSelectionInput] = (*ConfirmSelectionCommand)(nil)

// Execute confirms the session.
func (c *ConfirmSelectionCommand) Execute(ctx context.Context, msg ConfirmSelectionInput) error {
	if c.reconciler == nil {
		return errors.New("confirm command requires reconciler")
	}
	ctx = withActor(ctx, msg.Actor)
	report, err := c.reconciler.Confirm(ctx)
	if err != nil {
		return err
	}
	if msg.Report != nil {
		*msg.Report = report
	}
	c.telemetry.Record(ctx, "dashboard.catalog.confirm", map[string]any{
		"version":  report.Version,
		"added":    len(report.Added),
		"warnings": len(report.Warnings),
	})
	return nil
}

func withActor(ctx context.Context, actor dashboard.ActivityContext) context.Context {
	if actor.IsZero() {
		return ctx
	}
	return dashboard.ContextWithActivity(ctx, actor)
}
