package httpapi

import (
	"context"
	"errors"

	"github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/commands"
	gocommand "github.com/goliatone/go-command"
)

// Executor is the transport-neutral surface used by router adapters.
type Executor interface {
	Open(ctx context.Context, input commands.OpenCatalogInput) (dashboard.SessionInfo, error)
	SwitchTab(ctx context.Context, input commands.SwitchTabInput) error
	Toggle(ctx context.Context, input commands.ToggleWidgetInput) error
	Confirm(ctx context.Context, input commands.ConfirmSelectionInput) (dashboard.MergeReport, error)
	Cancel(ctx context.Context) error
	Search(ctx context.Context, input commands.SearchInput) error
}

// CommandExecutor adapts go-command commanders to the Executor interface.
type CommandExecutor struct {
	OpenCommander    gocommand.Commander[commands.OpenCatalogInput]
	TabCommander     gocommand.Commander[commands.SwitchTabInput]
	ToggleCommander  gocommand.Commander[commands.ToggleWidgetInput]
	ConfirmCommander gocommand.Commander[commands.ConfirmSelectionInput]
	CancelCommander  gocommand.Commander[commands.CancelSelectionInput]
	SearchCommander  gocommand.Commander[commands.SearchInput]
}

// NewCommandExecutor wires the standard commands to a reconciler.
func NewCommandExecutor(reconciler *dashboard.Reconciler, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		OpenCommander:    commands.NewOpenCatalogCommand(reconciler, telemetry),
		TabCommander:     commands.NewSwitchTabCommand(reconciler, telemetry),
		ToggleCommander:  commands.NewToggleWidgetCommand(reconciler),
		ConfirmCommander: commands.NewConfirmSelectionCommand(reconciler, telemetry),
		CancelCommander:  commands.NewCancelSelectionCommand(reconciler),
		SearchCommander:  commands.NewSearchCommand(reconciler),
	}
}

var _ Executor = (*CommandExecutor)(nil)

var errCommandNotConfigured = errors.New("httpapi: command not configured")

func (e *CommandExecutor) Open(ctx context.Context, input commands.OpenCatalogInput) (dashboard.SessionInfo, error) {
	if e.OpenCommander == nil {
		return dashboard.SessionInfo{}, errCommandNotConfigured
	}
	var info dashboard.SessionInfo
	input.Session = &info
	if err := e.OpenCommander.Execute(ctx, input); err != nil {
		return dashboard.SessionInfo{}, err
	}
	return info, nil
}

func (e *CommandExecutor) SwitchTab(ctx context.Context, input commands.SwitchTabInput) error {
	if e.TabCommander == nil {
		return errCommandNotConfigured
	}
	return e.TabCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Toggle(ctx context.Context, input commands.ToggleWidgetInput) error {
	if e.ToggleCommander == nil {
		return errCommandNotConfigured
	}
	return e.ToggleCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Confirm(ctx context.Context, input commands.ConfirmSelectionInput) (dashboard.MergeReport, error) {
	if e.ConfirmCommander == nil {
		return dashboard.MergeReport{}, errCommandNotConfigured
	}
	var report dashboard.MergeReport
	input.Report = &report
	if err := e.ConfirmCommander.Execute(ctx, input); err != nil {
		return dashboard.MergeReport{}, err
	}
	return report, nil
}

func (e *CommandExecutor) Cancel(ctx context.Context) error {
	if e.CancelCommander == nil {
		return errCommandNotConfigured
	}
	return e.CancelCommander.Execute(ctx, commands.CancelSelectionInput{})
}

func (e *CommandExecutor) Search(ctx context.Context, input commands.SearchInput) error {
	if e.SearchCommander == nil {
		return errCommandNotConfigured
	}
	return e.SearchCommander.Execute(ctx, input)
}
