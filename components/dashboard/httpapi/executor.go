package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/retailjet/glance/components/dashboard/commands"
)

// ErrCommandUnavailable is returned when an executor has no command wired for
// the requested operation.
var ErrCommandUnavailable = errors.New("httpapi: command not configured")

// Executor runs the dashboard mutations behind the HTTP routes.
type Executor interface {
	Assign(ctx context.Context, input commands.AssignWidgetInput) error
	Update(ctx context.Context, input commands.UpdateWidgetInput) error
	Remove(ctx context.Context, input commands.RemoveWidgetInput) error
	Reorder(ctx context.Context, input commands.ReorderWidgetsInput) error
	Refresh(ctx context.Context, input commands.RefreshWidgetInput) error
	Preferences(ctx context.Context, input commands.SaveLayoutPreferencesInput) error
}

// CommandExecutor adapts go-command commanders to Executor.
type CommandExecutor struct {
	AssignCommander      gocommand.Commander[commands.AssignWidgetInput]
	UpdateCommander      gocommand.Commander[commands.UpdateWidgetInput]
	RemoveCommander      gocommand.Commander[commands.RemoveWidgetInput]
	ReorderCommander     gocommand.Commander[commands.ReorderWidgetsInput]
	RefreshCommander     gocommand.Commander[commands.RefreshWidgetInput]
	PreferencesCommander gocommand.Commander[commands.SaveLayoutPreferencesInput]
}

var _ Executor = (*CommandExecutor)(nil)

func (e *CommandExecutor) Assign(ctx context.Context, input commands.AssignWidgetInput) error {
	return execute(ctx, e.AssignCommander, input)
}

func (e *CommandExecutor) Update(ctx context.Context, input commands.UpdateWidgetInput) error {
	return execute(ctx, e.UpdateCommander, input)
}

func (e *CommandExecutor) Remove(ctx context.Context, input commands.RemoveWidgetInput) error {
	return execute(ctx, e.RemoveCommander, input)
}

func (e *CommandExecutor) Reorder(ctx context.Context, input commands.ReorderWidgetsInput) error {
	return execute(ctx, e.ReorderCommander, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshWidgetInput) error {
	return execute(ctx, e.RefreshCommander, input)
}

func (e *CommandExecutor) Preferences(ctx context.Context, input commands.SaveLayoutPreferencesInput) error {
	return execute(ctx, e.PreferencesCommander, input)
}

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], input T) error {
	if cmd == nil {
		return ErrCommandUnavailable
	}
	return cmd.Execute(ctx, input)
}
