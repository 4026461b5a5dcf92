package tasks

import (
	"context"
	"log/slog"

	"fxpulse/app/digest"
)

// PassRunner is the pipeline surface the scheduler drives.
type PassRunner interface {
	RunAlertPass(ctx context.Context) error
	RunDigestPass(ctx context.Context, kind digest.Kind) error
}

type AlertPassTask struct {
	Task
	runner PassRunner
}

func NewAlertPassTask(runner PassRunner) *AlertPassTask {
	return &AlertPassTask{
		Task:   NewTask(TaskTypeAlertPass),
		runner: runner,
	}
}

func (t *AlertPassTask) Execute(ctx context.Context) error {
	if err := t.runner.RunAlertPass(ctx); err != nil {
		return err
	}
	slog.Debug("Task completed", "type", string(t.Type), "duration", t.GetDuration().String())
	return nil
}

type DigestPassTask struct {
	Task
	runner PassRunner
	kind   digest.Kind
}

func NewDigestPassTask(runner PassRunner, kind digest.Kind) *DigestPassTask {
	return &DigestPassTask{
		Task:   NewTask(TaskTypeDigestPass),
		runner: runner,
		kind:   kind,
	}
}

func (t *DigestPassTask) Execute(ctx context.Context) error {
	if err := t.runner.RunDigestPass(ctx, t.kind); err != nil {
		return err
	}
	slog.Debug("Task completed", "type", string(t.Type), "kind", string(t.kind), "duration", t.GetDuration().String())
	return nil
}
