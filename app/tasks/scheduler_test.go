package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fxpulse/app/digest"
)

type fakeRunner struct {
	mu          sync.Mutex
	alertPasses int
	digestKinds []digest.Kind
	err         error
}

func (r *fakeRunner) RunAlertPass(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alertPasses++
	return r.err
}

func (r *fakeRunner) RunDigestPass(_ context.Context, kind digest.Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.digestKinds = append(r.digestKinds, kind)
	return r.err
}

func TestScheduler_ExecutesEnqueuedTasks(t *testing.T) {
	runner := &fakeRunner{}
	scheduler := NewScheduler(runner, time.UTC, time.Hour, 2)
	scheduler.Start()

	if err := scheduler.EnqueueTask(NewAlertPassTask(runner)); err != nil {
		t.Fatalf("EnqueueTask failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		runner.mu.Lock()
		// One pass from startup enqueue plus the explicit one.
		done := runner.alertPasses >= 2
		runner.mu.Unlock()
		if done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for task execution")
		}
		time.Sleep(10 * time.Millisecond)
	}

	scheduler.Stop()
}

func TestScheduler_EnqueueAfterStop(t *testing.T) {
	runner := &fakeRunner{}
	scheduler := NewScheduler(runner, time.UTC, time.Hour, 1)
	scheduler.Start()
	scheduler.Stop()

	if err := scheduler.EnqueueTask(NewAlertPassTask(runner)); err == nil {
		t.Error("Expected an error enqueueing after Stop")
	}
}

func TestScheduler_DueDigests(t *testing.T) {
	scheduler := NewScheduler(&fakeRunner{}, time.UTC, time.Hour, 1)

	// Before the pivot nothing is due.
	early := time.Date(2024, 1, 15, 5, 0, 0, 0, time.UTC)
	if due := scheduler.dueDigests(early); len(due) != 0 {
		t.Errorf("Expected no digests before 06:00, got %v", due)
	}

	// Monday after the pivot: morning and weekly.
	monday := time.Date(2024, 1, 15, 6, 30, 0, 0, time.UTC)
	due := scheduler.dueDigests(monday)
	if len(due) != 2 || due[0] != digest.KindMorning || due[1] != digest.KindWeekly {
		t.Errorf("Expected [morning weekly], got %v", due)
	}

	// Once marked, the same day yields nothing.
	scheduler.markDigestEnqueued(digest.KindMorning, monday)
	scheduler.markDigestEnqueued(digest.KindWeekly, monday)
	if due := scheduler.dueDigests(monday.Add(time.Hour)); len(due) != 0 {
		t.Errorf("Expected no repeat digests, got %v", due)
	}

	// Tuesday: only morning.
	tuesday := time.Date(2024, 1, 16, 7, 0, 0, 0, time.UTC)
	due = scheduler.dueDigests(tuesday)
	if len(due) != 1 || due[0] != digest.KindMorning {
		t.Errorf("Expected [morning] on Tuesday, got %v", due)
	}
}

func TestTask_RetryAccounting(t *testing.T) {
	task := NewTask(TaskTypeAlertPass)

	if !task.CanRetry() {
		t.Error("Fresh task should be retryable")
	}
	for i := 0; i < DefaultMaxRetries; i++ {
		task.IncrementRetryCount()
	}
	if task.CanRetry() {
		t.Error("Task at max retries must not retry again")
	}
}

func TestAlertPassTask_PropagatesError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("boom")}
	task := NewAlertPassTask(runner)
	task.Start()

	if err := task.Execute(context.Background()); err == nil {
		t.Error("Expected the runner error to propagate")
	}
}
