package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fxpulse/app/digest"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// Scheduler drives recurring pipeline passes in daemon mode: an alert
// pass every interval, the morning digest once per day after its 06:00
// pivot, and the weekly digest on Mondays.
type Scheduler struct {
	runner      PassRunner
	location    *time.Location
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	// Passes are run-to-completion and never overlap, regardless of
	// worker count.
	passMu sync.Mutex

	mu         sync.Mutex
	lastDigest map[digest.Kind]string
}

func NewScheduler(runner PassRunner, location *time.Location, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:      runner,
		location:    location,
		interval:    interval,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
		lastDigest:  map[digest.Kind]string{},
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueTasks() {
	if err := s.EnqueueTask(NewAlertPassTask(s.runner)); err != nil {
		slog.Warn("Failed to enqueue AlertPassTask", "error", err)
	}

	now := time.Now().In(s.location)
	for _, kind := range s.dueDigests(now) {
		if err := s.EnqueueTask(NewDigestPassTask(s.runner, kind)); err != nil {
			slog.Warn("Failed to enqueue DigestPassTask", "kind", string(kind), "error", err)
			continue
		}
		s.markDigestEnqueued(kind, now)
	}
}

// dueDigests returns the digest kinds whose daily slot has been reached
// and which have not been enqueued for today yet.
func (s *Scheduler) dueDigests(now time.Time) []digest.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := now.Format("2006-01-02")

	var due []digest.Kind
	if now.Hour() >= 6 && s.lastDigest[digest.KindMorning] != today {
		due = append(due, digest.KindMorning)
	}
	if now.Weekday() == time.Monday && now.Hour() >= 6 && s.lastDigest[digest.KindWeekly] != today {
		due = append(due, digest.KindWeekly)
	}
	return due
}

func (s *Scheduler) markDigestEnqueued(kind digest.Kind, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDigest[kind] = now.Format("2006-01-02")
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		time.Sleep(retryDelay)
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		default:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}
