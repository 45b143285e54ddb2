// Package scheduler provides periodic task scheduling for the connection
// supervisor. The Scheduler interface is the seam between the supervisor and
// whatever drives it; TickerScheduler is the default timer-backed
// implementation. Hosting applications with their own timer infrastructure
// implement Scheduler and pass it in.
package scheduler

import (
	"sync"
	"time"
)

// Handle represents a scheduled periodic task that can be cancelled.
type Handle interface {
	// Cancel stops future executions of the task. It does not interrupt
	// an execution already in progress. Cancel is idempotent.
	Cancel()
}

// Scheduler schedules periodic execution of tasks.
type Scheduler interface {
	// SchedulePeriodic runs task after initialDelay, then every period,
	// until the returned handle is cancelled. Executions of a single
	// scheduled task never overlap.
	SchedulePeriodic(task func(), initialDelay, period time.Duration) Handle
}

// TickerScheduler runs each scheduled task on its own goroutine using
// a timer for the initial delay and a ticker thereafter.
type TickerScheduler struct{}

// NewTickerScheduler creates a new TickerScheduler.
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

// SchedulePeriodic implements Scheduler.
func (s *TickerScheduler) SchedulePeriodic(task func(), initialDelay, period time.Duration) Handle {
	h := &tickerHandle{done: make(chan struct{})}

	go func() {
		timer := time.NewTimer(initialDelay)
		defer timer.Stop()

		select {
		case <-h.done:
			return
		case <-timer.C:
		}
		task()

		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
				task()
			}
		}
	}()

	return h
}

// tickerHandle cancels a task scheduled by TickerScheduler.
type tickerHandle struct {
	done chan struct{}
	once sync.Once
}

// Cancel stops future executions. Safe to call multiple times.
func (h *tickerHandle) Cancel() {
	h.once.Do(func() {
		close(h.done)
	})
}

// Compile-time interface satisfaction checks.
var (
	_ Scheduler = (*TickerScheduler)(nil)
	_ Handle    = (*tickerHandle)(nil)
)
