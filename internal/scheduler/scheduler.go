package scheduler

import (
	"sync"
	"time"
)

// Handle cancels a scheduled task. Cancel is idempotent: canceling an
// already-canceled or already-fired task is a no-op.
type Handle interface {
	Cancel()
}

// Scheduler schedules one-shot and periodic tasks. Every state transition
// that starts a timer stores the returned handle and cancels it explicitly
// instead of leaking intervals through callback closures.
type Scheduler interface {
	// After runs fn once after d
	After(d time.Duration, fn func()) Handle
	// Every runs fn repeatedly with period d until canceled
	Every(d time.Duration, fn func()) Handle
}

// TimerScheduler implements Scheduler on the runtime timer wheel
type TimerScheduler struct{}

// New creates a TimerScheduler
func New() *TimerScheduler {
	return &TimerScheduler{}
}

func (s *TimerScheduler) After(d time.Duration, fn func()) Handle {
	h := &afterHandle{}
	h.timer = time.AfterFunc(d, fn)
	return h
}

func (s *TimerScheduler) Every(d time.Duration, fn func()) Handle {
	h := &everyHandle{stop: make(chan struct{})}
	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	return h
}

type afterHandle struct {
	timer *time.Timer
	once  sync.Once
}

func (h *afterHandle) Cancel() {
	h.once.Do(func() {
		h.timer.Stop()
	})
}

type everyHandle struct {
	stop chan struct{}
	once sync.Once
}

func (h *everyHandle) Cancel() {
	h.once.Do(func() {
		close(h.stop)
	})
}
