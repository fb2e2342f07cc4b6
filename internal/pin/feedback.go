package pin

import (
	"sync"
	"time"
)

// DefaultFeedbackDuration is how long the success state stays visible
const DefaultFeedbackDuration = 2000 * time.Millisecond

// Feedback is the transient success indicator shown after a pin is saved.
// Triggering it while active restarts the window.
type Feedback struct {
	mu       sync.Mutex
	duration time.Duration
	timer    *time.Timer
	active   bool
	until    time.Time
}

func NewFeedback(duration time.Duration) *Feedback {
	if duration <= 0 {
		duration = DefaultFeedbackDuration
	}
	return &Feedback{duration: duration}
}

func (f *Feedback) Trigger() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
	}
	f.active = true
	f.until = time.Now().Add(f.duration)

	var timer *time.Timer
	timer = time.AfterFunc(f.duration, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		// A later Trigger replaced this timer
		if f.timer != timer {
			return
		}
		f.active = false
		f.timer = nil
	})
	f.timer = timer
}

func (f *Feedback) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Remaining is the time left before the feedback reverts, zero when inactive
func (f *Feedback) Remaining() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return 0
	}
	if left := time.Until(f.until); left > 0 {
		return left
	}
	return 0
}

func (f *Feedback) Duration() time.Duration {
	return f.duration
}

func (f *Feedback) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.active = false
}
