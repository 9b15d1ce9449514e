package server

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// maxThrottleWait bounds how long a request may queue for a render slot.
const maxThrottleWait = 2 * time.Second

// throttle spaces requests so at most one is admitted per interval. Requests
// queue for their slot, up to the caller's deadline.
type throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// newThrottle admits perSecond requests per second. Fractional rates are allowed.
func newThrottle(perSecond float64) *throttle {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &throttle{
		interval: time.Duration(float64(time.Second) / perSecond),
	}
}

// Wait blocks until a slot is available or ctx is done.
func (t *throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	now := time.Now()

	if t.last.IsZero() || now.Sub(t.last) >= t.interval {
		t.last = now
		t.mu.Unlock()
		return nil
	}

	waitUntil := t.last.Add(t.interval)
	if deadline, ok := ctx.Deadline(); ok && deadline.Before(waitUntil) {
		// The slot would arrive too late; don't reserve it.
		t.mu.Unlock()
		return context.DeadlineExceeded
	}
	t.last = waitUntil
	t.mu.Unlock()

	delay := time.Until(waitUntil)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Middleware rejects requests with 429 when no slot frees up within maxThrottleWait.
func (t *throttle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), maxThrottleWait)
		defer cancel()

		if err := t.Wait(ctx); err != nil {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many chart requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
