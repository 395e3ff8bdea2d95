package toasttest

import "time"

// Scheduler is a manual virtual-time scheduler. Dispatch runs
// callbacks inline, so test code is always "on the loop"; After files
// a timer that fires only when Advance moves the clock past its due
// time. Timers fire in due order, ties in scheduling order, and may
// file further timers while firing.
type Scheduler struct {
	now    time.Duration
	timers []*timer
	seq    int
}

type timer struct {
	due time.Duration
	seq int
	fn  func()
}

// NewScheduler creates a scheduler with the clock at zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Dispatch runs fn immediately.
func (s *Scheduler) Dispatch(fn func()) {
	fn()
}

// After files fn to run when the clock reaches now+d.
func (s *Scheduler) After(d time.Duration, fn func()) {
	s.timers = append(s.timers, &timer{
		due: s.now + d,
		seq: s.seq,
		fn:  fn,
	})
	s.seq++
}

// Advance moves the clock forward by d, firing every timer that comes
// due on the way, in order. Callbacks observe Now() at their own due
// time.
func (s *Scheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		next := s.takeNextDue(target)
		if next == nil {
			break
		}
		s.now = next.due
		next.fn()
	}
	s.now = target
}

// takeNextDue removes and returns the earliest timer due at or before
// target, nil when none qualifies.
func (s *Scheduler) takeNextDue(target time.Duration) *timer {
	best := -1
	for i, t := range s.timers {
		if t.due > target {
			continue
		}
		if best == -1 || t.due < s.timers[best].due ||
			(t.due == s.timers[best].due && t.seq < s.timers[best].seq) {
			best = i
		}
	}
	if best == -1 {
		return nil
	}
	t := s.timers[best]
	s.timers = append(s.timers[:best], s.timers[best+1:]...)
	return t
}

// Pending returns the number of timers that have not fired yet.
func (s *Scheduler) Pending() int {
	return len(s.timers)
}

// Now returns the current virtual time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}
