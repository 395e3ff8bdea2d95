package toasttest

import (
	"fmt"

	"github.com/jefferyq2/ButteryToast/pkg/sched"
	"github.com/jefferyq2/ButteryToast/pkg/surface"
	"github.com/jefferyq2/ButteryToast/pkg/view"
)

// Surface is an in-memory surface.Surface that records every mount,
// animation, tap attachment, and detach. Animation completions go
// through its Scheduler exactly like production surfaces, so tests
// control them with Advance.
type Surface struct {
	sched *Scheduler

	// HasChrome controls the anchoring decision recorded on mounts:
	// below-chrome when true, safe-area top otherwise.
	HasChrome bool

	// MountErr, when set, makes Mount fail without recording a mount.
	MountErr error

	mounts []*Mount
	nextID int
}

// Mount records one mounted container and everything that happened to
// it.
type Mount struct {
	handle *Handle

	Content *view.Node
	Options surface.MountOptions
	Anchor  surface.Anchor

	Animations  []surface.Animation
	Detached    bool
	DetachCount int

	tap func()
}

// Handle implements surface.Handle for recorded mounts.
type Handle struct {
	target string
}

// Target returns the fake's container identifier ("t1", "t2", ...).
func (h *Handle) Target() string {
	return h.target
}

// NewSurface creates a fake surface driven by s. A nil scheduler gets
// a fresh one; retrieve it with Scheduler.
func NewSurface(s *Scheduler) *Surface {
	if s == nil {
		s = NewScheduler()
	}
	return &Surface{sched: s}
}

// Mount implements surface.Surface.
func (s *Surface) Mount(content *view.Node, opts surface.MountOptions) (surface.Handle, error) {
	if s.MountErr != nil {
		return nil, s.MountErr
	}

	s.nextID++
	anchor := surface.AnchorSafeTop
	if s.HasChrome {
		anchor = surface.AnchorBelowChrome
	}
	m := &Mount{
		handle:  &Handle{target: fmt.Sprintf("t%d", s.nextID)},
		Content: content,
		Options: opts,
		Anchor:  anchor,
	}
	s.mounts = append(s.mounts, m)
	return m.handle, nil
}

// Animate implements surface.Surface. The keyframes are recorded on
// the mount and a non-nil done is scheduled after the animation's
// duration.
func (s *Surface) Animate(h surface.Handle, a surface.Animation, done func()) {
	if m := s.find(h); m != nil {
		m.Animations = append(m.Animations, a)
	}
	if done != nil {
		s.sched.After(a.Duration, done)
	}
}

// Detach implements surface.Surface. Every call is counted so tests
// can assert teardown ran exactly once.
func (s *Surface) Detach(h surface.Handle) {
	if m := s.find(h); m != nil {
		m.Detached = true
		m.DetachCount++
		m.tap = nil
	}
}

// AttachTap implements surface.Surface.
func (s *Surface) AttachTap(h surface.Handle, fn func()) {
	if m := s.find(h); m != nil {
		m.tap = fn
	}
}

// Scheduler implements surface.Surface.
func (s *Surface) Scheduler() sched.Scheduler {
	return s.sched
}

// Clock returns the manual scheduler for advancing virtual time.
func (s *Surface) Clock() *Scheduler {
	return s.sched
}

// SimulateTap delivers a user tap on the container. Taps on detached
// containers or containers without a handler are dropped, as a real
// frontend would drop them.
func (s *Surface) SimulateTap(h surface.Handle) {
	m := s.find(h)
	if m == nil || m.Detached || m.tap == nil {
		return
	}
	s.sched.Dispatch(m.tap)
}

// Mounts returns every recorded mount, detached ones included.
func (s *Surface) Mounts() []*Mount {
	return s.mounts
}

// Last returns the most recent mount, nil when nothing was mounted.
func (s *Surface) Last() *Mount {
	if len(s.mounts) == 0 {
		return nil
	}
	return s.mounts[len(s.mounts)-1]
}

// Active returns the number of mounts that have not been detached.
func (s *Surface) Active() int {
	n := 0
	for _, m := range s.mounts {
		if !m.Detached {
			n++
		}
	}
	return n
}

func (s *Surface) find(h surface.Handle) *Mount {
	for _, m := range s.mounts {
		if m.handle == h {
			return m
		}
	}
	return nil
}

// Handle returns the mount's surface handle.
func (m *Mount) Handle() surface.Handle {
	return m.handle
}

// HasTap reports whether a tap handler is currently attached.
func (m *Mount) HasTap() bool {
	return m.tap != nil
}
