package toast

import (
	"fmt"
	"time"
	"weak"

	"github.com/jefferyq2/ButteryToast/pkg/surface"
	"github.com/jefferyq2/ButteryToast/pkg/view"
)

// Toast is a transient notification banner. Two toasts are the same
// toast only when they are the same pointer; content is never compared.
// The zero value is not usable, construct with New.
type Toast struct {
	id      uint64
	content *view.Node

	autoDismiss    time.Duration
	hasAutoDismiss bool
	fixedHeight    float64
	hasFixedHeight bool

	delegate Delegate

	state    State
	notified bool
	mounted  surface.Handle
	surface  surface.Surface
}

// Option configures a Toast at construction.
type Option func(*Toast)

// WithAutoDismiss makes the toast request its own dismissal once d has
// elapsed after presentation. Zero fires on the next scheduler turn;
// toasts built without this option stay until dismissed.
func WithAutoDismiss(d time.Duration) Option {
	return func(t *Toast) {
		t.autoDismiss = d
		t.hasAutoDismiss = true
	}
}

// WithFixedHeight pins the container to height h instead of the
// content's natural height. Sane (non-negative) values are the
// caller's responsibility.
func WithFixedHeight(h float64) Option {
	return func(t *Toast) {
		t.fixedHeight = h
		t.hasFixedHeight = true
	}
}

// New creates a toast displaying content. The content tree is fixed for
// the toast's lifetime; only the delegate can be set afterwards.
func New(content *view.Node, opts ...Option) *Toast {
	t := &Toast{
		id:      nextID(),
		content: content,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID returns the toast's unique monotonically increasing identifier.
// IDs exist for logging and map keys; identity itself is the pointer.
func (t *Toast) ID() uint64 {
	return t.id
}

// Content returns the content tree the toast displays.
func (t *Toast) Content() *view.Node {
	return t.content
}

// AutoDismiss returns the auto-dismiss duration and whether one was
// requested. Absent and zero are distinct.
func (t *Toast) AutoDismiss() (time.Duration, bool) {
	return t.autoDismiss, t.hasAutoDismiss
}

// FixedHeight returns the pinned height and whether one was requested.
func (t *Toast) FixedHeight() (float64, bool) {
	return t.fixedHeight, t.hasFixedHeight
}

// State returns the toast's lifecycle state.
func (t *Toast) State() State {
	return t.state
}

// IsMounted reports whether the toast currently holds a surface
// container, which is the case from a completed Present until the
// dismissal completion detaches it.
func (t *Toast) IsMounted() bool {
	return t.mounted != nil
}

// Mounted returns the surface handle of the toast's container, or nil
// when no container is mounted.
func (t *Toast) Mounted() surface.Handle {
	return t.mounted
}

// Delegate returns the current delegate, nil when none is set.
func (t *Toast) Delegate() Delegate {
	return t.delegate
}

// SetDelegate replaces the delegate. A nil delegate is allowed; the
// lifecycle proceeds identically and the notification is simply
// skipped.
func (t *Toast) SetDelegate(d Delegate) {
	t.delegate = d
}

// Present mounts the toast into s and brings it on screen. It must run
// on s's scheduler. On success the toast is visible, tappable, and (if
// requested) its auto-dismiss timer is running.
//
// Present is single-shot: calling it on a toast that is already
// mounted returns ErrPresented, and calling it on a dismissed toast
// returns ErrDismissed, with no side effects in either case. A mount
// failure from the surface is returned wrapped and leaves the toast
// unpresented.
func (t *Toast) Present(s surface.Surface) error {
	switch t.state {
	case StatePresented, StateDismissing:
		return ErrPresented
	case StateDismissed:
		return ErrDismissed
	}

	h, err := s.Mount(t.content, surface.MountOptions{
		FixedHeight:    t.fixedHeight,
		HasFixedHeight: t.hasFixedHeight,
	})
	if err != nil {
		return fmt.Errorf("toast: mount: %w", err)
	}

	s.Animate(h, EnterAnimation(), nil)
	s.AttachTap(h, t.Dismiss)

	if t.hasAutoDismiss {
		// The timer must not extend the toast's lifetime: it holds a
		// weak reference and becomes a no-op once the toast is gone.
		ref := weak.Make(t)
		s.Scheduler().After(t.autoDismiss, func() {
			if t := ref.Value(); t != nil {
				t.Dismiss()
			}
		})
	}

	t.mounted = h
	t.surface = s
	t.state = StatePresented
	return nil
}

// Dismiss ends the toast's lifecycle. It must run on the scheduler of
// the surface the toast is presented on (any goroutine is fine for a
// never-presented toast, which has no surface).
//
// On a mounted toast the exit animation plays first; the completion
// then detaches the container, clears the handle, and notifies the
// delegate. On a never-presented toast the delegate is notified
// immediately and synchronously. Repeat calls in any state are no-ops:
// the animation never replays, the container is detached once, and the
// delegate hears about the toast exactly once.
func (t *Toast) Dismiss() {
	switch t.state {
	case StateDismissing:
		// Teardown already in flight; its completion notifies.
		return

	case StatePresented:
		t.state = StateDismissing
		s, h := t.surface, t.mounted
		s.Animate(h, ExitAnimation(), func() {
			s.Detach(h)
			t.mounted = nil
			t.surface = nil
			t.state = StateDismissed
			t.notifyDismissed()
		})

	default:
		// Created: dismissed before ever reaching a surface.
		// Dismissed: nothing left to tear down.
		t.state = StateDismissed
		t.notifyDismissed()
	}
}

// notifyDismissed delivers the exactly-once delegate notification.
func (t *Toast) notifyDismissed() {
	if t.notified {
		return
	}
	t.notified = true
	if d := t.delegate; d != nil {
		d.ToastDismissed(t)
	}
}
