// Package surface declares the capabilities a host UI must provide for
// toasts to be presented into it. The toast core consumes these
// interfaces and never sees a concrete frontend: pkg/remote implements
// them against a browser over WebSocket, pkg/desktop against the
// freedesktop notification service, and pkg/toasttest with an
// in-memory fake for deterministic tests.
package surface

import (
	"github.com/jefferyq2/ButteryToast/pkg/sched"
	"github.com/jefferyq2/ButteryToast/pkg/view"
)

// Surface is a host UI target that can mount toast containers, animate
// them, and deliver tap gestures. All methods are loop-affine: they must
// be called on the surface's scheduler, and all callbacks (taps,
// animation completions) are delivered on that same scheduler.
type Surface interface {
	// Mount wraps content in a fresh container and inserts it into the
	// host view: anchored directly below the host's navigation chrome
	// when one is present, otherwise at the top of the safe content
	// area. The container spans edge to edge horizontally, hangs from
	// its anchor, and is pinned to opts.FixedHeight when set (content's
	// natural height otherwise). Layout is forced before Mount returns
	// so the container has realized geometry for animation.
	Mount(content *view.Node, opts MountOptions) (Handle, error)

	// Animate transitions the container between the animation's
	// keyframes over its duration. When done is non-nil it runs exactly
	// once on the surface's scheduler after the duration has elapsed;
	// visual settling never delays it and a nil done is never called.
	Animate(h Handle, a Animation, done func())

	// Detach removes the container from the host view. Idempotent per
	// handle; tap registrations for the handle are dropped.
	Detach(h Handle)

	// AttachTap registers fn to run (on the scheduler) when the user
	// taps anywhere on the container. A second call replaces the first.
	AttachTap(h Handle, fn func())

	// Scheduler returns the cooperative scheduler driving this surface.
	Scheduler() sched.Scheduler
}

// Handle identifies a mounted container on its surface. Opaque to the
// toast core beyond the surface-local target identifier, which exists
// for logging and metrics.
type Handle interface {
	Target() string
}

// MountOptions carries the per-mount choices a toast makes. The anchor
// rule and the horizontal fill are fixed by the Mount contract; only
// the height is caller-controlled.
type MountOptions struct {
	// FixedHeight pins the container height when HasFixedHeight is set.
	// Zero with the flag set is a legal (if degenerate) pinned height;
	// without the flag the value is ignored and natural height governs.
	FixedHeight    float64
	HasFixedHeight bool
}

// Anchor is the insertion point a surface chose for a container.
type Anchor uint8

const (
	// AnchorBelowChrome pins the container directly under the host's
	// top navigation chrome.
	AnchorBelowChrome Anchor = iota

	// AnchorSafeTop pins the container to the top of the safe content
	// area when the host has no navigation chrome.
	AnchorSafeTop
)

// String returns the string representation of the Anchor.
func (a Anchor) String() string {
	switch a {
	case AnchorBelowChrome:
		return "BelowChrome"
	case AnchorSafeTop:
		return "SafeTop"
	default:
		return "Unknown"
	}
}
