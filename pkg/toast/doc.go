// Package toast implements the lifecycle of transient notification
// banners presented into a host UI surface.
//
// A Toast is a reference type: it is created once, presented at most
// once, dismissed at most once in effect, and never reused. It carries
// a content tree (pkg/view), an optional auto-dismiss duration, an
// optional pinned height, and an optional Delegate that is notified
// exactly once when the toast's lifecycle ends.
//
// # Lifecycle
//
// State moves in one direction only:
//
//	            Present              Dismiss             completion
//	Created ────────────▶ Presented ────────▶ Dismissing ──────────┐
//	   │                                                           ▼
//	   └────────────────── Dismiss ──────────────────────▶ Dismissed
//
// Present mounts the content into a surface (anchored below the host's
// navigation chrome, or at the top of the safe area), plays the
// entrance animation, attaches a tap-to-dismiss gesture, and schedules
// the auto-dismiss timer when one was requested. Dismiss on a mounted
// toast plays the exit animation and, in its completion, detaches the
// container and notifies the delegate, in that order. Dismiss on a
// toast that was never presented notifies the delegate immediately and
// synchronously.
//
// Dismiss is safe to call any number of times from any trigger (tap,
// timer, owner code): the first effective call wins, later calls do
// nothing, and the delegate sees exactly one notification.
//
// # Scheduling
//
// Toasts are loop-affine and hold no locks. Every operation must run
// on the cooperative scheduler of the surface involved: taps, timer
// callbacks, and animation completions are all delivered there by the
// surface, and owner code off the loop routes calls through
// sched.Scheduler.Dispatch. The auto-dismiss timer holds the toast
// weakly, so a pending timer never keeps a dismissed toast alive.
//
// # Example
//
//	t := toast.New(
//	    view.Div(view.Class("toast"), view.Strong("Saved"), " your changes are safe"),
//	    toast.WithAutoDismiss(3*time.Second),
//	)
//	t.SetDelegate(toast.DelegateFunc(func(t *toast.Toast) {
//	    log.Printf("toast %d gone", t.ID())
//	}))
//
//	loop.Dispatch(func() {
//	    if err := t.Present(surf); err != nil {
//	        log.Printf("present: %v", err)
//	    }
//	})
package toast
