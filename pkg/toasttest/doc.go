// Package toasttest provides deterministic fakes for testing toast
// lifecycles: a manual virtual-time Scheduler, a recording Surface, and
// a Recorder delegate. The fakes mirror the production contracts
// exactly (completions and taps are delivered through the scheduler),
// so a test advances virtual time instead of sleeping.
//
//	ts := toasttest.NewScheduler()
//	surf := toasttest.NewSurface(ts)
//	rec := &toasttest.Recorder{}
//
//	t := toast.New(view.Div("hi"), toast.WithAutoDismiss(time.Second))
//	t.SetDelegate(rec)
//	t.Present(surf)
//
//	ts.Advance(time.Second)                  // auto-dismiss fires
//	ts.Advance(toast.AnimationDuration)      // exit animation completes
//	// rec.Count() == 1, surf.Last().Detached == true
package toasttest
