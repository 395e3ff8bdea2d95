// Package butterytoast serves toast notifications to live browser
// sessions over a WebSocket protocol.
//
// This is the recommended import for applications embedding the server:
//
//	import "github.com/jefferyq2/ButteryToast"
//
// Usage:
//
//	cfg, err := config.Load(".")
//	app := butterytoast.New(cfg)
//	app.Run()
//
// The toast lifecycle itself lives in pkg/toast and is usable without
// the server: build content with pkg/view, present it on any
// surface.Surface. The aliases below re-export that core API so simple
// programs need only this package.
package butterytoast

import (
	"github.com/jefferyq2/ButteryToast/pkg/toast"
	"github.com/jefferyq2/ButteryToast/pkg/view"
)

// Toast is a transient notification banner. See pkg/toast.
type Toast = toast.Toast

// Delegate receives the exactly-once dismissal notification.
type Delegate = toast.Delegate

// DelegateFunc adapts a plain function to the Delegate interface.
type DelegateFunc = toast.DelegateFunc

// ToastOption configures a Toast at construction.
type ToastOption = toast.Option

// NewToast creates a toast displaying content.
//
//	t := butterytoast.NewToast(
//	    view.Div(view.H2("Saved"), view.P("Your changes are safe.")),
//	    butterytoast.WithAutoDismiss(4*time.Second),
//	)
func NewToast(content *view.Node, opts ...ToastOption) *Toast {
	return toast.New(content, opts...)
}

// WithAutoDismiss makes the toast request its own dismissal after a delay.
var WithAutoDismiss = toast.WithAutoDismiss

// WithFixedHeight pins the toast container to a fixed height.
var WithFixedHeight = toast.WithFixedHeight

// AnimationDuration is how long the enter and exit animations run.
const AnimationDuration = toast.AnimationDuration

// Lifecycle errors re-exported from pkg/toast.
var (
	ErrPresented = toast.ErrPresented
	ErrDismissed = toast.ErrDismissed
)
