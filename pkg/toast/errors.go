package toast

import "errors"

// Sentinel errors returned by Present.
var (
	// ErrPresented is returned by Present when the toast is already
	// mounted (or mid-dismissal) on a surface.
	ErrPresented = errors.New("toast: already presented")

	// ErrDismissed is returned by Present when the toast has completed
	// its lifecycle. Dismissed toasts cannot be presented again.
	ErrDismissed = errors.New("toast: already dismissed")
)
