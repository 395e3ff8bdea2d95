package toast

// Delegate receives lifecycle notifications from a toast. The only
// event is dismissal: ToastDismissed is invoked exactly once per toast
// whose Dismiss is ever called, on the surface's scheduler (or the
// caller's goroutine for toasts dismissed before presentation), after
// the container has been detached. Owners typically release their
// reference to the toast here, or present a queued successor.
type Delegate interface {
	ToastDismissed(t *Toast)
}

// DelegateFunc adapts a plain function to the Delegate interface.
type DelegateFunc func(t *Toast)

// ToastDismissed implements Delegate.
func (f DelegateFunc) ToastDismissed(t *Toast) {
	f(t)
}
