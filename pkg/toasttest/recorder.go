package toasttest

import "github.com/jefferyq2/ButteryToast/pkg/toast"

// Recorder is a toast.Delegate that records every dismissal
// notification it receives. The zero value is ready to use.
type Recorder struct {
	dismissed []*toast.Toast
}

// ToastDismissed implements toast.Delegate.
func (r *Recorder) ToastDismissed(t *toast.Toast) {
	r.dismissed = append(r.dismissed, t)
}

// Count returns the total number of notifications received.
func (r *Recorder) Count() int {
	return len(r.dismissed)
}

// CountFor returns how many notifications were for exactly t.
func (r *Recorder) CountFor(t *toast.Toast) int {
	n := 0
	for _, d := range r.dismissed {
		if d == t {
			n++
		}
	}
	return n
}

// Dismissed returns the notified toasts in delivery order.
func (r *Recorder) Dismissed() []*toast.Toast {
	return r.dismissed
}
