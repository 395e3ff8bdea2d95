package toast_test

import (
	"testing"
	"time"

	"github.com/jefferyq2/ButteryToast/pkg/toast"
	"github.com/jefferyq2/ButteryToast/pkg/toasttest"
	"github.com/jefferyq2/ButteryToast/pkg/view"
)

func TestNewDefaults(t *testing.T) {
	content := view.Div("hello")
	tst := toast.New(content)

	if tst.Content() != content {
		t.Error("Content() did not return the constructed tree")
	}
	if d, ok := tst.AutoDismiss(); ok || d != 0 {
		t.Errorf("AutoDismiss() = %v, %v; want 0, false", d, ok)
	}
	if h, ok := tst.FixedHeight(); ok || h != 0 {
		t.Errorf("FixedHeight() = %v, %v; want 0, false", h, ok)
	}
	if tst.Delegate() != nil {
		t.Error("Delegate() != nil for a fresh toast")
	}
	if tst.State() != toast.StateCreated {
		t.Errorf("State() = %v, want Created", tst.State())
	}
	if tst.IsMounted() {
		t.Error("IsMounted() = true before Present")
	}
	if tst.Mounted() != nil {
		t.Error("Mounted() != nil before Present")
	}
}

func TestOptions(t *testing.T) {
	tst := toast.New(view.Div(),
		toast.WithAutoDismiss(3*time.Second),
		toast.WithFixedHeight(64),
	)

	if d, ok := tst.AutoDismiss(); !ok || d != 3*time.Second {
		t.Errorf("AutoDismiss() = %v, %v; want 3s, true", d, ok)
	}
	if h, ok := tst.FixedHeight(); !ok || h != 64 {
		t.Errorf("FixedHeight() = %v, %v; want 64, true", h, ok)
	}
}

func TestZeroAutoDismissIsDistinctFromAbsent(t *testing.T) {
	tst := toast.New(view.Div(), toast.WithAutoDismiss(0))

	if d, ok := tst.AutoDismiss(); !ok || d != 0 {
		t.Errorf("AutoDismiss() = %v, %v; want 0, true", d, ok)
	}
}

func TestIdentity(t *testing.T) {
	content := view.Div("same")
	a := toast.New(content)
	b := toast.New(content)

	if a == b {
		t.Error("distinct toasts with identical content compare equal")
	}
	if a.ID() == b.ID() {
		t.Errorf("distinct toasts share ID %d", a.ID())
	}
	if b.ID() <= a.ID() {
		t.Errorf("IDs not increasing: %d then %d", a.ID(), b.ID())
	}

	seen := map[*toast.Toast]int{a: 1, b: 2}
	if seen[a] != 1 || seen[b] != 2 {
		t.Error("toasts are not usable as map keys by identity")
	}
}

func TestSetDelegate(t *testing.T) {
	tst := toast.New(view.Div())
	rec := &toasttest.Recorder{}

	tst.SetDelegate(rec)
	if tst.Delegate() != toast.Delegate(rec) {
		t.Error("Delegate() did not return the set delegate")
	}

	tst.SetDelegate(nil)
	if tst.Delegate() != nil {
		t.Error("Delegate() != nil after clearing")
	}
}

func TestDelegateFunc(t *testing.T) {
	var got *toast.Toast
	tst := toast.New(view.Div())
	tst.SetDelegate(toast.DelegateFunc(func(t *toast.Toast) { got = t }))

	tst.Dismiss()

	if got != tst {
		t.Errorf("DelegateFunc received %v, want the dismissed toast", got)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state toast.State
		want  string
	}{
		{toast.StateCreated, "Created"},
		{toast.StatePresented, "Presented"},
		{toast.StateDismissing, "Dismissing"},
		{toast.StateDismissed, "Dismissed"},
		{toast.State(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("State.String() = %v, want %v", got, tt.want)
			}
		})
	}
}
