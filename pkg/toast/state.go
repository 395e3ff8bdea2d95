package toast

// State is a toast's position in its lifecycle. Transitions move in one
// direction only: Created -> Presented -> Dismissing -> Dismissed, with
// Created -> Dismissed for toasts dismissed before ever being presented.
type State uint8

const (
	// StateCreated is the initial state: constructed, never presented.
	StateCreated State = iota

	// StatePresented means the toast's container is mounted into a
	// surface and visible.
	StatePresented

	// StateDismissing means teardown is in flight: the outbound
	// animation is running and the container is still mounted.
	StateDismissing

	// StateDismissed is terminal. The container (if any) is detached
	// and the delegate has been notified. No further presentation is
	// permitted.
	StateDismissed
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StatePresented:
		return "Presented"
	case StateDismissing:
		return "Dismissing"
	case StateDismissed:
		return "Dismissed"
	default:
		return "Unknown"
	}
}
