package protocol

import "fmt"

// EventType is the type of client gesture event.
type EventType uint8

const (
	EventTap    EventType = 0x01 // User tapped a container
	EventClosed EventType = 0x02 // Container removed out-of-band
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	switch et {
	case EventTap:
		return "Tap"
	case EventClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// CloseReason says why a container disappeared without a Detach op.
type CloseReason uint8

const (
	CloseReasonUser       CloseReason = 0x01 // User dismissed via host chrome
	CloseReasonNavigation CloseReason = 0x02 // Page navigated away
)

// String returns the string representation of the close reason.
func (cr CloseReason) String() string {
	switch cr {
	case CloseReasonUser:
		return "User"
	case CloseReasonNavigation:
		return "Navigation"
	default:
		return "Unknown"
	}
}

// Event is one client-to-server gesture.
type Event struct {
	Type   EventType
	Target string      // Container ID
	Reason CloseReason // Only for EventClosed
}

// EncodeEvent encodes an event as an event-frame payload.
func EncodeEvent(e *Encoder, ev *Event) {
	e.WriteByte(byte(ev.Type))
	e.WriteString(ev.Target)
	if ev.Type == EventClosed {
		e.WriteByte(byte(ev.Reason))
	}
}

// DecodeEvent decodes an event-frame payload.
func DecodeEvent(d *Decoder) (*Event, error) {
	t, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	ev := &Event{Type: EventType(t)}
	switch ev.Type {
	case EventTap:
		if ev.Target, err = d.ReadString(); err != nil {
			return nil, err
		}
		return ev, nil

	case EventClosed:
		if ev.Target, err = d.ReadString(); err != nil {
			return nil, err
		}
		r, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		ev.Reason = CloseReason(r)
		return ev, nil

	default:
		return nil, fmt.Errorf("protocol: unknown event type 0x%02X", t)
	}
}
