// Package desktop serves toasts as freedesktop notifications over
// D-Bus. The notification daemon owns layout and animation; this
// surface maps mounts to notifications, taps to the default action,
// and detaches to CloseNotification, so the toast core drives a
// desktop bubble exactly like a browser container.
package desktop

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/esiqveland/notify"
	"github.com/godbus/dbus/v5"

	"github.com/jefferyq2/ButteryToast/pkg/sched"
	"github.com/jefferyq2/ButteryToast/pkg/surface"
	"github.com/jefferyq2/ButteryToast/pkg/view"
)

const (
	notificationsDest = "org.freedesktop.Notifications"
	notificationsPath = "/org/freedesktop/Notifications"

	// tapActionKey is the freedesktop action invoked when the user
	// clicks the notification body.
	tapActionKey = "default"
)

// ErrClosed is returned when an operation is attempted on a closed
// notifier.
var ErrClosed = errors.New("desktop: notifier closed")

// notifySender is the slice of notify.Notifier this package uses.
type notifySender interface {
	SendNotification(n notify.Notification) (uint32, error)
	ActionInvoked() <-chan *notify.ActionInvokedSignal
	NotificationClosed() <-chan *notify.NotificationClosedSignal
	Close() error
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Notifier) {
		d.logger = logger
	}
}

// WithAppName sets the application name shown by the daemon.
func WithAppName(name string) Option {
	return func(d *Notifier) {
		d.appName = name
	}
}

// WithAppIcon sets the notification icon (a themed icon name or path).
func WithAppIcon(icon string) Option {
	return func(d *Notifier) {
		d.appIcon = icon
	}
}

// WithQueueSize sets the scheduler's dispatch queue size.
func WithQueueSize(n int) Option {
	return func(d *Notifier) {
		d.queueSize = n
	}
}

// Notifier is a surface.Surface backed by the session notification
// daemon.
//
// Surface methods must be called on the notifier's scheduler; Close is
// safe from any goroutine.
type Notifier struct {
	sender    notifySender
	closeNote func(id uint32) error

	loop   *sched.Loop
	closed atomic.Bool

	// Loop-confined state
	taps map[string]func() // Container target -> tap handler
	ids  map[string]uint32 // Container target -> notification ID
	byID map[uint32]string // Notification ID -> container target
	next uint64

	appName   string
	appIcon   string
	queueSize int
	logger    *slog.Logger
}

// New connects to the notification service on conn and starts the
// notifier's scheduler and signal pump.
func New(conn *dbus.Conn, opts ...Option) (*Notifier, error) {
	sender, err := notify.New(conn)
	if err != nil {
		return nil, fmt.Errorf("desktop: connect notification service: %w", err)
	}
	obj := conn.Object(notificationsDest, notificationsPath)
	closeNote := func(id uint32) error {
		return obj.Call(notificationsDest+".CloseNotification", 0, id).Err
	}
	return newNotifier(sender, closeNote, opts...), nil
}

// newNotifier wires a notifier around an already-connected sender.
// Tests use it with fakes.
func newNotifier(sender notifySender, closeNote func(uint32) error, opts ...Option) *Notifier {
	d := &Notifier{
		sender:    sender,
		closeNote: closeNote,
		taps:      make(map[string]func()),
		ids:       make(map[string]uint32),
		byID:      make(map[uint32]string),
		appName:   "butterytoast",
		queueSize: sched.DefaultQueueSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.loop = sched.NewLoop(sched.WithLogger(d.logger), sched.WithQueueSize(d.queueSize))

	go d.loop.Run()
	go d.pump()

	return d
}

// Scheduler implements surface.Surface.
func (d *Notifier) Scheduler() sched.Scheduler {
	return d.loop
}

// Done is closed once the notifier has shut down.
func (d *Notifier) Done() <-chan struct{} {
	return d.loop.Done()
}

// Mount implements surface.Surface. Fixed heights and anchoring are
// the daemon's business; the options are accepted and ignored.
func (d *Notifier) Mount(content *view.Node, opts surface.MountOptions) (surface.Handle, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}

	summary, body := renderNotification(content)
	if summary == "" {
		summary = d.appName
	}

	id, err := d.sender.SendNotification(notify.Notification{
		AppName: d.appName,
		AppIcon: d.appIcon,
		Summary: summary,
		Body:    body,
		Actions: []notify.Action{{Key: tapActionKey, Label: "Open"}},
		// The toast core owns the lifecycle; the daemon must not
		// expire the bubble on its own.
		ExpireTimeout: notify.ExpireTimeoutNever,
	})
	if err != nil {
		return nil, fmt.Errorf("desktop: send notification: %w", err)
	}

	d.next++
	h := handle(fmt.Sprintf("n%d", d.next))
	d.ids[h.Target()] = id
	d.byID[id] = h.Target()

	d.logger.Debug("notification shown", "target", h.Target(), "id", id)
	return h, nil
}

// Animate implements surface.Surface. The daemon draws its own
// transitions; only the completion contract is kept.
func (d *Notifier) Animate(h surface.Handle, a surface.Animation, done func()) {
	if done != nil {
		d.loop.After(a.Duration, done)
	}
}

// Detach implements surface.Surface. Closing an id the daemon has
// already dropped is tolerated.
func (d *Notifier) Detach(h surface.Handle) {
	target := h.Target()
	delete(d.taps, target)

	id, ok := d.ids[target]
	if !ok {
		return
	}
	delete(d.ids, target)
	delete(d.byID, id)

	if err := d.closeNote(id); err != nil {
		d.logger.Debug("close notification", "id", id, "error", err)
	}
}

// AttachTap implements surface.Surface.
func (d *Notifier) AttachTap(h surface.Handle, fn func()) {
	d.taps[h.Target()] = fn
}

// pump converts daemon signals into loop dispatches until the notifier
// shuts down.
func (d *Notifier) pump() {
	for {
		select {
		case sig, ok := <-d.sender.ActionInvoked():
			if !ok {
				return
			}
			d.loop.Dispatch(func() { d.handleAction(sig) })

		case sig, ok := <-d.sender.NotificationClosed():
			if !ok {
				return
			}
			d.loop.Dispatch(func() { d.handleClosed(sig) })

		case <-d.loop.Done():
			return
		}
	}
}

// handleAction runs on the loop and fires the tap handler for the
// clicked notification.
func (d *Notifier) handleAction(sig *notify.ActionInvokedSignal) {
	target, ok := d.byID[sig.ID]
	if !ok {
		d.logger.Debug("action for unknown notification", "id", sig.ID)
		return
	}
	if fn, ok := d.taps[target]; ok {
		fn()
	}
}

// handleClosed runs on the loop. Detach unregisters the id before
// asking the daemon to close, so only external closes (the user swiped
// the bubble away, or the daemon expired it) land here. They walk the
// tap path so the toast still sees its normal dismissal.
func (d *Notifier) handleClosed(sig *notify.NotificationClosedSignal) {
	target, ok := d.byID[sig.ID]
	if !ok {
		return
	}
	d.logger.Debug("notification closed externally",
		"target", target,
		"id", sig.ID,
		"reason", sig.Reason)
	if fn, ok := d.taps[target]; ok {
		fn()
	}
}

// Close shuts the notifier down. It is idempotent and safe from any
// goroutine. Notifications already on screen are left to the daemon.
func (d *Notifier) Close() {
	if d.closed.Swap(true) {
		return
	}
	d.loop.Stop()
	if err := d.sender.Close(); err != nil {
		d.logger.Debug("notifier close", "error", err)
	}
	d.logger.Info("desktop notifier closed")
}

// handle is a mounted notification's internal ID ("n1", "n2", ...).
type handle string

// Target returns the container identifier.
func (h handle) Target() string { return string(h) }
