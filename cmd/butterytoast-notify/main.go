// Command butterytoast-notify presents a single toast as a desktop
// notification and waits for it to be dismissed, by its timer or by a
// click on the bubble.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/godbus/dbus/v5"

	butterytoast "github.com/jefferyq2/ButteryToast"
	"github.com/jefferyq2/ButteryToast/pkg/desktop"
	"github.com/jefferyq2/ButteryToast/pkg/view"
)

func main() {
	log.SetFlags(0)

	title := flag.String("title", "", "notification summary line")
	body := flag.String("body", "", "notification body text")
	after := flag.Duration("after", 5*time.Second, "auto-dismiss delay (0 waits for a tap)")
	icon := flag.String("icon", "", "themed icon name or path")
	appName := flag.String("app", "butterytoast", "application name shown by the daemon")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *title == "" && *body == "" {
		log.Fatal("at least one of -title or -body is required")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		log.Fatalf("connect session bus: %v", err)
	}
	defer conn.Close()

	notifier, err := desktop.New(conn,
		desktop.WithAppName(*appName),
		desktop.WithAppIcon(*icon),
		desktop.WithLogger(logger))
	if err != nil {
		log.Fatalf("notification service: %v", err)
	}
	defer notifier.Close()

	var opts []butterytoast.ToastOption
	if *after > 0 {
		opts = append(opts, butterytoast.WithAutoDismiss(*after))
	}

	t := butterytoast.NewToast(content(*title, *body), opts...)

	dismissed := make(chan struct{})
	t.SetDelegate(butterytoast.DelegateFunc(func(*butterytoast.Toast) {
		close(dismissed)
	}))

	presented := make(chan error, 1)
	notifier.Scheduler().Dispatch(func() {
		presented <- t.Present(notifier)
	})
	select {
	case err := <-presented:
		if err != nil {
			log.Fatalf("present: %v", err)
		}
	case <-notifier.Done():
		log.Fatal("notifier stopped before the toast was presented")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-dismissed:
	case <-sigCh:
		fmt.Fprintln(os.Stderr, "interrupted")
	case <-notifier.Done():
	}
}

func content(title, body string) *view.Node {
	return view.Div(view.Class("bt-body"),
		view.If(title != "", view.H2(title)),
		view.If(body != "", view.P(body)))
}
