package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔╗ ┬ ┬┌┬┐┌┬┐┌─┐┬─┐┬ ┬╔╦╗┌─┐┌─┐┌─┐┌┬┐
  ╠╩╗│ │ │  │ ├┤ ├┬┘└┬┘ ║ │ │├─┤└─┐ │
  ╚═╝└─┘ ┴  ┴ └─┘┴└─ ┴  ╩ └─┘┴ ┴└─┘ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "butterytoast",
		Short: "Server-driven toast notifications over WebSocket",
		Long: `ButteryToast presents transient toast notifications from Go.

Toasts are built as view trees on the server, streamed to a thin
JavaScript client over a binary WebSocket protocol, and animated,
auto-dismissed, and tapped away without any client-side state.
Features include:

  • Reference-identity toast lifecycle with delegate callbacks
  • Slide-and-fade presentation driven from the server
  • Auto-dismiss timers and tap-to-dismiss
  • Prometheus metrics and hot reload in dev mode
  • < 10KB JavaScript client`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the ButteryToast ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
