package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	butterytoast "github.com/jefferyq2/ButteryToast"
	"github.com/jefferyq2/ButteryToast/internal/config"
)

func serveCmd() *cobra.Command {
	var (
		addr       string
		configPath string
		dev        bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the toast server",
		Long: `Start the HTTP server that hosts the demo page, the embedded
JavaScript client, and the WebSocket endpoint browser sessions
connect to.

Toasts are triggered with POST /sessions/{id}/toasts and observed
on GET /metrics. In dev mode the client assets are served uncached
and connected browsers reload when watched files change.

Examples:
  butterytoast serve
  butterytoast serve --addr=:9000
  butterytoast serve --dev --log-level=debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, configPath, dev, logLevel)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from butterytoast.json)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to butterytoast.json")
	cmd.Flags().BoolVarP(&dev, "dev", "d", false, "Dev mode: uncached assets, live reload, permissive origins")
	cmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "Log level: debug|info|warn|error")

	return cmd
}

func runServe(addr, configPath string, dev bool, logLevel string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if addr != "" {
		cfg.Addr = addr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	printBanner()
	if cfg.Path() != "" {
		info("config %s", cfg.Path())
	} else {
		info("no %s found, using defaults", config.ConfigFileName)
	}
	info("listening on %s", cfg.Addr)
	if dev {
		warn("dev mode: origins unchecked, assets uncached")
	}
	fmt.Println()

	app := butterytoast.New(cfg,
		butterytoast.WithLogger(logger),
		butterytoast.WithDevMode(dev),
	)
	return app.Run()
}
