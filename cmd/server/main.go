// Command server runs the multi-channel chat server: it loads a channel
// table, starts one TCP listener per channel, and optionally exposes an
// admin console and a read-only HTTP status API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"

	"relaychat/internal/chat"
	"relaychat/internal/config"
	"relaychat/internal/console"
	"relaychat/internal/httpapi"
	"relaychat/internal/metrics"
	"relaychat/internal/registry"
)

func main() {
	var (
		admin      = flag.Bool("admin", true, "run the interactive admin console on stdin")
		apiAddr    = flag.String("api-addr", "", "address to serve the read-only status API on, empty disables it")
		metricsLog = flag.Duration("metrics-interval", 30*time.Second, "interval between metrics log lines")
		logColor   = flag.String("log-color", "auto", "colorize admin console output: auto, always, or never")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <config-path>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	switch *logColor {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto":
		// leave fatih/color's own isatty-based detection in place.
	default:
		log.Fatalf("server: invalid -log-color %q: want auto, always, or never", *logColor)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	configPath := flag.Arg(0)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("server: %v", err)
	}

	channels := make([]*chat.Channel, 0, len(cfg.Channels))
	for _, c := range cfg.Channels {
		channels = append(channels, chat.NewChannel(c.Name, c.Port, c.Capacity))
	}
	reg := registry.New(channels)

	errs := make(chan error, len(channels))
	reg.StartAll(errs)

	ctx, cancel := context.WithCancel(context.Background())
	go metrics.Run(ctx, reg, *metricsLog)

	var api *httpapi.Server
	if *apiAddr != "" {
		api = httpapi.New(reg)
		go func() {
			if err := api.Start(*apiAddr); err != nil {
				log.Printf("server: status api stopped: %v", err)
			}
		}()
	}

	shutdown := func() {
		cancel()
		if api != nil {
			api.Shutdown()
		}
		os.Exit(0)
	}

	if *admin {
		console.New(reg, os.Stdout, shutdown).Run(os.Stdin)
		return
	}

	for err := range errs {
		log.Printf("server: channel failed: %v", err)
	}
}
