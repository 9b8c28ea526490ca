//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"kestrel/app"
	"kestrel/hal"
)

func main() {
	var (
		hcfg hal.HeadlessConfig
		cfg  app.Config
	)
	flag.BoolVar(&hcfg.Enabled, "headless", false, "Run in the terminal without a window.")
	flag.BoolVar(&hcfg.TTY, "tty", true, "In headless mode, use the terminal in raw mode as the USART3 line.")
	flag.DurationVar(&hcfg.ButtonEvery, "button-every", 0, "Press the user button periodically (0 = never).")
	flag.Uint64Var(&cfg.MaxSteps, "steps", 0, "Stop after N kernel loop iterations (0 = run forever).")
	flag.BoolVar(&cfg.StrictSyscalls, "strict-syscalls", false, "Bounds-check syscall buffers against the caller's memory.")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: trace, debug, info, warn, error.")
	flag.Parse()

	hostCfg := hal.HostConfig{LogLevel: cfg.LogLevel}
	newApp := func(h hal.HAL) func(context.Context) error {
		return app.New(h, cfg)
	}

	if hcfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, hostCfg, hcfg); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	hostCfg.Console = true
	if err := hal.RunWindow(newApp, hostCfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
