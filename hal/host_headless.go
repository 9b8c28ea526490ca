//go:build !tinygo

package hal

import (
	"context"
	"os"
	"time"
)

// HeadlessConfig controls the terminal runner.
type HeadlessConfig struct {
	Enabled bool
	// TTY attaches the controlling terminal in raw mode as the USART3 line.
	TTY bool
	// ButtonEvery presses the user button periodically (0 = never).
	ButtonEvery time.Duration
}

// RunHeadless runs the board in the terminal until ctx is done or the
// application returns.
func RunHeadless(ctx context.Context, newApp func(HAL) func(context.Context) error, hc HostConfig, cfg HeadlessConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.TTY && hc.LogOutput == nil {
		hc.LogOutput = crlfWriter{w: os.Stderr}
	}
	h := newHost(hc)

	if cfg.TTY {
		restore, err := attachTTY(h.serial, cancel)
		if err != nil {
			return err
		}
		defer restore()
	}

	if cfg.ButtonEvery > 0 {
		go func() {
			t := time.NewTicker(cfg.ButtonEvery)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					h.pressButton()
				}
			}
		}()
	}

	return newApp(h)(ctx)
}
