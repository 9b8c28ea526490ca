//go:build !tinygo

package hal

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// HostConfig selects the host board's optional parts.
type HostConfig struct {
	// Console renders serial output into a framebuffer for the window.
	Console bool
	// LogLevel is a logrus level name; empty means "info".
	LogLevel string
	// LogOutput receives board log lines; nil means stderr.
	LogOutput io.Writer
}

type hostHAL struct {
	logger  *hostLogger
	led     *hostLED
	nvic    *SimNVIC
	serial  *hostSerial
	fb      *hostFramebuffer
	console *hostConsole
}

// New returns a host HAL with default settings.
func New() HAL {
	return newHost(HostConfig{})
}

func newHost(cfg HostConfig) *hostHAL {
	logger := newHostLogger(cfg)
	nvic := NewSimNVIC()

	var out io.Writer = os.Stdout
	var fb *hostFramebuffer
	var console *hostConsole
	if cfg.Console {
		fb = newHostFramebuffer(480, 320)
		console = newHostConsole(fb)
		out = io.MultiWriter(os.Stdout, console)
	}

	return &hostHAL{
		logger:  logger,
		led:     &hostLED{logger: logger},
		nvic:    nvic,
		serial:  newHostSerial(out, nvic, IRQUSART3),
		fb:      fb,
		console: console,
	}
}

func (h *hostHAL) Logger() Logger                  { return h.logger }
func (h *hostHAL) LED() LED                        { return h.led }
func (h *hostHAL) Serial() Serial                  { return h.serial }
func (h *hostHAL) Interrupts() InterruptController { return h.nvic }
func (h *hostHAL) Vectors() VectorTable            { return h.nvic }
func (h *hostHAL) Display() Display                { return hostDisplay{fb: h.fb} }

// pressButton models the user button on PC13 raising EXTI15_10.
func (h *hostHAL) pressButton() {
	h.nvic.Pend(IRQEXTI15_10)
}

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer {
	if d.fb == nil {
		return nil
	}
	return d.fb
}

type hostLogger struct {
	log *logrus.Logger
}

func newHostLogger(cfg HostConfig) *hostLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if cfg.LogOutput != nil {
		l.SetOutput(cfg.LogOutput)
	}
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableQuote: true})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return &hostLogger{log: l}
}

func (l *hostLogger) WriteLineString(s string) {
	l.log.Info(s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.log.Info(string(b))
}

type hostLED struct {
	mu     sync.Mutex
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = true
	l.logger.log.WithField("led", "LD2").Debug("HIGH")
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = false
	l.logger.log.WithField("led", "LD2").Debug("LOW")
}
