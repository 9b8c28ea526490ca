package app

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"kestrel/hal"
	"kestrel/internal/buildinfo"
	"kestrel/kernel"
)

// Config selects kernel policy for the board.
type Config struct {
	// StrictSyscalls bounds-checks write buffers against the caller's memory.
	StrictSyscalls bool
	// MaxSteps stops the kernel loop after that many iterations (0 = forever).
	MaxSteps uint64
	// LogLevel is an hclog level name ("trace" .. "error"); empty means "info".
	LogLevel string
}

// New boots the kernel on h and returns the function that runs it.
func New(h hal.HAL, cfg Config) func(context.Context) error {
	log := newLogger(h, cfg.LogLevel)
	installPanicHandler(h)

	b, err := newBoard(h)
	if err != nil {
		kernel.Fatal(fmt.Errorf("board: %w", err))
	}

	sys := kernel.NewSystem(kernel.Config{
		Logger:              log,
		StrictSyscallBounds: cfg.StrictSyscalls,
		ReadOnlyRegions:     b.readOnly,
		MaxSteps:            cfg.MaxSteps,
	}, b.Board)

	if err := boot(sys, h, b, log.Named("irq")); err != nil {
		kernel.Fatal(err)
	}

	return func(ctx context.Context) error {
		err := sys.Run(ctx)
		if err != nil && b.halt != nil {
			b.halt()
		}
		st := sys.Stats()
		log.Info("kernel loop stopped", "steps", st.Steps, "switches", st.Switches,
			"syscalls", st.Syscalls, "preemptions", st.Preemptions, "wakeups", st.Wakeups,
			"faults", st.Faults, "bytes", st.BytesWritten)
		return err
	}
}

// Run boots and runs the kernel forever (TinyGo entrypoint).
func Run(h hal.HAL, cfg Config) {
	_ = New(h, cfg)(context.Background())
	select {}
}

// boot registers the board's interrupts and admits its processes. Any error
// here is a build-time mistake and is fatal.
func boot(sys *kernel.System, h hal.HAL, b *board, irqLog hclog.Logger) error {
	serial := h.Serial()
	for _, c := range []byte(buildinfo.Banner() + "\n") {
		_ = serial.WriteByte(c)
	}

	if err := sys.Register(hal.IRQUSART3, echoHandler(serial, irqLog)); err != nil {
		return err
	}
	if err := sys.Register(hal.IRQEXTI15_10, ledToggler(h.LED())); err != nil {
		return err
	}

	for _, p := range b.procs {
		pid, err := sys.Spawn(p.name, p.entry, p.stack)
		if err != nil {
			return err
		}
		if p.waitOn != nil {
			err = sys.StartWaiting(*p.waitOn, pid)
		} else {
			err = sys.Start(pid)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// echoHandler sends back whatever USART3 received. Bytes the transmitter
// rejects are counted and logged once per interrupt.
func echoHandler(s hal.Serial, log hclog.Logger) func() {
	return func() {
		var (
			dropped int
			werr    error
		)
		for {
			c, err := s.ReadByte()
			if err != nil {
				break
			}
			if err := s.WriteByte(c); err != nil {
				dropped++
				werr = err
			}
		}
		if dropped > 0 {
			log.Warn("echo dropped bytes", "count", dropped, "error", werr)
		}
	}
}

func ledToggler(led hal.LED) func() {
	on := false
	return func() {
		if led == nil {
			return
		}
		on = !on
		if on {
			led.High()
		} else {
			led.Low()
		}
	}
}

func newLogger(h hal.HAL, level string) hclog.Logger {
	if level == "" {
		level = "info"
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:        "kestrel",
		Level:       hclog.LevelFromString(level),
		Output:      lineWriter{l: h.Logger()},
		DisableTime: true,
	})
}

// lineWriter feeds hclog output to the board logger one line at a time.
type lineWriter struct {
	l hal.Logger
}

func (w lineWriter) Write(p []byte) (int, error) {
	if w.l == nil {
		return len(p), nil
	}
	start := 0
	for i, c := range p {
		if c != '\n' {
			continue
		}
		if i > start {
			w.l.WriteLineBytes(p[start:i])
		}
		start = i + 1
	}
	if start < len(p) {
		w.l.WriteLineBytes(p[start:])
	}
	return len(p), nil
}
