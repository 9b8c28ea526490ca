package kernel

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"kestrel/hal"
)

// ErrAlreadyQueued is returned when a process is admitted while it already
// sits on a list.
var ErrAlreadyQueued = errors.New("process already queued")

// Config tunes a System. The zero value is usable.
type Config struct {
	Logger hclog.Logger

	// StrictSyscallBounds rejects write buffers that are not inside the
	// caller's stack or one of ReadOnlyRegions. Off by default: the kernel
	// trusts process pointers.
	StrictSyscallBounds bool
	ReadOnlyRegions     []Region

	// MaxSteps stops Run after that many loop iterations (0 = forever).
	MaxSteps uint64
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
	return c
}

// Board is the hardware a System runs on.
type Board struct {
	CPU        Switcher
	Memory     Memory
	Serial     hal.Serial
	Interrupts hal.InterruptController
	Vectors    hal.VectorTable
}

// System is the kernel state: process table, scheduler, interrupt registry
// and the loop that drives them.
type System struct {
	board Board
	log   hclog.Logger

	procs Table
	sched *Scheduler
	irqs  *InterruptManager
	loop  *Loop
}

// NewSystem creates a kernel instance with no processes and no interrupts.
func NewSystem(cfg Config, b Board) *System {
	cfg = cfg.withDefaults()
	s := &System{board: b, log: cfg.Logger}
	s.sched = NewScheduler(&s.procs, b.CPU)
	s.irqs = NewInterruptManager(b.Interrupts, b.Vectors, cfg.Logger.Named("irq"))
	s.loop = &Loop{
		sched:  s.sched,
		irqs:   s.irqs,
		cpu:    b.CPU,
		mem:    b.Memory,
		serial: b.Serial,
		cfg:    cfg,
		log:    cfg.Logger.Named("loop"),
	}
	return s
}

// Spawn creates a process. It does not run until Start or StartWaiting.
func (s *System) Spawn(name string, entry uint32, stack Region) (PID, error) {
	pid, err := s.procs.Spawn(s.board.Memory, name, entry, stack)
	if err != nil {
		return 0, err
	}
	s.log.Debug("spawned process", "pid", pid, "name", name,
		"entry", hexWord(entry), "sp", hexWord(s.procs.Get(pid).SP))
	return pid, nil
}

// Start admits pid to the active list.
func (s *System) Start(pid PID) error {
	if s.procs.Get(pid) == nil {
		return fmt.Errorf("start pid %d: no such process", pid)
	}
	if s.queued(pid) {
		return fmt.Errorf("start pid %d: %w", pid, ErrAlreadyQueued)
	}
	s.sched.Push(pid)
	return nil
}

// StartWaiting parks pid until id fires.
func (s *System) StartWaiting(id hal.IRQ, pid PID) error {
	if s.procs.Get(pid) == nil {
		return fmt.Errorf("start pid %d: no such process", pid)
	}
	if s.queued(pid) {
		return fmt.Errorf("start pid %d: %w", pid, ErrAlreadyQueued)
	}
	return s.irqs.PushWait(id, pid)
}

// queued reports whether pid is on the active, waiting or any interrupt list.
func (s *System) queued(pid PID) bool {
	return s.sched.Contains(pid) || s.irqs.Contains(pid)
}

// Register installs a handler for id. See InterruptManager.Register.
func (s *System) Register(id hal.IRQ, fn func()) error {
	return s.irqs.Register(id, fn)
}

// Process returns the process with the given pid, or nil.
func (s *System) Process(pid PID) *Process { return s.procs.Get(pid) }

func (s *System) Scheduler() *Scheduler         { return s.sched }
func (s *System) Interrupts() *InterruptManager { return s.irqs }
func (s *System) Step(ctx context.Context)      { s.loop.Step(ctx) }
func (s *System) Run(ctx context.Context) error { return s.loop.Run(ctx) }
func (s *System) Stats() Stats                  { return s.loop.Stats() }
