package kernel

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"kestrel/hal"
)

// Stats counts kernel loop events.
type Stats struct {
	Steps        uint64
	Switches     uint64
	Syscalls     uint64
	Preemptions  uint64
	Faults       uint64
	Idle         uint64
	Wakeups      uint64
	BytesWritten uint64
}

// Loop drives the system: switch into the current process, service the trap
// it returns with, poll interrupts, rotate.
type Loop struct {
	sched  *Scheduler
	irqs   *InterruptManager
	cpu    Switcher
	mem    Memory
	serial hal.Serial
	cfg    Config
	log    hclog.Logger

	stats   Stats
	scratch [64]byte
}

// Step runs one iteration of the kernel loop.
func (l *Loop) Step(ctx context.Context) {
	res, trap := l.sched.ExecCurrentProc()

	left := false
	switch res {
	case ExecNothing:
		l.stats.Idle++
		l.cpu.WaitForInterrupt(ctx)
	case ExecExecuted:
		l.stats.Switches++
		left = l.dispatch(trap)
	}

	released := l.irqs.CheckPending()
	if n := released.Len(); n > 0 {
		l.stats.Wakeups += uint64(n)
		l.sched.ResumeList(&released)
	}

	if res == ExecExecuted && !left {
		l.sched.ScheduleNext()
	}
	l.stats.Steps++
}

// Run steps until ctx is done or MaxSteps is reached.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Step(ctx)
		if l.cfg.MaxSteps > 0 && l.stats.Steps >= l.cfg.MaxSteps {
			return nil
		}
	}
}

// Stats returns a copy of the loop counters.
func (l *Loop) Stats() Stats { return l.stats }

// dispatch services trap for the current process. It returns true if the
// process left the active list.
func (l *Loop) dispatch(trap Trap) bool {
	p, ok := l.sched.CurrentProc()
	if !ok {
		return false
	}

	switch trap.Kind {
	case TrapSyscall:
		f, err := ReadFrame(l.mem, p.SP)
		if err != nil {
			l.log.Error("syscall frame unreadable", "pid", p.PID, "sp", hexWord(p.SP), "error", err)
			return false
		}
		l.stats.Syscalls++
		return l.syscall(p, DecodeSyscall(f))

	case TrapPreempted:
		l.stats.Preemptions++
		l.log.Trace("preempted", "pid", p.PID, "irq", trap.IRQ)

	case TrapFault:
		l.stats.Faults++
		l.sched.PopCurrentProc()
		l.log.Error("process faulted, dropping it", "pid", p.PID, "name", p.Name, "sp", hexWord(p.SP))
		return true
	}
	return false
}

func (l *Loop) syscall(p *Process, sc Syscall) bool {
	fn := lookupSyscall(sc.ID)
	if fn == nil {
		l.log.Debug("unknown syscall", "pid", p.PID, "id", uint32(sc.ID))
		return false
	}
	l.log.Trace("syscall", "pid", p.PID, "call", sc.ID)
	return fn(l, p, sc)
}

func hexWord(v uint32) string { return fmt.Sprintf("%#08x", v) }
