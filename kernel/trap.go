package kernel

import (
	"context"

	"kestrel/hal"
)

// TrapKind says why a process handed control back to the kernel.
type TrapKind uint8

const (
	TrapNone TrapKind = iota
	TrapSyscall
	TrapPreempted
	// TrapFault means the process can no longer run (bad frame, stack
	// overflow, or it returned from its entry point).
	TrapFault
)

func (k TrapKind) String() string {
	switch k {
	case TrapNone:
		return "none"
	case TrapSyscall:
		return "syscall"
	case TrapPreempted:
		return "preempted"
	case TrapFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Trap is the result of one context switch.
//
// Kind is decided at exception entry, so a syscall and an interrupt arriving
// right after it can never be confused.
type Trap struct {
	Kind TrapKind
	IRQ  hal.IRQ // valid for TrapPreempted
}

// Switcher moves the CPU into a process and back.
//
// SwitchTo loads p.SP and p.Regs, runs the process until it traps, and stores
// the new stack pointer and r4-r11 back into p before returning.
type Switcher interface {
	SwitchTo(p *Process) Trap
	// WaitForInterrupt sleeps until an enabled interrupt is pending or ctx is done.
	WaitForInterrupt(ctx context.Context)
}
