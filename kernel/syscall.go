package kernel

import "kestrel/hal"

// SyscallID is the value a process puts in r0 before the trap instruction.
type SyscallID uint32

const (
	// SysWrite emits r2 bytes starting at address r1 on the serial line.
	SysWrite SyscallID = 1
	// SysWaitIRQ blocks the caller until interrupt r1 fires.
	SysWaitIRQ SyscallID = 2
)

func (id SyscallID) String() string {
	switch id {
	case SysWrite:
		return "write"
	case SysWaitIRQ:
		return "wait_irq"
	default:
		return "unknown"
	}
}

// Syscall is a decoded supervisor call.
type Syscall struct {
	ID   SyscallID
	Args [3]uint32
}

// DecodeSyscall reads the call out of the frame the trap left behind:
// word 0 is the id, words 1..3 are arguments.
func DecodeSyscall(f Frame) Syscall {
	return Syscall{ID: SyscallID(f.R0), Args: [3]uint32{f.R1, f.R2, f.R3}}
}

// syscallFunc runs one call for p. It returns true if p left the active list.
type syscallFunc func(l *Loop, p *Process, sc Syscall) bool

var syscallTable = [...]syscallFunc{
	SysWrite:   sysWrite,
	SysWaitIRQ: sysWaitIRQ,
}

func lookupSyscall(id SyscallID) syscallFunc {
	if uint64(id) >= uint64(len(syscallTable)) {
		return nil
	}
	return syscallTable[id]
}

// sysWrite copies the caller's buffer to the serial line a byte at a time.
// Unless StrictSyscallBounds is set the pointer is trusted as-is.
func sysWrite(l *Loop, p *Process, sc Syscall) bool {
	ptr := sc.Args[0]
	n := int32(sc.Args[1])
	if n < 0 {
		l.log.Warn("write: negative length", "pid", p.PID, "len", n)
		return false
	}
	if l.cfg.StrictSyscallBounds && !l.readable(p, ptr, uint32(n)) {
		l.log.Warn("write: buffer outside process memory", "pid", p.PID,
			"ptr", hexWord(ptr), "len", n)
		return false
	}

	rest := uint32(n)
	for rest > 0 {
		chunk := l.scratch[:]
		if uint32(len(chunk)) > rest {
			chunk = chunk[:rest]
		}
		if err := l.mem.ReadBytes(chunk, ptr); err != nil {
			l.log.Warn("write: unreadable buffer", "pid", p.PID, "error", err)
			return false
		}
		for _, c := range chunk {
			if err := l.serial.WriteByte(c); err != nil {
				l.log.Error("write: serial", "pid", p.PID, "error", err)
				return false
			}
			l.stats.BytesWritten++
		}
		ptr += uint32(len(chunk))
		rest -= uint32(len(chunk))
	}
	return false
}

func sysWaitIRQ(l *Loop, p *Process, sc Syscall) bool {
	id := hal.IRQ(sc.Args[0])
	if !l.irqs.IsRegistered(id) {
		l.log.Warn("wait_irq: no handler", "pid", p.PID, "irq", id)
		return false
	}
	pid, ok := l.sched.PopCurrentProc()
	if !ok {
		return false
	}
	if err := l.irqs.PushWait(id, pid); err != nil {
		l.sched.Push(pid)
		return false
	}
	return true
}

// readable reports whether [ptr, ptr+n) is inside p's stack or a read-only region.
func (l *Loop) readable(p *Process, ptr, n uint32) bool {
	if p.Stack.Contains(ptr, n) {
		return true
	}
	for _, r := range l.cfg.ReadOnlyRegions {
		if r.Contains(ptr, n) {
			return true
		}
	}
	return false
}
