package kernel

import (
	"errors"
	"fmt"
)

// MaxProcesses is the number of process slots in a Table.
const MaxProcesses = 8

var (
	ErrTableFull = errors.New("process table full")
	ErrBadStack  = errors.New("bad stack region")
)

// PID identifies a process slot. It is also the process's list item: lists
// hold PIDs, and a PID sits in at most one list at a time.
type PID uint8

// Process is a saved execution context.
//
// While the process is not running, SP points at a complete hardware frame.
type Process struct {
	PID   PID
	Name  string
	SP    uint32
	Regs  Regs
	Entry uint32
	Stack Region
}

// Table owns every process for the life of the system.
type Table struct {
	procs [MaxProcesses]Process
	count PID
}

// Spawn creates a process that starts at entry on the given stack.
//
// The initial frame is written at the top of the stack, so the first switch
// into the process is an ordinary exception return.
func (t *Table) Spawn(mem Memory, name string, entry uint32, stack Region) (PID, error) {
	if t.count >= MaxProcesses {
		return 0, fmt.Errorf("spawn %s: %w", name, ErrTableFull)
	}
	if stack.Size < FrameBytes || stack.End()%8 != 0 || stack.End() < stack.Base {
		return 0, fmt.Errorf("spawn %s: %w: base=%#08x size=%d", name, ErrBadStack, stack.Base, stack.Size)
	}

	sp := stack.End() - FrameBytes
	f := Frame{
		LR:   exitLR,
		PC:   entry &^ 1,
		XPSR: XPSRThumb,
	}
	if err := WriteFrame(mem, sp, f); err != nil {
		return 0, fmt.Errorf("spawn %s: %w", name, err)
	}

	pid := t.count
	t.count++
	t.procs[pid] = Process{
		PID:   pid,
		Name:  name,
		SP:    sp,
		Entry: entry,
		Stack: stack,
	}
	return pid, nil
}

// Get returns the process in slot pid, or nil.
func (t *Table) Get(pid PID) *Process {
	if pid >= t.count {
		return nil
	}
	return &t.procs[pid]
}

// Len returns the number of spawned processes.
func (t *Table) Len() int { return int(t.count) }
