package cpu

import (
	"context"
	"fmt"
	"runtime"

	"kestrel/hal"
	"kestrel/kernel"
)

// Memory map of the simulated part (STM32F4-like).
const (
	FlashBase  uint32 = 0x08000000
	FlashSize  uint32 = 256 * 1024
	RodataBase uint32 = FlashBase + 128*1024
	SRAMBase   uint32 = 0x20000000
	SRAMSize   uint32 = 128 * 1024

	codeStride uint32 = 0x100
)

// Program is the body of a simulated process. It runs on its own goroutine,
// but only while the kernel has switched into it.
type Program func(t *Thread)

type registers struct {
	r    [13]uint32
	lr   uint32
	pc   uint32
	xpsr uint32
	psp  uint32
}

type trapEvent struct {
	kind kernel.TrapKind
	irq  hal.IRQ
}

// Sim is a single simulated Cortex-M core. It implements kernel.Switcher.
//
// Each process is a coroutine: SwitchTo resumes it and blocks until it traps,
// so exactly one of the kernel or one process runs at any time.
type Sim struct {
	mem  *Memory
	nvic *hal.SimNVIC

	programs  map[uint32]Program
	codeNext  uint32
	dataNext  uint32
	stackNext uint32

	threads [kernel.MaxProcesses]*Thread
	trapped chan trapEvent
	halted  bool

	live registers
}

// NewSim returns a core with flash and SRAM mapped, wired to nvic.
func NewSim(nvic *hal.SimNVIC) *Sim {
	s := &Sim{
		mem:       &Memory{},
		nvic:      nvic,
		programs:  make(map[uint32]Program),
		codeNext:  FlashBase,
		dataNext:  RodataBase,
		stackNext: SRAMBase + SRAMSize,
		trapped:   make(chan trapEvent),
	}
	// Both maps are disjoint and fixed, so neither can fail.
	_ = s.mem.Map(FlashBase, FlashSize, true)
	_ = s.mem.Map(SRAMBase, SRAMSize, false)
	return s
}

// Memory returns the core's address space.
func (s *Sim) Memory() *Memory { return s.mem }

// Load places p in flash and returns its entry address (Thumb bit set).
func (s *Sim) Load(p Program) uint32 {
	addr := s.codeNext
	s.codeNext += codeStride
	s.programs[addr] = p
	return addr | 1
}

// StoreData copies b into read-only data and returns its address.
func (s *Sim) StoreData(b []byte) (uint32, error) {
	addr := s.dataNext
	if err := s.mem.load(addr, b); err != nil {
		return 0, err
	}
	s.dataNext += (uint32(len(b)) + 3) &^ 3
	return addr, nil
}

// DataRegion is the read-only data area used by StoreData.
func (s *Sim) DataRegion() kernel.Region {
	return kernel.Region{Base: RodataBase, Size: FlashBase + FlashSize - RodataBase}
}

// AllocStack carves a static stack from the top of SRAM.
func (s *Sim) AllocStack(size uint32) (kernel.Region, error) {
	size = (size + 7) &^ 7
	if size == 0 || s.stackNext-SRAMBase < size {
		return kernel.Region{}, fmt.Errorf("alloc stack of %d bytes: %w", size, kernel.ErrBadStack)
	}
	s.stackNext -= size
	return kernel.Region{Base: s.stackNext, Size: size}, nil
}

// SwitchTo runs p until it traps.
func (s *Sim) SwitchTo(p *kernel.Process) kernel.Trap {
	if s.halted || int(p.PID) >= len(s.threads) {
		return kernel.Trap{Kind: kernel.TrapFault}
	}
	th := s.threads[p.PID]
	if th == nil {
		th = &Thread{sim: s, pid: p.PID, resume: make(chan struct{})}
		s.threads[p.PID] = th
	}
	if th.exited {
		return kernel.Trap{Kind: kernel.TrapFault}
	}

	s.live.psp = p.SP
	copy(s.live.r[4:12], p.Regs[:])
	if err := s.exceptionReturn(); err != nil {
		return kernel.Trap{Kind: kernel.TrapFault}
	}

	if !th.started {
		prog, ok := s.programs[s.live.pc]
		if !ok {
			th.exited = true
			return kernel.Trap{Kind: kernel.TrapFault}
		}
		th.started = true
		go th.run(prog)
	} else {
		th.resume <- struct{}{}
	}

	ev := <-s.trapped
	if err := s.exceptionEntry(); err != nil {
		th.halt()
		return kernel.Trap{Kind: kernel.TrapFault}
	}
	if ev.kind == kernel.TrapPreempted {
		if vec := s.nvic.Vector(ev.irq); vec != nil {
			vec()
		}
	}

	copy(p.Regs[:], s.live.r[4:12])
	p.SP = s.live.psp
	return kernel.Trap{Kind: ev.kind, IRQ: ev.irq}
}

// Halt stops every process coroutine. Halted processes fault if switched to
// again. Call it once the kernel loop has returned.
func (s *Sim) Halt() {
	s.halted = true
	for _, th := range s.threads {
		if th != nil {
			th.halt()
		}
	}
}

// WaitForInterrupt sleeps until a line is active, then takes it in kernel
// mode: the vector runs and control returns to the caller.
func (s *Sim) WaitForInterrupt(ctx context.Context) {
	id, ok := s.nvic.Wait(ctx)
	if !ok {
		return
	}
	if vec := s.nvic.Vector(id); vec != nil {
		vec()
		return
	}
	s.nvic.Disable(id)
}

// exceptionReturn pops the hardware frame at psp into the live registers.
func (s *Sim) exceptionReturn() error {
	f, err := kernel.ReadFrame(s.mem, s.live.psp)
	if err != nil {
		return err
	}
	s.live.r[0], s.live.r[1], s.live.r[2], s.live.r[3] = f.R0, f.R1, f.R2, f.R3
	s.live.r[12] = f.R12
	s.live.lr = f.LR
	s.live.pc = f.PC
	s.live.xpsr = f.XPSR
	s.live.psp += kernel.FrameBytes
	return nil
}

// exceptionEntry pushes the live registers as a hardware frame below psp.
func (s *Sim) exceptionEntry() error {
	sp := s.live.psp - kernel.FrameBytes
	f := kernel.Frame{
		R0:   s.live.r[0],
		R1:   s.live.r[1],
		R2:   s.live.r[2],
		R3:   s.live.r[3],
		R12:  s.live.r[12],
		LR:   s.live.lr,
		PC:   s.live.pc,
		XPSR: s.live.xpsr,
	}
	if err := kernel.WriteFrame(s.mem, sp, f); err != nil {
		return err
	}
	s.live.psp = sp
	return nil
}

// Thread is the process-side view of the core.
type Thread struct {
	sim    *Sim
	pid    kernel.PID
	resume chan struct{}

	started bool
	exited  bool
	halted  bool
}

func (t *Thread) run(prog Program) {
	defer func() {
		if t.halted {
			return
		}
		_ = recover()
		t.exited = true
		t.sim.trapped <- trapEvent{kind: kernel.TrapFault}
	}()
	prog(t)
}

// halt releases the goroutine parked in trap. Only the kernel side calls it,
// while the thread is not running.
func (t *Thread) halt() {
	if t.halted {
		return
	}
	t.halted = true
	t.exited = true
	close(t.resume)
}

func (t *Thread) trap(kind kernel.TrapKind, irq hal.IRQ) {
	t.sim.live.pc += 2
	t.sim.trapped <- trapEvent{kind: kind, irq: irq}
	if _, ok := <-t.resume; !ok {
		runtime.Goexit()
	}
}

// PID returns the process id the thread runs as.
func (t *Thread) PID() kernel.PID { return t.pid }

// Reg returns general purpose register r0-r12.
func (t *Thread) Reg(i int) uint32 { return t.sim.live.r[i] }

// SetReg sets general purpose register r0-r12.
func (t *Thread) SetReg(i int, v uint32) { t.sim.live.r[i] = v }

// SP returns the process stack pointer.
func (t *Thread) SP() uint32 { return t.sim.live.psp }

// Memory returns the address space as the process sees it.
func (t *Thread) Memory() kernel.Memory { return t.sim.mem }

// Svc executes the supervisor call instruction with r0 = id and r1.. = args.
func (t *Thread) Svc(id kernel.SyscallID, args ...uint32) {
	t.sim.live.r[0] = uint32(id)
	for i := 0; i < len(args) && i < 3; i++ {
		t.sim.live.r[i+1] = args[i]
	}
	t.trap(kernel.TrapSyscall, 0)
}

// Poll is an instruction boundary: a pending enabled interrupt preempts the
// thread here.
func (t *Thread) Poll() {
	if id, ok := t.sim.nvic.Active(); ok {
		t.trap(kernel.TrapPreempted, id)
		return
	}
	runtime.Gosched()
}

// Write copies b onto the stack and asks the kernel to send it.
func (t *Thread) Write(b []byte) {
	s := t.sim
	sp := s.live.psp
	addr := (sp - uint32(len(b))) &^ 7
	if err := s.mem.WriteBytes(addr, b); err != nil {
		panic(fmt.Sprintf("write: stack overflow: %v", err))
	}
	s.live.psp = addr
	t.Svc(kernel.SysWrite, addr, uint32(len(b)))
	s.live.psp = sp
}

func (t *Thread) WriteString(str string) { t.Write([]byte(str)) }

// WaitIRQ blocks until id fires.
func (t *Thread) WaitIRQ(id hal.IRQ) { t.Svc(kernel.SysWaitIRQ, uint32(id)) }
