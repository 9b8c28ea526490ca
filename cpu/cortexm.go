//go:build tinygo && cortexm

package cpu

import (
	"context"
	"device/arm"
	"runtime/volatile"
	"unsafe"

	"kestrel/hal"
	"kestrel/kernel"
)

// Set by the SVC and IRQ exception entry glue when the exception came from
// the process stack (EXC_RETURN 0xFFFFFFFD). The glue also stores r4-r11 into
// the block whose address the switch left on the main stack, then returns to
// the kernel with EXC_RETURN 0xFFFFFFF9.
//
//go:extern kestrel_svc_fired
var svcFired volatile.Register32

// IRQ number plus one, zero when the trap was not an interrupt.
//
//go:extern kestrel_irq_fired
var irqFired volatile.Register32

// CortexM switches into processes on the real core.
type CortexM struct{}

func NewCortexM() *CortexM { return &CortexM{} }

// SwitchTo loads psp and r4-r11, traps with svc so the glue can exception
// return onto the process stack, and reads both back once the process traps.
func (c *CortexM) SwitchTo(p *kernel.Process) kernel.Trap {
	regs := unsafe.Pointer(&p.Regs[0])
	sp := arm.AsmFull(`
		mov r0, {sp}
		mov r1, {regs}
		push {r1, r4-r11}
		msr psp, r0
		ldmia r1, {r4-r11}
		svc 0
		pop {r1}
		stmia r1, {r4-r11}
		pop {r4-r11}
		mrs {}, psp
	`, map[string]interface{}{
		"sp":   uintptr(p.SP),
		"regs": regs,
	})
	p.SP = uint32(sp)

	// Read and clear in one place: the trap kind travels with the switch.
	if svcFired.Get() != 0 {
		svcFired.Set(0)
		irqFired.Set(0)
		return kernel.Trap{Kind: kernel.TrapSyscall}
	}
	if n := irqFired.Get(); n != 0 {
		irqFired.Set(0)
		return kernel.Trap{Kind: kernel.TrapPreempted, IRQ: hal.IRQ(n - 1)}
	}
	return kernel.Trap{Kind: kernel.TrapNone}
}

func (c *CortexM) WaitForInterrupt(ctx context.Context) {
	arm.Asm("wfi")
}

// Flat is the core's flat address space.
type Flat struct{}

func (Flat) ReadWord(addr uint32) (uint32, error) {
	return *(*uint32)(unsafe.Pointer(uintptr(addr))), nil
}

func (Flat) WriteWord(addr, v uint32) error {
	*(*uint32)(unsafe.Pointer(uintptr(addr))) = v
	return nil
}

func (Flat) ReadBytes(dst []byte, addr uint32) error {
	copy(dst, unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), len(dst)))
	return nil
}

func (Flat) WriteBytes(addr uint32, src []byte) error {
	copy(unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), len(src)), src)
	return nil
}
