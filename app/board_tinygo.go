//go:build tinygo && baremetal && stm32f4

package app

import (
	"device/arm"
	"strconv"
	"unsafe"

	"kestrel/cpu"
	"kestrel/hal"
	"kestrel/kernel"
)

const processStackWords = 256

// Process stacks live in .bss; uint64 keeps them 8-byte aligned.
var (
	helloStack   [processStackWords]uint64
	rxwatchStack [processStackWords]uint64
)

// Entry points are resolved by the linker.
//
//go:extern kestrel_hello
var helloEntry [0]byte

//go:extern kestrel_rxwatch
var rxwatchEntry [0]byte

func newBoard(h hal.HAL) (*board, error) {
	return &board{
		Board: kernel.Board{
			CPU:        cpu.NewCortexM(),
			Memory:     cpu.Flat{},
			Serial:     h.Serial(),
			Interrupts: h.Interrupts(),
			Vectors:    h.Vectors(),
		},
		procs: []proc{
			{name: "hello", entry: addrOf(unsafe.Pointer(&helloEntry)), stack: stackOf(&helloStack)},
			{name: "rxwatch", entry: addrOf(unsafe.Pointer(&rxwatchEntry)), stack: stackOf(&rxwatchStack), waitOn: irqRef(hal.IRQUSART3)},
		},
	}, nil
}

func addrOf(p unsafe.Pointer) uint32 { return uint32(uintptr(p)) }

func stackOf(s *[processStackWords]uint64) kernel.Region {
	return kernel.Region{Base: addrOf(unsafe.Pointer(s)), Size: uint32(len(s) * 8)}
}

func svcWrite(b []byte) {
	if len(b) == 0 {
		return
	}
	arm.AsmFull(`
		mov r0, #1
		mov r1, {ptr}
		mov r2, {n}
		svc 1
	`, map[string]interface{}{
		"ptr": unsafe.Pointer(&b[0]),
		"n":   len(b),
	})
}

func svcWaitIRQ(id hal.IRQ) {
	arm.AsmFull(`
		mov r0, #2
		mov r1, {id}
		svc 1
	`, map[string]interface{}{
		"id": uint32(id),
	})
}

//export kestrel_hello
func helloMain() {
	svcWrite([]byte("app_main\n"))
	var line [16]byte
	for n := 1; ; n++ {
		svcWaitIRQ(hal.IRQEXTI15_10)
		svcWrite(append(append(line[:0], "button "...), strconv.Itoa(n)+"\n"...))
	}
}

//export kestrel_rxwatch
func rxwatchMain() {
	var line [16]byte
	for n := 1; ; n++ {
		svcWrite(append(append(line[:0], "[rx "...), strconv.Itoa(n)+"]\n"...))
		svcWaitIRQ(hal.IRQUSART3)
	}
}
