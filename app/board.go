package app

import (
	"kestrel/hal"
	"kestrel/kernel"
)

// proc is a statically linked process waiting to be admitted at boot.
type proc struct {
	name  string
	entry uint32
	stack kernel.Region
	// waitOn parks the process on an interrupt instead of the active list.
	waitOn *hal.IRQ
}

type board struct {
	kernel.Board
	readOnly []kernel.Region
	procs    []proc
	// halt releases the core's process contexts once the loop is cancelled.
	halt func()
}

func irqRef(id hal.IRQ) *hal.IRQ { return &id }
