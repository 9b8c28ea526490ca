//go:build !tinygo

package app

import (
	"errors"
	"fmt"

	"kestrel/cpu"
	"kestrel/hal"
	"kestrel/kernel"
)

const processStackSize = 1024

// newBoard wires the simulated core to the host HAL and links the board
// programs into it.
func newBoard(h hal.HAL) (*board, error) {
	nvic, ok := h.Interrupts().(*hal.SimNVIC)
	if !ok {
		return nil, errors.New("host board needs the simulated NVIC")
	}
	sim := cpu.NewSim(nvic)

	b := &board{
		Board: kernel.Board{
			CPU:        sim,
			Memory:     sim.Memory(),
			Serial:     h.Serial(),
			Interrupts: nvic,
			Vectors:    nvic,
		},
	}
	for _, p := range []struct {
		name   string
		prog   cpu.Program
		waitOn *hal.IRQ
	}{
		{name: "hello", prog: hello},
		{name: "rxwatch", prog: rxwatch, waitOn: irqRef(hal.IRQUSART3)},
	} {
		stack, err := sim.AllocStack(processStackSize)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.name, err)
		}
		b.procs = append(b.procs, proc{
			name:   p.name,
			entry:  sim.Load(p.prog),
			stack:  stack,
			waitOn: p.waitOn,
		})
	}
	b.readOnly = append(b.readOnly, sim.DataRegion())
	b.halt = sim.Halt
	return b, nil
}
