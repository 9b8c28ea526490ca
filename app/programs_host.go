//go:build !tinygo

package app

import (
	"strconv"

	"kestrel/cpu"
	"kestrel/hal"
)

// hello greets once, then reports every button press.
func hello(t *cpu.Thread) {
	t.WriteString("app_main\n")
	for n := 1; ; n++ {
		t.WaitIRQ(hal.IRQEXTI15_10)
		t.WriteString("button " + strconv.Itoa(n) + "\n")
	}
}

// rxwatch counts USART3 receive interrupts. It starts parked on the line.
func rxwatch(t *cpu.Thread) {
	for n := 1; ; n++ {
		t.WriteString("[rx " + strconv.Itoa(n) + "]\n")
		t.WaitIRQ(hal.IRQUSART3)
	}
}
