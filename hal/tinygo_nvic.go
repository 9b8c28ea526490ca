//go:build tinygo && baremetal && stm32f4

package hal

import (
	"device/arm"
	"device/stm32"
	"fmt"
	"runtime/interrupt"
)

var deviceVectors [NumIRQs]func()

// TinyGo binds interrupt handlers at compile time, so every line the board
// can use gets a fixed entry that forwards to deviceVectors.
//
// Both lines are level sensitive while their peripheral flag is set (RXNE,
// EXTI PR13), so the NVIC pending bit comes back after exception entry and
// stays set until the flag is cleared.
func init() {
	interrupt.New(stm32.IRQ_USART3, func(interrupt.Interrupt) {
		runVector(IRQUSART3)
	})
	interrupt.New(stm32.IRQ_EXTI15_10, func(interrupt.Interrupt) {
		runVector(IRQEXTI15_10)
	})
}

func runVector(id IRQ) {
	if fn := deviceVectors[id]; fn != nil {
		fn()
	}
}

// deviceNVIC drives the Cortex-M NVIC registers.
type deviceNVIC struct{}

func (deviceNVIC) Enable(id IRQ)  { arm.EnableIRQ(uint32(id)) }
func (deviceNVIC) Disable(id IRQ) { arm.DisableIRQ(uint32(id)) }

func (deviceNVIC) IsPending(id IRQ) bool {
	return arm.NVIC.ISPR[id>>5].HasBits(1 << (id & 31))
}

func (deviceNVIC) ClearPending(id IRQ) {
	if id == IRQEXTI15_10 {
		stm32.EXTI.PR.Set(1 << 13)
	}
	arm.NVIC.ICPR[id>>5].Set(1 << (id & 31))
}

func (deviceNVIC) Install(id IRQ, handler func()) error {
	switch id {
	case IRQUSART3, IRQEXTI15_10:
		deviceVectors[id] = handler
		return nil
	default:
		return fmt.Errorf("install vector %s: %w", id, ErrBadIRQ)
	}
}
