//go:build tinygo && baremetal && stm32f4

package hal

import (
	"device/stm32"
	"machine"
)

type tinyGoHAL struct {
	logger *uartLogger
	led    *pinLED
	serial *usart3
	nvic   *deviceNVIC
}

// New returns the STM32F4 board HAL.
//
// USART3 on PD8 (TX) / PD9 (RX), 9600 8N1 from the 16 MHz HSI, RX interrupt
// enabled. Build with -serial=none so the runtime leaves USART3 alone.
// User button on PC13 raises EXTI15_10.
func New() HAL {
	stm32.RCC.AHB1ENR.SetBits(stm32.RCC_AHB1ENR_GPIODEN | stm32.RCC_AHB1ENR_GPIOCEN)
	stm32.RCC.APB1ENR.SetBits(stm32.RCC_APB1ENR_USART3EN)
	stm32.RCC.APB2ENR.SetBits(stm32.RCC_APB2ENR_SYSCFGEN)

	machine.PD8.ConfigureAltFunc(machine.PinConfig{Mode: machine.PinModeUARTTX}, 7)
	machine.PD9.ConfigureAltFunc(machine.PinConfig{Mode: machine.PinModeUARTRX}, 7)
	stm32.USART3.BRR.Set(0x683)
	stm32.USART3.CR1.Set(1<<13 | 1<<5 | 1<<3 | 1<<2) // UE | RXNEIE | TE | RE

	machine.PC13.Configure(machine.PinConfig{Mode: machine.PinInput})
	stm32.SYSCFG.EXTICR4.ReplaceBits(0x2, 0xF, 4) // EXTI13 <- port C
	stm32.EXTI.IMR.SetBits(1 << 13)
	stm32.EXTI.RTSR.SetBits(1 << 13)

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	serial := &usart3{}
	return &tinyGoHAL{
		logger: &uartLogger{serial: serial},
		led:    &pinLED{pin: ledPin},
		serial: serial,
		nvic:   &deviceNVIC{},
	}
}

func (h *tinyGoHAL) Logger() Logger                  { return h.logger }
func (h *tinyGoHAL) LED() LED                        { return h.led }
func (h *tinyGoHAL) Serial() Serial                  { return h.serial }
func (h *tinyGoHAL) Interrupts() InterruptController { return h.nvic }
func (h *tinyGoHAL) Vectors() VectorTable            { return h.nvic }
func (h *tinyGoHAL) Display() Display                { return nil }

// usart3 polls the USART3 registers directly.
type usart3 struct{}

func (u *usart3) put(c byte) {
	for !stm32.USART3.SR.HasBits(stm32.USART_SR_TXE) {
	}
	stm32.USART3.DR.Set(uint32(c))
}

func (u *usart3) WriteByte(c byte) error {
	if c == '\n' {
		u.put('\r')
	}
	u.put(c)
	if stm32.USART3.SR.HasBits(stm32.USART_SR_ORE) {
		_ = stm32.USART3.DR.Get()
		return ErrOverrun
	}
	return nil
}

func (u *usart3) ReadByte() (byte, error) {
	if !stm32.USART3.SR.HasBits(stm32.USART_SR_RXNE) {
		return 0, ErrWouldBlock
	}
	c := byte(stm32.USART3.DR.Get())
	if c == '\r' {
		c = '\n'
	}
	return c, nil
}
