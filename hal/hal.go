package hal

import (
	"errors"
	"fmt"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

var (
	ErrNotImplemented = errors.New("not implemented")

	// ErrOverrun is returned by Serial.WriteByte when the transmitter lost data.
	ErrOverrun = errors.New("serial: overrun")
	// ErrWouldBlock is returned by Serial.ReadByte when nothing was received.
	ErrWouldBlock = errors.New("serial: would block")

	ErrBadIRQ = errors.New("bad interrupt number")
)

// Serial is a byte-at-a-time UART with no buffering of its own.
//
// WriteByte blocks until the transmit register is free. ReadByte never blocks.
type Serial interface {
	WriteByte(c byte) error
	ReadByte() (byte, error)
}

// IRQ is a device interrupt number in the vendor's numbering (STM32F4).
type IRQ uint32

const (
	IRQUSART3    IRQ = 39
	IRQEXTI15_10 IRQ = 40
)

// NumIRQs is the number of device interrupt vectors.
const NumIRQs = 82

func (id IRQ) String() string {
	switch id {
	case IRQUSART3:
		return "USART3"
	case IRQEXTI15_10:
		return "EXTI15_10"
	default:
		return fmt.Sprintf("IRQ%d", uint32(id))
	}
}

// IRQFromNumber validates a raw interrupt number.
func IRQFromNumber(n uint32) (IRQ, bool) {
	if n >= NumIRQs {
		return 0, false
	}
	return IRQ(n), true
}

// InterruptController is the part of the NVIC the kernel uses.
type InterruptController interface {
	Enable(id IRQ)
	Disable(id IRQ)
	IsPending(id IRQ) bool
	ClearPending(id IRQ)
}

// VectorTable holds device interrupt entry points. Everything is installed
// before the kernel loop starts.
type VectorTable interface {
	Install(id IRQ, handler func()) error
}

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// HAL provides the only contact point between the kernel and the board.
type HAL interface {
	Logger() Logger
	LED() LED
	Serial() Serial
	Interrupts() InterruptController
	Vectors() VectorTable
	Display() Display
}
