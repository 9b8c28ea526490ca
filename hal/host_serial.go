//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"sync"
)

const rxSlots = 64

// hostSerial models USART3: writes go straight to w, received bytes sit in a
// small FIFO standing in for the data register and raise the RX interrupt.
type hostSerial struct {
	mu sync.Mutex
	w  io.Writer

	rxHead uint8
	rxTail uint8
	rx     [rxSlots]byte
	lost   uint64

	nvic *SimNVIC
	line IRQ
}

func newHostSerial(w io.Writer, nvic *SimNVIC, line IRQ) *hostSerial {
	return &hostSerial{w: w, nvic: nvic, line: line}
}

// WriteByte sends c, expanding '\n' to "\r\n" like the USART driver.
func (s *hostSerial) WriteByte(c byte) error {
	if s.w == nil {
		return ErrNotImplemented
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf [2]byte
	out := buf[:0]
	if c == '\n' {
		out = append(out, '\r')
	}
	out = append(out, c)
	if _, err := s.w.Write(out); err != nil {
		return fmt.Errorf("%w: %v", ErrOverrun, err)
	}
	return nil
}

// ReadByte returns the oldest received byte, mapping '\r' to '\n'.
func (s *hostSerial) ReadByte() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rxTail == s.rxHead {
		return 0, ErrWouldBlock
	}
	c := s.rx[s.rxTail%rxSlots]
	s.rxTail++
	if c == '\r' {
		c = '\n'
	}
	return c, nil
}

// receive is the line side of the UART. Bytes arriving into a full FIFO are
// dropped, as on a real overrun.
func (s *hostSerial) receive(p []byte) {
	s.mu.Lock()
	for _, c := range p {
		if s.rxHead-s.rxTail >= rxSlots {
			s.lost++
			continue
		}
		s.rx[s.rxHead%rxSlots] = c
		s.rxHead++
	}
	s.mu.Unlock()
	if s.nvic != nil {
		s.nvic.Pend(s.line)
	}
}
