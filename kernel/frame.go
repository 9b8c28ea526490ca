package kernel

import (
	"encoding/binary"
	"fmt"
)

const (
	// FrameWords is the number of words hardware pushes on exception entry.
	FrameWords = 8
	// FrameBytes is the size of the hardware-saved block.
	FrameBytes = FrameWords * 4

	// ExcReturnThreadPSP returns to thread mode on the process stack.
	ExcReturnThreadPSP uint32 = 0xFFFFFFFD
	// ExcReturnThreadMSP returns to thread mode on the main stack.
	ExcReturnThreadMSP uint32 = 0xFFFFFFF9

	// XPSRThumb is an xPSR with only the Thumb bit set.
	XPSRThumb uint32 = 0x01000000

	// exitLR is loaded into a new process's link register. Returning from the
	// entry point faults.
	exitLR uint32 = 0xFFFFFFFF
)

// Frame is the block pushed by hardware on exception entry, lowest address first.
type Frame struct {
	R0   uint32
	R1   uint32
	R2   uint32
	R3   uint32
	R12  uint32
	LR   uint32
	PC   uint32
	XPSR uint32
}

// Regs holds r4-r11, the registers exception entry does not save.
type Regs [8]uint32

func (f *Frame) words() [FrameWords]uint32 {
	return [FrameWords]uint32{f.R0, f.R1, f.R2, f.R3, f.R12, f.LR, f.PC, f.XPSR}
}

func frameFromWords(w [FrameWords]uint32) Frame {
	return Frame{R0: w[0], R1: w[1], R2: w[2], R3: w[3], R12: w[4], LR: w[5], PC: w[6], XPSR: w[7]}
}

// ReadFrame loads the hardware-saved block at sp.
func ReadFrame(mem Memory, sp uint32) (Frame, error) {
	var w [FrameWords]uint32
	for i := range w {
		v, err := mem.ReadWord(sp + uint32(i)*4)
		if err != nil {
			return Frame{}, fmt.Errorf("read frame at %#08x: %w", sp, err)
		}
		w[i] = v
	}
	return frameFromWords(w), nil
}

// WriteFrame stores f as a hardware-saved block at sp.
func WriteFrame(mem Memory, sp uint32, f Frame) error {
	for i, v := range f.words() {
		if err := mem.WriteWord(sp+uint32(i)*4, v); err != nil {
			return fmt.Errorf("write frame at %#08x: %w", sp, err)
		}
	}
	return nil
}

// MarshalBinary encodes the frame in its in-memory layout.
func (f Frame) MarshalBinary() ([]byte, error) {
	b := make([]byte, FrameBytes)
	for i, v := range f.words() {
		binary.LittleEndian.PutUint32(b[i*4:], v)
	}
	return b, nil
}

// UnmarshalBinary decodes a frame from its in-memory layout.
func (f *Frame) UnmarshalBinary(b []byte) error {
	if len(b) < FrameBytes {
		return fmt.Errorf("frame: need %d bytes, got %d", FrameBytes, len(b))
	}
	var w [FrameWords]uint32
	for i := range w {
		w[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	*f = frameFromWords(w)
	return nil
}
