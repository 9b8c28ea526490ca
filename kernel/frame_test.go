package kernel

import (
	"errors"
	"testing"
)

func TestFrameRoundTripMemory(t *testing.T) {
	mem := newSliceMemory(testRAMBase, testRAMSize)
	want := Frame{
		R0: 1, R1: 0x20000040, R2: 9, R3: 0xdeadbeef,
		R12: 12, LR: ExcReturnThreadPSP, PC: 0x08000102, XPSR: XPSRThumb,
	}
	sp := uint32(testRAMBase + 0x80)

	if err := WriteFrame(mem, sp, want); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}
	got, err := ReadFrame(mem, sp)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if got != want {
		t.Fatalf("ReadFrame() = %+v, want %+v", got, want)
	}

	// r0 is the lowest word.
	if w, _ := mem.ReadWord(sp); w != want.R0 {
		t.Fatalf("word 0 = %#x, want r0 %#x", w, want.R0)
	}
	if w, _ := mem.ReadWord(sp + 28); w != want.XPSR {
		t.Fatalf("word 7 = %#x, want xpsr %#x", w, want.XPSR)
	}
}

func TestFrameRoundTripBinary(t *testing.T) {
	want := Frame{R0: 1, R1: 2, R2: 3, R3: 4, R12: 5, LR: 6, PC: 7, XPSR: 8}
	b, err := want.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}
	if len(b) != FrameBytes {
		t.Fatalf("len(MarshalBinary()) = %d, want %d", len(b), FrameBytes)
	}
	if b[0] != 1 || b[4] != 2 || b[28] != 8 {
		t.Fatalf("MarshalBinary() = % x, want little-endian r0 first", b)
	}

	var got Frame
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary() error = %v", err)
	}
	if got != want {
		t.Fatalf("UnmarshalBinary() = %+v, want %+v", got, want)
	}
	if err := got.UnmarshalBinary(b[:FrameBytes-1]); err == nil {
		t.Fatalf("UnmarshalBinary(short) error = nil, want error")
	}
}

func TestReadFrameFault(t *testing.T) {
	mem := newSliceMemory(testRAMBase, testRAMSize)
	if _, err := ReadFrame(mem, testRAMBase+testRAMSize-16); !errors.Is(err, ErrFault) {
		t.Fatalf("ReadFrame() error = %v, want %v", err, ErrFault)
	}
}

func TestDecodeSyscall(t *testing.T) {
	sc := DecodeSyscall(Frame{R0: uint32(SysWrite), R1: 0x20000010, R2: 5, R3: 7, PC: 0x1234})
	if sc.ID != SysWrite {
		t.Fatalf("DecodeSyscall().ID = %v, want %v", sc.ID, SysWrite)
	}
	if sc.Args != [3]uint32{0x20000010, 5, 7} {
		t.Fatalf("DecodeSyscall().Args = %v, want [0x20000010 5 7]", sc.Args)
	}
	if lookupSyscall(SyscallID(0)) != nil || lookupSyscall(SyscallID(99)) != nil {
		t.Fatalf("lookupSyscall() found a handler for an unknown id")
	}
}
