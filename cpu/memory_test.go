package cpu

import (
	"errors"
	"testing"

	"kestrel/kernel"
)

func TestMemoryWordsLittleEndian(t *testing.T) {
	var m Memory
	if err := m.Map(SRAMBase, 64, false); err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if err := m.WriteWord(SRAMBase+4, 0x11223344); err != nil {
		t.Fatalf("WriteWord() error = %v", err)
	}
	var b [4]byte
	if err := m.ReadBytes(b[:], SRAMBase+4); err != nil {
		t.Fatalf("ReadBytes() error = %v", err)
	}
	if b != [4]byte{0x44, 0x33, 0x22, 0x11} {
		t.Fatalf("ReadBytes() = % x, want 44 33 22 11", b)
	}
	if v, _ := m.ReadWord(SRAMBase + 4); v != 0x11223344 {
		t.Fatalf("ReadWord() = %#x, want 0x11223344", v)
	}
}

func TestMemoryFaults(t *testing.T) {
	var m Memory
	_ = m.Map(FlashBase, 64, true)
	_ = m.Map(SRAMBase, 64, false)

	tests := []struct {
		name string
		err  error
	}{
		{"unmapped read", func() error { _, err := m.ReadWord(0x40000000); return err }()},
		{"unaligned", func() error { _, err := m.ReadWord(SRAMBase + 2); return err }()},
		{"past end", m.ReadBytes(make([]byte, 8), SRAMBase+60)},
		{"read-only", m.WriteWord(FlashBase, 1)},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, kernel.ErrFault) {
			t.Fatalf("%s: error = %v, want %v", tt.name, tt.err, kernel.ErrFault)
		}
	}

	if err := m.load(FlashBase, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if v, _ := m.ReadWord(FlashBase); v != 0x04030201 {
		t.Fatalf("ReadWord() after load = %#x, want 0x04030201", v)
	}
}

func TestMemoryMapOverlap(t *testing.T) {
	var m Memory
	if err := m.Map(SRAMBase, 0x100, false); err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if err := m.Map(SRAMBase+0x80, 0x100, false); err == nil {
		t.Fatalf("Map() overlapping error = nil, want error")
	}
	if err := m.Map(SRAMBase+0x100, 0x100, false); err != nil {
		t.Fatalf("Map() adjacent error = %v", err)
	}
}
