package kernel

import (
	"context"
	"encoding/binary"
	"fmt"
)

// sliceMemory is a flat RAM window starting at base.
type sliceMemory struct {
	base uint32
	buf  []byte
}

func newSliceMemory(base, size uint32) *sliceMemory {
	return &sliceMemory{base: base, buf: make([]byte, size)}
}

func (m *sliceMemory) span(addr, n uint32) ([]byte, error) {
	if addr < m.base || addr-m.base > uint32(len(m.buf)) || n > uint32(len(m.buf))-(addr-m.base) {
		return nil, fmt.Errorf("%#08x+%d: %w", addr, n, ErrFault)
	}
	off := addr - m.base
	return m.buf[off : off+n], nil
}

func (m *sliceMemory) ReadWord(addr uint32) (uint32, error) {
	b, err := m.span(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (m *sliceMemory) WriteWord(addr, v uint32) error {
	b, err := m.span(addr, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, v)
	return nil
}

func (m *sliceMemory) ReadBytes(dst []byte, addr uint32) error {
	b, err := m.span(addr, uint32(len(dst)))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

func (m *sliceMemory) WriteBytes(addr uint32, src []byte) error {
	b, err := m.span(addr, uint32(len(src)))
	if err != nil {
		return err
	}
	copy(b, src)
	return nil
}

// recordingSwitcher returns a scripted trap per switch and remembers who ran.
type recordingSwitcher struct {
	ran   []PID
	traps []Trap
	idle  int
}

func (s *recordingSwitcher) SwitchTo(p *Process) Trap {
	s.ran = append(s.ran, p.PID)
	if len(s.traps) == 0 {
		return Trap{Kind: TrapNone}
	}
	t := s.traps[0]
	s.traps = s.traps[1:]
	return t
}

func (s *recordingSwitcher) WaitForInterrupt(ctx context.Context) { s.idle++ }

const (
	testRAMBase = 0x20000000
	testRAMSize = 0x1000
	testStack   = 0x100
)

// spawnN fills a table with n processes, each with its own stack.
func spawnN(t interface{ Fatalf(string, ...any) }, tab *Table, mem Memory, n int) []PID {
	pids := make([]PID, 0, n)
	for i := 0; i < n; i++ {
		stack := Region{Base: testRAMBase + uint32(i)*testStack, Size: testStack}
		pid, err := tab.Spawn(mem, fmt.Sprintf("p%d", i+1), 0x08000001+uint32(i)*0x100, stack)
		if err != nil {
			t.Fatalf("Spawn(%d) error = %v", i, err)
		}
		pids = append(pids, pid)
	}
	return pids
}
