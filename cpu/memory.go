package cpu

import (
	"encoding/binary"
	"fmt"

	"kestrel/kernel"
)

type bank struct {
	region   kernel.Region
	readOnly bool
	buf      []byte
}

// Memory is a little-endian address space made of fixed banks.
type Memory struct {
	banks []*bank
}

// Map adds a zeroed bank at [base, base+size).
func (m *Memory) Map(base, size uint32, readOnly bool) error {
	r := kernel.Region{Base: base, Size: size}
	if r.End() < base {
		return fmt.Errorf("map %#08x+%d: wraps the address space", base, size)
	}
	for _, b := range m.banks {
		if base < b.region.End() && b.region.Base < r.End() {
			return fmt.Errorf("map %#08x+%d: overlaps bank at %#08x", base, size, b.region.Base)
		}
	}
	m.banks = append(m.banks, &bank{region: r, readOnly: readOnly, buf: make([]byte, size)})
	return nil
}

func (m *Memory) slice(addr, n uint32, write bool) ([]byte, error) {
	for _, b := range m.banks {
		if !b.region.Contains(addr, n) {
			continue
		}
		if write && b.readOnly {
			return nil, fmt.Errorf("%w: write to read-only %#08x", kernel.ErrFault, addr)
		}
		off := addr - b.region.Base
		return b.buf[off : off+n], nil
	}
	return nil, fmt.Errorf("%w: %#08x+%d", kernel.ErrFault, addr, n)
}

func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	if addr%4 != 0 {
		return 0, fmt.Errorf("%w: unaligned word at %#08x", kernel.ErrFault, addr)
	}
	b, err := m.slice(addr, 4, false)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (m *Memory) WriteWord(addr, v uint32) error {
	if addr%4 != 0 {
		return fmt.Errorf("%w: unaligned word at %#08x", kernel.ErrFault, addr)
	}
	b, err := m.slice(addr, 4, true)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, v)
	return nil
}

func (m *Memory) ReadBytes(dst []byte, addr uint32) error {
	b, err := m.slice(addr, uint32(len(dst)), false)
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

func (m *Memory) WriteBytes(addr uint32, src []byte) error {
	b, err := m.slice(addr, uint32(len(src)), true)
	if err != nil {
		return err
	}
	copy(b, src)
	return nil
}

// load writes src even into a read-only bank (flash programming).
func (m *Memory) load(addr uint32, src []byte) error {
	for _, b := range m.banks {
		if b.region.Contains(addr, uint32(len(src))) {
			copy(b.buf[addr-b.region.Base:], src)
			return nil
		}
	}
	return fmt.Errorf("%w: load %#08x+%d", kernel.ErrFault, addr, len(src))
}
