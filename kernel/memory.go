package kernel

import "errors"

// ErrFault reports an access outside mapped memory.
var ErrFault = errors.New("memory fault")

// Memory is the 32-bit address space shared by the kernel and its processes.
//
// Words are little-endian, as on Cortex-M.
type Memory interface {
	ReadWord(addr uint32) (uint32, error)
	WriteWord(addr, v uint32) error
	ReadBytes(dst []byte, addr uint32) error
	WriteBytes(addr uint32, src []byte) error
}

// Region is the half-open address range [Base, Base+Size).
type Region struct {
	Base uint32
	Size uint32
}

// End returns the first address past the region.
func (r Region) End() uint32 { return r.Base + r.Size }

// Contains reports whether [addr, addr+n) lies inside r.
func (r Region) Contains(addr, n uint32) bool {
	if addr < r.Base {
		return false
	}
	off := addr - r.Base
	return off <= r.Size && n <= r.Size-off
}
