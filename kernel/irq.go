package kernel

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"kestrel/hal"
)

// MaxIRQHandlers bounds the interrupt registry. Registration happens at boot,
// so the bound is a build-time constant rather than something to grow.
const MaxIRQHandlers = 10

var (
	ErrTooManyHandlers   = errors.New("interrupt registry full")
	ErrAlreadyRegistered = errors.New("interrupt already registered")
	ErrNotRegistered     = errors.New("interrupt not registered")
)

type irqHandler struct {
	id      hal.IRQ
	fn      func()
	waiting ProcessList
}

// InterruptManager maps interrupt lines to handlers and to the processes
// blocked on them.
//
// The vector installed for every line only disables it at the controller.
// Handlers and list moves run later from CheckPending, at thread level.
type InterruptManager struct {
	ctl     hal.InterruptController
	vectors hal.VectorTable
	log     hclog.Logger

	handlers [MaxIRQHandlers]irqHandler
	count    int
}

// NewInterruptManager returns an empty registry.
func NewInterruptManager(ctl hal.InterruptController, vectors hal.VectorTable, log hclog.Logger) *InterruptManager {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &InterruptManager{ctl: ctl, vectors: vectors, log: log}
}

// Register installs fn for id and enables the line.
//
// A failed registration leaves the existing ones untouched.
func (m *InterruptManager) Register(id hal.IRQ, fn func()) error {
	if m.count >= MaxIRQHandlers {
		return fmt.Errorf("register %s: %w", id, ErrTooManyHandlers)
	}
	if m.find(id) != nil {
		return fmt.Errorf("register %s: %w", id, ErrAlreadyRegistered)
	}
	if err := m.vectors.Install(id, m.trampoline(id)); err != nil {
		return fmt.Errorf("register %s: %w", id, err)
	}

	m.handlers[m.count] = irqHandler{id: id, fn: fn}
	m.count++
	m.ctl.Enable(id)
	m.log.Debug("registered interrupt", "irq", id, "slot", m.count-1)
	return nil
}

// trampoline records that id fired by masking it. The pending bit stays set
// for CheckPending to find.
func (m *InterruptManager) trampoline(id hal.IRQ) func() {
	ctl := m.ctl
	return func() {
		ctl.Disable(id)
	}
}

// PushWait blocks pid until id fires.
func (m *InterruptManager) PushWait(id hal.IRQ, pid PID) error {
	h := m.find(id)
	if h == nil {
		return fmt.Errorf("wait on %s: %w", id, ErrNotRegistered)
	}
	if !h.waiting.Push(pid) {
		panic("kernel: interrupt waiting list full")
	}
	return nil
}

// Contains reports whether pid is blocked on any interrupt.
func (m *InterruptManager) Contains(pid PID) bool {
	for i := 0; i < m.count; i++ {
		if m.handlers[i].waiting.Contains(pid) {
			return true
		}
	}
	return false
}

// IsRegistered reports whether id has a handler.
func (m *InterruptManager) IsRegistered(id hal.IRQ) bool {
	return m.find(id) != nil
}

// Len returns the number of registrations.
func (m *InterruptManager) Len() int { return m.count }

// CheckPending services every pending registered interrupt and returns the
// processes released by them, in registration order.
func (m *InterruptManager) CheckPending() ProcessList {
	var released ProcessList
	for i := 0; i < m.count; i++ {
		h := &m.handlers[i]
		if !m.ctl.IsPending(h.id) {
			continue
		}
		if h.fn != nil {
			h.fn()
		}
		if n := h.waiting.Len(); n > 0 {
			m.log.Trace("releasing waiters", "irq", h.id, "count", n)
		}
		released.Join(&h.waiting)
		m.ctl.ClearPending(h.id)
		m.ctl.Enable(h.id)
	}
	return released
}

func (m *InterruptManager) find(id hal.IRQ) *irqHandler {
	for i := 0; i < m.count; i++ {
		if m.handlers[i].id == id {
			return &m.handlers[i]
		}
	}
	return nil
}
