package kernel

import (
	"errors"
	"testing"

	"kestrel/hal"
)

func TestInterruptManagerRegisterEnables(t *testing.T) {
	nvic := hal.NewSimNVIC()
	m := NewInterruptManager(nvic, nvic, nil)

	if err := m.Register(hal.IRQUSART3, nil); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !nvic.IsEnabled(hal.IRQUSART3) {
		t.Fatalf("IsEnabled(%v) = false, want true", hal.IRQUSART3)
	}
	if nvic.Vector(hal.IRQUSART3) == nil {
		t.Fatalf("Vector(%v) = nil, want trampoline", hal.IRQUSART3)
	}
	if err := m.Register(hal.IRQUSART3, nil); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("Register() twice error = %v, want %v", err, ErrAlreadyRegistered)
	}
}

func TestInterruptManagerCapacity(t *testing.T) {
	nvic := hal.NewSimNVIC()
	m := NewInterruptManager(nvic, nvic, nil)
	for i := 0; i < MaxIRQHandlers; i++ {
		if err := m.Register(hal.IRQ(i), nil); err != nil {
			t.Fatalf("Register(%d) error = %v", i, err)
		}
	}

	err := m.Register(hal.IRQ(MaxIRQHandlers), nil)
	if !errors.Is(err, ErrTooManyHandlers) {
		t.Fatalf("Register() over capacity error = %v, want %v", err, ErrTooManyHandlers)
	}
	if got := m.Len(); got != MaxIRQHandlers {
		t.Fatalf("Len() = %d, want %d", got, MaxIRQHandlers)
	}
	if nvic.IsEnabled(hal.IRQ(MaxIRQHandlers)) {
		t.Fatalf("rejected line was enabled")
	}
	for i := 0; i < MaxIRQHandlers; i++ {
		if !m.IsRegistered(hal.IRQ(i)) {
			t.Fatalf("IsRegistered(%d) = false after failed Register, want true", i)
		}
	}
}

func TestInterruptManagerPushWaitUnregistered(t *testing.T) {
	nvic := hal.NewSimNVIC()
	m := NewInterruptManager(nvic, nvic, nil)

	if err := m.PushWait(hal.IRQUSART3, 0); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("PushWait() error = %v, want %v", err, ErrNotRegistered)
	}
}

func TestInterruptManagerTrampolineMasksLine(t *testing.T) {
	nvic := hal.NewSimNVIC()
	m := NewInterruptManager(nvic, nvic, nil)
	if err := m.Register(hal.IRQEXTI15_10, nil); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	nvic.Pend(hal.IRQEXTI15_10)
	nvic.Vector(hal.IRQEXTI15_10)()

	if nvic.IsEnabled(hal.IRQEXTI15_10) {
		t.Fatalf("line enabled after trampoline, want disabled")
	}
	if !nvic.IsPending(hal.IRQEXTI15_10) {
		t.Fatalf("line not pending after trampoline, want pending")
	}
}

func TestInterruptManagerCheckPendingWakesOnlyFired(t *testing.T) {
	nvic := hal.NewSimNVIC()
	m := NewInterruptManager(nvic, nvic, nil)

	var usartCalls, buttonCalls int
	if err := m.Register(hal.IRQUSART3, func() { usartCalls++ }); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := m.Register(hal.IRQEXTI15_10, func() { buttonCalls++ }); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	for _, pid := range []PID{1, 3} {
		if err := m.PushWait(hal.IRQUSART3, pid); err != nil {
			t.Fatalf("PushWait() error = %v", err)
		}
	}
	if err := m.PushWait(hal.IRQEXTI15_10, 2); err != nil {
		t.Fatalf("PushWait() error = %v", err)
	}

	nvic.Pend(hal.IRQUSART3)
	nvic.Vector(hal.IRQUSART3)()

	released := m.CheckPending()
	if got := released.Len(); got != 2 {
		t.Fatalf("CheckPending() released %d, want 2", got)
	}
	for _, want := range []PID{1, 3} {
		got, _ := released.Pop()
		if got != want {
			t.Fatalf("released pid = %d, want %d", got, want)
		}
	}
	if usartCalls != 1 || buttonCalls != 0 {
		t.Fatalf("handler calls = %d/%d, want 1/0", usartCalls, buttonCalls)
	}
	if nvic.IsPending(hal.IRQUSART3) || !nvic.IsEnabled(hal.IRQUSART3) {
		t.Fatalf("USART3 pending=%v enabled=%v after CheckPending, want false/true",
			nvic.IsPending(hal.IRQUSART3), nvic.IsEnabled(hal.IRQUSART3))
	}

	again := m.CheckPending()
	if !again.IsEmpty() {
		t.Fatalf("second CheckPending() released %d, want 0", again.Len())
	}

	nvic.Pend(hal.IRQEXTI15_10)
	released = m.CheckPending()
	if got, ok := released.Pop(); !ok || got != 2 {
		t.Fatalf("released pid = %d, %v, want 2, true", got, ok)
	}
}
