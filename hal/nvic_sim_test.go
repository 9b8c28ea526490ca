package hal

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSimNVICActiveNeedsEnableAndPending(t *testing.T) {
	n := NewSimNVIC()

	n.Pend(IRQUSART3)
	if _, ok := n.Active(); ok {
		t.Fatalf("Active() ok = true for a disabled line, want false")
	}

	n.Enable(IRQUSART3)
	id, ok := n.Active()
	if !ok || id != IRQUSART3 {
		t.Fatalf("Active() = %v, %v, want %v, true", id, ok, IRQUSART3)
	}

	n.Enable(IRQEXTI15_10)
	n.Pend(IRQEXTI15_10)
	if id, _ := n.Active(); id != IRQUSART3 {
		t.Fatalf("Active() = %v, want lowest line %v", id, IRQUSART3)
	}

	n.ClearPending(IRQUSART3)
	if id, _ := n.Active(); id != IRQEXTI15_10 {
		t.Fatalf("Active() = %v, want %v", id, IRQEXTI15_10)
	}
}

func TestSimNVICOutOfRange(t *testing.T) {
	n := NewSimNVIC()
	n.Enable(NumIRQs)
	n.Pend(NumIRQs)
	if n.IsEnabled(NumIRQs) || n.IsPending(NumIRQs) {
		t.Fatalf("out-of-range line reported enabled or pending")
	}
	if err := n.Install(NumIRQs, func() {}); !errors.Is(err, ErrBadIRQ) {
		t.Fatalf("Install() error = %v, want %v", err, ErrBadIRQ)
	}
}

func TestSimNVICWait(t *testing.T) {
	n := NewSimNVIC()
	n.Enable(IRQEXTI15_10)

	done := make(chan IRQ, 1)
	go func() {
		id, _ := n.Wait(context.Background())
		done <- id
	}()

	n.Pend(IRQEXTI15_10)
	select {
	case id := <-done:
		if id != IRQEXTI15_10 {
			t.Fatalf("Wait() = %v, want %v", id, IRQEXTI15_10)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Wait() did not return after Pend")
	}
}

func TestSimNVICWaitCancel(t *testing.T) {
	n := NewSimNVIC()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, ok := n.Wait(ctx); ok {
		t.Fatalf("Wait() ok = true with nothing pending, want false")
	}
}

func TestIRQFromNumber(t *testing.T) {
	if id, ok := IRQFromNumber(39); !ok || id != IRQUSART3 {
		t.Fatalf("IRQFromNumber(39) = %v, %v, want %v, true", id, ok, IRQUSART3)
	}
	if _, ok := IRQFromNumber(uint32(NumIRQs)); ok {
		t.Fatalf("IRQFromNumber(%d) ok = true, want false", NumIRQs)
	}
	if got := IRQEXTI15_10.String(); got != "EXTI15_10" {
		t.Fatalf("String() = %q, want %q", got, "EXTI15_10")
	}
}
