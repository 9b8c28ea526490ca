package hal

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

const nvicWords = (NumIRQs + 31) / 32

// SimNVIC is a software interrupt controller with its own vector table.
//
// Enable and pending bits are atomic so device models may pend lines from any
// goroutine, the same way hardware raises them asynchronously.
type SimNVIC struct {
	enabled [nvicWords]atomic.Uint32
	pending [nvicWords]atomic.Uint32

	mu      sync.Mutex
	vectors [NumIRQs]func()

	wake chan struct{}
}

// NewSimNVIC returns a controller with every line disabled.
func NewSimNVIC() *SimNVIC {
	return &SimNVIC{wake: make(chan struct{}, 1)}
}

func bit(id IRQ) (word int, mask uint32) {
	return int(id / 32), 1 << (id % 32)
}

func setBits(w *atomic.Uint32, mask uint32) {
	for {
		old := w.Load()
		if w.CompareAndSwap(old, old|mask) {
			return
		}
	}
}

func clearBits(w *atomic.Uint32, mask uint32) {
	for {
		old := w.Load()
		if w.CompareAndSwap(old, old&^mask) {
			return
		}
	}
}

func (n *SimNVIC) Enable(id IRQ) {
	if id >= NumIRQs {
		return
	}
	i, m := bit(id)
	setBits(&n.enabled[i], m)
	n.signal()
}

func (n *SimNVIC) Disable(id IRQ) {
	if id >= NumIRQs {
		return
	}
	i, m := bit(id)
	clearBits(&n.enabled[i], m)
}

func (n *SimNVIC) IsEnabled(id IRQ) bool {
	if id >= NumIRQs {
		return false
	}
	i, m := bit(id)
	return n.enabled[i].Load()&m != 0
}

func (n *SimNVIC) IsPending(id IRQ) bool {
	if id >= NumIRQs {
		return false
	}
	i, m := bit(id)
	return n.pending[i].Load()&m != 0
}

func (n *SimNVIC) ClearPending(id IRQ) {
	if id >= NumIRQs {
		return
	}
	i, m := bit(id)
	clearBits(&n.pending[i], m)
}

// Pend raises id, as a peripheral would.
func (n *SimNVIC) Pend(id IRQ) {
	if id >= NumIRQs {
		return
	}
	i, m := bit(id)
	setBits(&n.pending[i], m)
	n.signal()
}

// Install sets the vector for id.
func (n *SimNVIC) Install(id IRQ, handler func()) error {
	if id >= NumIRQs {
		return fmt.Errorf("install vector %d: %w", uint32(id), ErrBadIRQ)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.vectors[id] = handler
	return nil
}

// Vector returns the installed entry point for id, or nil.
func (n *SimNVIC) Vector(id IRQ) func() {
	if id >= NumIRQs {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.vectors[id]
}

// Active returns the lowest-numbered line that is both enabled and pending.
func (n *SimNVIC) Active() (IRQ, bool) {
	for i := 0; i < nvicWords; i++ {
		v := n.pending[i].Load() & n.enabled[i].Load()
		if v == 0 {
			continue
		}
		for b := 0; b < 32; b++ {
			if v&(1<<b) != 0 {
				return IRQ(i*32 + b), true
			}
		}
	}
	return 0, false
}

// Wait blocks until a line is active or ctx is done.
func (n *SimNVIC) Wait(ctx context.Context) (IRQ, bool) {
	for {
		if id, ok := n.Active(); ok {
			return id, true
		}
		select {
		case <-ctx.Done():
			return 0, false
		case <-n.wake:
		}
	}
}

func (n *SimNVIC) signal() {
	select {
	case n.wake <- struct{}{}:
	default:
	}
}
