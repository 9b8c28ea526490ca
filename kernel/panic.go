package kernel

import (
	"sync"
	"sync/atomic"
)

// PanicInfo describes a fatal kernel condition.
type PanicInfo struct {
	Value any
	Stack []byte
}

var (
	panicActive atomic.Bool
	panicOnce   sync.Once

	panicHandler atomic.Value // func(PanicInfo)
)

// InPanicMode reports whether Fatal has been called.
func InPanicMode() bool {
	return panicActive.Load()
}

// SetPanicHandler installs the board's fatal-error handler.
//
// The handler is invoked at most once, just before Fatal panics.
func SetPanicHandler(fn func(PanicInfo)) {
	panicHandler.Store(fn)
}

// Fatal stops the system. Boot-time configuration errors (a full interrupt
// registry, waiting on an unregistered line) end up here.
func Fatal(v any) {
	panicOnce.Do(func() {
		panicActive.Store(true)
		info := PanicInfo{Value: v, Stack: captureStack()}
		if h := panicHandler.Load(); h != nil {
			if fn, ok := h.(func(PanicInfo)); ok && fn != nil {
				fn(info)
			}
		}
	})
	panic(v)
}
