package kernel

import (
	"errors"
	"testing"
)

func TestFatalRunsHandlerOnce(t *testing.T) {
	var calls int
	var got PanicInfo
	SetPanicHandler(func(info PanicInfo) {
		calls++
		got = info
	})

	boom := errors.New("boom")
	for i := 0; i < 2; i++ {
		func() {
			defer func() {
				if r := recover(); r != boom {
					t.Fatalf("Fatal() panicked with %v, want %v", r, boom)
				}
			}()
			Fatal(boom)
		}()
	}

	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	if got.Value != boom {
		t.Fatalf("PanicInfo.Value = %v, want %v", got.Value, boom)
	}
	if len(got.Stack) == 0 {
		t.Fatalf("PanicInfo.Stack is empty")
	}
	if !InPanicMode() {
		t.Fatalf("InPanicMode() = false, want true")
	}
}
