//go:build !tinygo

package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"kestrel/hal"
	"kestrel/internal/buildinfo"
	"kestrel/kernel"
)

type testLogger struct{ lines []string }

func (l *testLogger) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *testLogger) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

type testLED struct{ on bool }

func (l *testLED) High() { l.on = true }
func (l *testLED) Low()  { l.on = false }

type testSerial struct {
	out  bytes.Buffer
	rx   []byte
	full bool
}

func (s *testSerial) WriteByte(c byte) error {
	if s.full {
		return hal.ErrOverrun
	}
	return s.out.WriteByte(c)
}

func (s *testSerial) ReadByte() (byte, error) {
	if len(s.rx) == 0 {
		return 0, hal.ErrWouldBlock
	}
	c := s.rx[0]
	s.rx = s.rx[1:]
	return c, nil
}

type testHAL struct {
	log    *testLogger
	led    *testLED
	serial *testSerial
	nvic   *hal.SimNVIC
}

func newTestHAL() *testHAL {
	return &testHAL{
		log:    &testLogger{},
		led:    &testLED{},
		serial: &testSerial{},
		nvic:   hal.NewSimNVIC(),
	}
}

func (h *testHAL) Logger() hal.Logger                  { return h.log }
func (h *testHAL) LED() hal.LED                        { return h.led }
func (h *testHAL) Serial() hal.Serial                  { return h.serial }
func (h *testHAL) Interrupts() hal.InterruptController { return h.nvic }
func (h *testHAL) Vectors() hal.VectorTable            { return h.nvic }
func (h *testHAL) Display() hal.Display                { return nil }

func TestBootRunsHello(t *testing.T) {
	h := newTestHAL()
	run := New(h, Config{MaxSteps: 2, StrictSyscalls: true})

	if err := run(context.Background()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	want := buildinfo.Banner() + "\napp_main\n"
	if got := h.serial.out.String(); got != want {
		t.Fatalf("serial output = %q, want %q", got, want)
	}

	var stopped bool
	for _, line := range h.log.lines {
		if strings.Contains(line, "kernel loop stopped") {
			stopped = true
		}
	}
	if !stopped {
		t.Fatalf("log lines = %q, want a loop summary", h.log.lines)
	}
}

func TestBootInterrupts(t *testing.T) {
	h := newTestHAL()
	run := New(h, Config{MaxSteps: 2})
	ctx := context.Background()
	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	h.serial.out.Reset()

	// A received byte is echoed by the handler, then rxwatch reports it.
	h.serial.rx = []byte("k")
	h.nvic.Pend(hal.IRQUSART3)
	_ = run(ctx) // idle, take USART3
	_ = run(ctx) // rxwatch runs
	if got := h.serial.out.String(); got != "k[rx 1]\n" {
		t.Fatalf("serial output = %q, want %q", got, "k[rx 1]\n")
	}

	h.serial.out.Reset()
	h.nvic.Pend(hal.IRQEXTI15_10)
	_ = run(ctx) // rxwatch parks; the pending button is serviced on the way out
	_ = run(ctx) // hello reports it
	_ = run(ctx) // hello parks again
	if !h.led.on {
		t.Fatalf("LED off after button press, want on")
	}
	if got := h.serial.out.String(); got != "button 1\n" {
		t.Fatalf("serial output = %q, want %q", got, "button 1\n")
	}
}

func TestEchoHandlerLogsOverrun(t *testing.T) {
	h := newTestHAL()
	h.serial.rx = []byte("ab")
	h.serial.full = true

	echoHandler(h.serial, newLogger(h, "").Named("irq"))()

	if len(h.serial.rx) != 0 {
		t.Fatalf("rx left = %q, want drained", h.serial.rx)
	}
	var logged bool
	for _, line := range h.log.lines {
		if strings.Contains(line, "echo dropped bytes") && strings.Contains(line, "count=2") {
			logged = true
		}
	}
	if !logged {
		t.Fatalf("log lines = %q, want a dropped-bytes warning", h.log.lines)
	}
}

func TestRunCancelHaltsProcesses(t *testing.T) {
	h := newTestHAL()
	run := New(h, Config{MaxSteps: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("run() error = %v, want %v", err, context.Canceled)
	}

	if err := run(context.Background()); err != nil {
		t.Fatalf("run() after cancel error = %v", err)
	}
	if got := h.serial.out.String(); strings.Contains(got, "app_main") {
		t.Fatalf("serial output = %q, want no process output after halt", got)
	}
}

func TestLineWriter(t *testing.T) {
	l := &testLogger{}
	w := lineWriter{l: l}

	n, err := w.Write([]byte("one\ntwo\n\nthree"))
	if err != nil || n != 14 {
		t.Fatalf("Write() = %d, %v, want 14, nil", n, err)
	}
	want := []string{"one", "two", "three"}
	if strings.Join(l.lines, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q, want %q", l.lines, want)
	}
}

func TestPanicLines(t *testing.T) {
	lines := panicLines(kernel.PanicInfo{Value: "boom", Stack: []byte("main.f()\n\tfile.go:1\n")})
	want := []string{"kestrel panic:", "panic: boom", "stack:", "main.f()", "  file.go:1"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("panicLines() = %q, want %q", lines, want)
	}

	lines = panicLines(kernel.PanicInfo{Value: "boom"})
	if lines[len(lines)-1] != "stack: unavailable" {
		t.Fatalf("panicLines() last = %q, want %q", lines[len(lines)-1], "stack: unavailable")
	}
}
