//go:build !tinygo

package hal

import (
	"bytes"
	"errors"
	"testing"
)

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("closed") }

func TestHostSerialWriteNewline(t *testing.T) {
	var out bytes.Buffer
	s := newHostSerial(&out, nil, IRQUSART3)
	for _, c := range []byte("hi\n") {
		if err := s.WriteByte(c); err != nil {
			t.Fatalf("WriteByte(%q) error = %v", c, err)
		}
	}
	if got := out.String(); got != "hi\r\n" {
		t.Fatalf("output = %q, want %q", got, "hi\r\n")
	}
}

func TestHostSerialWriteError(t *testing.T) {
	s := newHostSerial(failWriter{}, nil, IRQUSART3)
	if err := s.WriteByte('x'); !errors.Is(err, ErrOverrun) {
		t.Fatalf("WriteByte() error = %v, want %v", err, ErrOverrun)
	}
}

func TestHostSerialReceivePendsLine(t *testing.T) {
	nvic := NewSimNVIC()
	s := newHostSerial(nil, nvic, IRQUSART3)

	if _, err := s.ReadByte(); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("ReadByte() on empty error = %v, want %v", err, ErrWouldBlock)
	}

	s.receive([]byte("a\r"))
	if !nvic.IsPending(IRQUSART3) {
		t.Fatalf("IsPending(%v) = false after receive, want true", IRQUSART3)
	}
	for _, want := range []byte("a\n") {
		got, err := s.ReadByte()
		if err != nil || got != want {
			t.Fatalf("ReadByte() = %q, %v, want %q, nil", got, err, want)
		}
	}
}

func TestHostSerialOverrunDrops(t *testing.T) {
	s := newHostSerial(nil, nil, IRQUSART3)
	s.receive(bytes.Repeat([]byte{'x'}, rxSlots+5))
	if s.lost != 5 {
		t.Fatalf("lost = %d, want 5", s.lost)
	}
	n := 0
	for {
		if _, err := s.ReadByte(); err != nil {
			break
		}
		n++
	}
	if n != rxSlots {
		t.Fatalf("read %d bytes, want %d", n, rxSlots)
	}
}

func TestCRLFWriter(t *testing.T) {
	var out bytes.Buffer
	n, err := crlfWriter{w: &out}.Write([]byte("a\nb\n"))
	if err != nil || n != 4 {
		t.Fatalf("Write() = %d, %v, want 4, nil", n, err)
	}
	if got := out.String(); got != "a\r\nb\r\n" {
		t.Fatalf("output = %q, want %q", got, "a\r\nb\r\n")
	}
}
