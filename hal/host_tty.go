//go:build !tinygo

package hal

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/mattn/go-tty"
)

const ctrlC = 0x03

// attachTTY puts the controlling terminal in raw mode and feeds keystrokes to
// the serial RX line. Ctrl-C calls interrupt. The returned func restores the
// terminal.
func attachTTY(s *hostSerial, interrupt func()) (func(), error) {
	t, err := tty.Open()
	if err != nil {
		return nil, fmt.Errorf("open tty: %w", err)
	}
	restore, err := t.Raw()
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("tty raw mode: %w", err)
	}

	go func() {
		var buf [utf8.UTFMax]byte
		for {
			r, err := t.ReadRune()
			if err != nil {
				return
			}
			if r == ctrlC {
				interrupt()
				return
			}
			n := utf8.EncodeRune(buf[:], r)
			s.receive(buf[:n])
		}
	}()

	return func() {
		_ = restore()
		_ = t.Close()
	}, nil
}

// crlfWriter turns "\n" into "\r\n" for output to a raw-mode terminal.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
