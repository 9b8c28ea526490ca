//go:build tinygo && baremetal

package hal

import "machine"

type uartLogger struct {
	serial Serial
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		_ = l.serial.WriteByte(s[i])
	}
	_ = l.serial.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		_ = l.serial.WriteByte(b[i])
	}
	_ = l.serial.WriteByte('\n')
}

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High() { l.pin.High() }
func (l *pinLED) Low()  { l.pin.Low() }
