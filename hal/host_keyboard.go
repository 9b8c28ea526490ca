//go:build !tinygo && cgo

package hal

import (
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// hostKeyboard turns window key presses into bytes on the USART3 RX line.
type hostKeyboard struct {
	h   *hostHAL
	buf []byte
}

func newHostKeyboard(h *hostHAL) *hostKeyboard {
	return &hostKeyboard{h: h}
}

func (k *hostKeyboard) poll() {
	k.buf = k.buf[:0]

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	if ctrl {
		emitCtrl := func(key ebiten.Key, c byte) {
			if inpututil.IsKeyJustPressed(key) {
				k.buf = append(k.buf, c)
			}
		}
		emitCtrl(ebiten.KeyC, 0x03)
		emitCtrl(ebiten.KeyD, 0x04)
		emitCtrl(ebiten.KeyL, 0x0c)
	}

	var tmp [utf8.UTFMax]byte
	for _, r := range ebiten.AppendInputChars(nil) {
		n := utf8.EncodeRune(tmp[:], r)
		k.buf = append(k.buf, tmp[:n]...)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		k.buf = append(k.buf, '\r')
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		k.buf = append(k.buf, 0x7f)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		k.buf = append(k.buf, '\t')
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		k.buf = append(k.buf, 0x1b)
	}

	if len(k.buf) > 0 {
		k.h.serial.receive(k.buf)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		k.h.pressButton()
	}
}
