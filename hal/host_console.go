//go:build !tinygo

package hal

import (
	"image/color"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// hostConsole mirrors serial output onto a framebuffer, like a VT100 hooked
// to the board's TX pin.
type hostConsole struct {
	mu sync.Mutex
	fb *hostFramebuffer
	t  *tinyterm.Terminal
}

func newHostConsole(fb *hostFramebuffer) *hostConsole {
	c := &hostConsole{fb: fb}
	fb.ClearRGB(0, 0, 0)
	c.t = tinyterm.NewTerminal(consoleDisplay{fb: fb})
	c.t.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: true,
	})
	return c
}

func (c *hostConsole) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t.Write(p)
}

// snapshot copies the current RGB565 pixels into dst.
func (c *hostConsole) snapshot(dst []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copy(dst, c.fb.buf)
}

// consoleDisplay adapts the framebuffer to tinyterm's Displayer.
type consoleDisplay struct {
	fb *hostFramebuffer
}

func (d consoleDisplay) Size() (x, y int16) {
	return int16(d.fb.width), int16(d.fb.height)
}

func (d consoleDisplay) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.width || iy < 0 || iy >= d.fb.height {
		return
	}
	pixel := rgb565(c.R, c.G, c.B)
	off := iy*d.fb.stride + ix*2
	d.fb.buf[off] = byte(pixel)
	d.fb.buf[off+1] = byte(pixel >> 8)
}

func (d consoleDisplay) Display() error { return d.fb.Present() }

func (d consoleDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0 := clampInt(int(x), 0, d.fb.width)
	y0 := clampInt(int(y), 0, d.fb.height)
	x1 := clampInt(int(x)+int(width), 0, d.fb.width)
	y1 := clampInt(int(y)+int(height), 0, d.fb.height)

	pixel := rgb565(c.R, c.G, c.B)
	lo, hi := byte(pixel), byte(pixel>>8)
	for py := y0; py < y1; py++ {
		row := py * d.fb.stride
		for px := x0; px < x1; px++ {
			d.fb.buf[row+px*2] = lo
			d.fb.buf[row+px*2+1] = hi
		}
	}
	return nil
}

// ScrollUp moves the picture up by lines rows and clears the bottom.
func (d consoleDisplay) ScrollUp(lines int16, bg color.RGBA) error {
	n := int(lines)
	if n <= 0 {
		return nil
	}
	if n >= d.fb.height {
		return d.FillRectangle(0, 0, int16(d.fb.width), int16(d.fb.height), bg)
	}
	copy(d.fb.buf, d.fb.buf[n*d.fb.stride:])
	return d.FillRectangle(0, int16(d.fb.height-n), int16(d.fb.width), int16(n), bg)
}

func (d consoleDisplay) SetScroll(line int16) {}

func (d consoleDisplay) SetRotation(rotation drivers.Rotation) error { return nil }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
