//go:build !tinygo && cgo

package hal

import (
	"context"
	"image"

	"kestrel/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow runs the board with its serial console in a desktop window.
// Typing feeds USART3, F1 presses the user button. It blocks until the window
// closes or the application returns.
func RunWindow(newApp func(HAL) func(context.Context) error, cfg HostConfig) error {
	cfg.Console = true
	h := newHost(cfg)
	run := newApp(h)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	g := &hostGame{h: h, kbd: newHostKeyboard(h), done: done}
	ebiten.SetWindowTitle(buildinfo.Banner())
	ebiten.SetWindowSize(h.fb.width*2, h.fb.height*2)
	ebiten.SetTPS(60)
	err := ebiten.RunGame(g)
	if err == ebiten.Termination {
		return g.err
	}
	return err
}

type hostGame struct {
	h    *hostHAL
	kbd  *hostKeyboard
	done <-chan error
	err  error

	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
}

func (g *hostGame) Update() error {
	g.kbd.poll()
	select {
	case err := <-g.done:
		g.err = err
		return ebiten.Termination
	default:
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	g.h.console.snapshot(g.scratch)

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, gg, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
