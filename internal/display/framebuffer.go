package display

import (
	"image"
	"strings"
	"sync"

	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
)

const (
	Width  = 128
	Height = 64
	pages  = Height / 8

	rulerPage = 5 // page the frequency ruler is blitted into
)

// Framebuffer is a 1 bpp LCD buffer laid out like the handheld's ST7565
// controller: 8 pages of 128 columns, one byte per column per page, bit n of a
// byte being row page*8+n.
type Framebuffer struct {
	mu    sync.Mutex
	buf   [pages * Width]byte
	frame *spectrum.Frame
}

func NewFramebuffer() *Framebuffer {
	return &Framebuffer{}
}

// Present draws a frame: bars, the ruler and the dashed trigger line.
func (fb *Framebuffer) Present(f *spectrum.Frame) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	clear(fb.buf[:])
	fb.frame = f

	for x, top := range f.Bars {
		if top == 0 {
			continue
		}
		fb.drawVLine(x, int(top), spectrum.DrawingEndY)
	}

	ruler := fb.buf[rulerPage*Width : (rulerPage+1)*Width]
	for x, v := range f.Ruler {
		ruler[x] |= v
	}

	for x := 0; x < Width-2; x += 4 {
		fb.drawHLine(x, x+2, int(f.TriggerY))
	}
}

// Clear blanks the screen and forgets the last frame.
func (fb *Framebuffer) Clear() {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	clear(fb.buf[:])
	fb.frame = nil
}

// Frame returns the last presented frame or nil after Clear.
func (fb *Framebuffer) Frame() *spectrum.Frame {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	return fb.frame
}

// Pixel reports whether the pixel at x, y is set.
func (fb *Framebuffer) Pixel(x, y int) bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	return fb.pixel(x, y)
}

// Bytes returns a copy of the raw page buffer.
func (fb *Framebuffer) Bytes() []byte {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	out := make([]byte, len(fb.buf))
	copy(out, fb.buf[:])
	return out
}

// Image renders the buffer as dark pixels on a light background, each LCD
// pixel scaled to a scale x scale square.
func (fb *Framebuffer) Image(scale int) *image.Gray {
	scale = max(scale, 1)

	fb.mu.Lock()
	defer fb.mu.Unlock()

	img := image.NewGray(image.Rect(0, 0, Width*scale, Height*scale))
	for y := 0; y < Height*scale; y++ {
		for x := 0; x < Width*scale; x++ {
			c := background
			if fb.pixel(x/scale, y/scale) {
				c = foreground
			}
			img.SetGray(x, y, c)
		}
	}
	return img
}

// Text renders the buffer with half block characters, two rows per line.
func (fb *Framebuffer) Text() string {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	var sb strings.Builder
	sb.Grow(Height / 2 * (Width*3 + 1))
	for y := 0; y < Height; y += 2 {
		for x := 0; x < Width; x++ {
			top, bottom := fb.pixel(x, y), fb.pixel(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (fb *Framebuffer) pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return fb.buf[(y/8)*Width+x]&(1<<(y%8)) != 0
}

func (fb *Framebuffer) setPixel(x, y int) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	fb.buf[(y/8)*Width+x] |= 1 << (y % 8)
}

// drawVLine sets column x from row y1 to row y2 inclusive.
func (fb *Framebuffer) drawVLine(x, y1, y2 int) {
	for y := y1; y <= y2; y++ {
		fb.setPixel(x, y)
	}
}

// drawHLine sets row y from column x1 to column x2 inclusive.
func (fb *Framebuffer) drawHLine(x1, x2, y int) {
	for x := x1; x <= x2; x++ {
		fb.setPixel(x, y)
	}
}
