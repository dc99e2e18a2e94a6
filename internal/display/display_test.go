package display

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
)

func testFrame() *spectrum.Frame {
	f := &spectrum.Frame{
		TriggerY:        20,
		Bandwidth:       800_000,
		PeakFrequency:   433_925_000,
		CenterFrequency: 433_000_000,
		FrequencyStep:   400_000,
		PeakRSSI:        120,
		TriggerLevel:    100,
		Listening:       true,
	}
	f.Ruler[10] = 0x18
	f.Bars[3] = 30
	return f
}

func TestFramebuffer_Present(t *testing.T) {
	fb := NewFramebuffer()
	fb.Present(testFrame())

	// Bar from its top row down to the end of the drawing area
	for y := 30; y <= spectrum.DrawingEndY; y++ {
		if !fb.Pixel(3, y) {
			t.Errorf("Expected bar pixel at 3,%d", y)
		}
	}
	if fb.Pixel(3, 29) {
		t.Error("Expected nothing above the bar")
	}
	if fb.Pixel(4, 35) {
		t.Error("Expected undrawn column to stay blank")
	}

	// Ruler byte 0x18 lands in page 5: rows 43 and 44
	raw := fb.Bytes()
	if raw[rulerPage*Width+10] != 0x18 {
		t.Errorf("Expected ruler byte 0x18, got %#02x", raw[rulerPage*Width+10])
	}
	if !fb.Pixel(10, 43) || !fb.Pixel(10, 44) || fb.Pixel(10, 45) {
		t.Error("Unexpected ruler pixels in column 10")
	}

	// Dashed trigger line: three pixels on, one off
	for x := 0; x < Width-2; x++ {
		want := x%4 != 3
		if got := fb.Pixel(x, 20); got != want {
			t.Errorf("Trigger line at column %d: expected %v, got %v", x, want, got)
		}
	}
	if !fb.Pixel(126, 20) || fb.Pixel(127, 20) {
		t.Error("Expected last dash to end at column 126")
	}
}

func TestFramebuffer_Clear(t *testing.T) {
	fb := NewFramebuffer()
	fb.Present(testFrame())
	fb.Clear()

	for _, b := range fb.Bytes() {
		if b != 0 {
			t.Fatal("Expected blank buffer after clear")
		}
	}
	if fb.Frame() != nil {
		t.Error("Expected frame forgotten after clear")
	}
}

func TestFramebuffer_Text(t *testing.T) {
	fb := NewFramebuffer()
	fb.Present(testFrame())

	lines := strings.Split(strings.TrimSuffix(fb.Text(), "\n"), "\n")
	if len(lines) != Height/2 {
		t.Fatalf("Expected %d lines, got %d", Height/2, len(lines))
	}
	// Rows 20 and 21: trigger dash on top only
	if r := []rune(lines[10]); r[0] != '▀' {
		t.Errorf("Expected upper half block, got %q", r[0])
	}
}

func TestSnapshotter_WritePNG(t *testing.T) {
	fb := NewFramebuffer()
	fb.Present(testFrame())

	s, err := NewSnapshotter(fb, 4)
	if err != nil {
		t.Fatalf("Failed to create snapshotter: %v", err)
	}

	var buf bytes.Buffer
	if err := s.WritePNG(&buf); err != nil {
		t.Fatalf("Failed to write snapshot: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Failed to decode snapshot: %v", err)
	}
	size := img.Bounds().Size()
	if size.X != Width*4 || size.Y <= Height*4 {
		t.Errorf("Unexpected snapshot size %v", size)
	}
}

func TestHumanHz(t *testing.T) {
	if got := humanHz(433_925_000); got != "433.925 MHz" {
		t.Errorf("Expected 433.925 MHz, got %q", got)
	}
	if got := humanHz(12_500); got != "12.500 kHz" {
		t.Errorf("Expected 12.500 kHz, got %q", got)
	}
}
