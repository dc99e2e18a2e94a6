package display

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
)

const (
	dpi      float64 = 72
	fontSize float64 = 11
	margin           = 4
)

var (
	background = color.Gray{Y: 0xD8}
	foreground = color.Gray{Y: 0x20}
)

// Snapshotter renders the framebuffer with the frame's numeric fields above
// and below the LCD area.
type Snapshotter struct {
	fb      *Framebuffer
	scale   int
	strip   int
	context *freetype.Context
}

// NewSnapshotter creates a snapshotter drawing fb at the given scale.
func NewSnapshotter(fb *Framebuffer, scale int) (*Snapshotter, error) {
	parsedFont, err := freetype.ParseFont(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	size := fontSize * float64(max(scale, 1)) / 2
	context := freetype.NewContext()
	context.SetDPI(dpi)
	context.SetFont(parsedFont)
	context.SetFontSize(size)
	context.SetHinting(font.HintingFull)
	context.SetSrc(image.NewUniform(foreground))

	return &Snapshotter{
		fb:      fb,
		scale:   max(scale, 1),
		strip:   int(size*1.4) + margin,
		context: context,
	}, nil
}

// Render draws the snapshot image.
func (s *Snapshotter) Render() *image.Gray {
	lcd := s.fb.Image(s.scale)
	bounds := lcd.Bounds()

	img := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()+2*s.strip))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	draw.Draw(img, bounds.Add(image.Pt(0, s.strip)), lcd, image.Point{}, draw.Src)

	f := s.fb.Frame()
	if f == nil {
		return img
	}

	s.context.SetClip(img.Bounds())
	s.context.SetDst(img)

	baseline := s.strip - margin
	bottom := img.Bounds().Dy() - margin
	right := img.Bounds().Dx() / 2

	state := "scan"
	if f.Listening {
		state = "listen"
	}

	labels := []struct {
		text string
		x, y int
	}{
		{fmt.Sprintf("%s %d", humanHz(float64(f.PeakFrequency)), f.PeakRSSI), margin, baseline},
		{fmt.Sprintf("BW %s", humanHz(float64(f.Bandwidth))), right, baseline},
		{humanHz(float64(f.CenterFrequency)), margin, bottom},
		{fmt.Sprintf("%s T%d %s", humanHz(float64(f.FrequencyStep)), f.TriggerLevel, state), right, bottom},
	}
	for _, l := range labels {
		_, _ = s.context.DrawString(l.text, freetype.Pt(l.x, l.y))
	}

	return img
}

// WritePNG encodes the snapshot as PNG.
func (s *Snapshotter) WritePNG(w io.Writer) error {
	if err := png.Encode(w, s.Render()); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

func humanHz(hz float64) string {
	value, prefix := humanize.ComputeSI(hz)
	return fmt.Sprintf("%0.3f %sHz", value, prefix)
}

var _ spectrum.Display = (*Framebuffer)(nil)
