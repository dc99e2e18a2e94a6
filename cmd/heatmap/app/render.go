package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

const (
	dpi            = 120.0
	fontSize       = 9.0
	tickMarkHeight = 5
	pixelsPerLabel = 150.0
	rowsPerLabel   = 60

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 110
	defaultBottomBorder = 40
	defaultRightBorder  = 40

	defaultTimeFormat     = "15:04:05"
	defaultDatetimeFormat = time.DateTime
)

// BorderConfig defines the sizes of white space around the spectrum
type BorderConfig struct {
	Top    int // Space for frequency scale
	Left   int // Space for time scale
	Bottom int // Space for information bar
	Right  int // Right padding
}

// RenderConfig holds all configuration options for spectrum visualization
type RenderConfig struct {
	TimeFormat     string         // Format string for time display (e.g. "15:04:05")
	DatetimeFormat string         // Format string for date/time display
	Location       *time.Location // Timezone for time display

	FontSize     float64    // Font size in points
	ColorTheme   ColorTheme // Color scheme for power values
	ColorMapSize int        // Number of colors in gradient (0 for default)
	Bounds       *PowerBounds

	NoAnnotations bool
	BorderConfig  BorderConfig
}

// SpectrumRenderer draws the waterfall with its scales.
type SpectrumRenderer struct {
	config RenderConfig
}

// NewSpectrumRenderer creates a new spectrum renderer with the given configuration
func NewSpectrumRenderer(config RenderConfig) (*SpectrumRenderer, error) {
	if _, ok := colorThemes[config.ColorTheme]; !ok {
		return nil, fmt.Errorf("unknown color theme '%s'", config.ColorTheme)
	}
	if config.TimeFormat == "" {
		config.TimeFormat = defaultTimeFormat
	}
	if config.DatetimeFormat == "" {
		config.DatetimeFormat = defaultDatetimeFormat
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}

	if config.NoAnnotations {
		config.BorderConfig = BorderConfig{}
	} else {
		if config.BorderConfig.Top == 0 {
			config.BorderConfig.Top = defaultTopBorder
		}
		if config.BorderConfig.Left == 0 {
			config.BorderConfig.Left = defaultLeftBorder
		}
		if config.BorderConfig.Bottom == 0 {
			config.BorderConfig.Bottom = defaultBottomBorder
		}
		if config.BorderConfig.Right == 0 {
			config.BorderConfig.Right = defaultRightBorder
		}
	}

	return &SpectrumRenderer{config: config}, nil
}

// Render creates an image of the spectrum data with annotations
func (r *SpectrumRenderer) Render(spec *SpectrumData) (*image.RGBA, error) {
	if spec.Width == 0 || spec.Height == 0 {
		return nil, fmt.Errorf("no passes to render")
	}

	b := r.config.BorderConfig
	img := image.NewRGBA(image.Rect(0, 0, spec.Width+b.Left+b.Right, spec.Height+b.Top+b.Bottom))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	bounds := spec.Histogram.Bounds()
	if r.config.Bounds != nil {
		bounds = *r.config.Bounds
	}
	colorMap, err := NewColorMapper(r.config.ColorTheme, bounds, r.config.ColorMapSize)
	if err != nil {
		return nil, err
	}

	if !r.config.NoAnnotations {
		ann, err := newAnnotator(r.config)
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		defer ann.Close()

		if err = ann.annotate(img, spec, bounds); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	area := image.Rect(b.Left, b.Top, b.Left+spec.Width, b.Top+spec.Height)
	for y, span := range spec.Spans {
		for x, power := range span {
			img.Set(area.Min.X+x, area.Min.Y+y, colorMap.Color(power))
		}
	}

	return img, nil
}

type annotator struct {
	context  *freetype.Context
	config   RenderConfig
	fontFace font.Face
}

func newAnnotator(config RenderConfig) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	return a.fontFace.Close()
}

func (a *annotator) annotate(img *image.RGBA, spec *SpectrumData, bounds PowerBounds) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	ops := []struct {
		msg string
		fn  func() error
	}{
		{msg: "drawing frequency scale", fn: func() error { return a.drawFrequencyScale(img, spec) }},
		{msg: "drawing time scale", fn: func() error { return a.drawTimeScale(img, spec) }},
		{msg: "drawing info bar", fn: func() error { return a.drawInfoBar(img, spec, bounds) }},
	}
	for _, op := range ops {
		if err := op.fn(); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}
	return nil
}

func (a *annotator) fontHeight() int {
	metrics := a.fontFace.Metrics()
	return (metrics.Ascent + metrics.Descent).Round()
}

func (a *annotator) drawFrequencyScale(img *image.RGBA, spec *SpectrumData) error {
	band := spec.FrequencyMax - spec.FrequencyMin
	step := calculateNiceFrequencyStep(band, spec.Width)
	textY := a.config.BorderConfig.Top - tickMarkHeight - a.fontHeight()/2

	first := float64(int64(spec.FrequencyMin/step)) * step
	if first < spec.FrequencyMin {
		first += step
	}

	for freq := first; freq <= spec.FrequencyMax; freq += step {
		x := a.config.BorderConfig.Left + int((freq-spec.FrequencyMin)/band*float64(spec.Width))

		for y := a.config.BorderConfig.Top - tickMarkHeight; y < a.config.BorderConfig.Top; y++ {
			img.Set(x, y, color.Black)
		}

		label := formatFrequency(freq)
		width := font.MeasureString(a.fontFace, label)
		if _, err := a.context.DrawString(label, freetype.Pt(x-width.Round()/2, textY)); err != nil {
			return fmt.Errorf("drawing frequency label: %w", err)
		}
	}
	return nil
}

// drawTimeScale labels every rowsPerLabel rows with the time of that pass.
// Passes are not evenly spaced in time, so labels follow rows.
func (a *annotator) drawTimeScale(img *image.RGBA, spec *SpectrumData) error {
	metrics := a.fontFace.Metrics()
	left := a.config.BorderConfig.Left

	for y := 0; y < spec.Height; y += rowsPerLabel {
		imgY := y + a.config.BorderConfig.Top

		for x := left - tickMarkHeight; x < left; x++ {
			img.Set(x, imgY, color.Black)
		}

		label := spec.Timestamps[y].In(a.config.Location).Format(a.config.TimeFormat)
		textY := imgY + a.fontHeight()/2 - metrics.Descent.Round()
		if _, err := a.context.DrawString(label, freetype.Pt(10, textY)); err != nil {
			return fmt.Errorf("drawing time label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, spec *SpectrumData, bounds PowerBounds) error {
	var sb strings.Builder

	sb.WriteString(formatFrequencyRange(spec.FrequencyMin, spec.FrequencyMax))
	fmt.Fprintf(&sb, "; Time: %s - %s",
		spec.TimestampStart.In(a.config.Location).Format(a.config.DatetimeFormat),
		spec.TimestampEnd.In(a.config.Location).Format(a.config.DatetimeFormat))
	fmt.Fprintf(&sb, "; 1px = %s", formatFrequency(spec.Resolution))
	fmt.Fprintf(&sb, "; Passes: %s (%s aborted)", humanize.Comma(int64(spec.Passes)), humanize.Comma(int64(spec.Aborted)))
	fmt.Fprintf(&sb, "; Power: %0.1f to %0.1f dBm", bounds.Min, bounds.Max)

	metrics := a.fontFace.Metrics()
	textY := img.Bounds().Max.Y - (a.config.BorderConfig.Bottom-a.fontHeight())/2 - metrics.Descent.Round()

	if _, err := a.context.DrawString(sb.String(), freetype.Pt(a.config.BorderConfig.Left, textY)); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}
	return nil
}

func calculateNiceFrequencyStep(band float64, width int) float64 {
	// Standard step sizes in Hz
	steps := []float64{
		1_000,       // 1 kHz
		5_000,       // 5 kHz
		10_000,      // 10 kHz
		25_000,      // 25 kHz
		50_000,      // 50 kHz
		100_000,     // 100 kHz
		250_000,     // 250 kHz
		500_000,     // 500 kHz
		1_000_000,   // 1 MHz
		10_000_000,  // 10 MHz
		100_000_000, // 100 MHz
	}

	desiredSteps := max(float64(width)/pixelsPerLabel, 1)
	targetStep := band / desiredSteps

	for _, step := range steps {
		if step >= targetStep {
			if band/step >= 2 {
				return step
			}
			break
		}
	}

	// too few labels would fit, show the center
	return band / 2
}

func formatFrequency(freq float64) string {
	value, prefix := humanize.ComputeSI(freq)
	return humanize.FtoaWithDigits(value, 3) + " " + prefix + "Hz"
}

func formatFrequencyRange(min, max float64) string {
	return fmt.Sprintf("Freq: %s - %s", formatFrequency(min), formatFrequency(max))
}
