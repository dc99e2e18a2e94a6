package app

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme represents a predefined color scheme for power visualization.
type ColorTheme string

const (
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	JungleTheme    ColorTheme = "jungle"    // Dark green to yellow transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white
	MarineTheme    ColorTheme = "marine"    // Deep blue to cyan to white

	DefaultColorMapSize = 256 // Default number of colors in the map
)

// noDataColor marks cells without a reading, including blacklisted bins.
var noDataColor = color.Black

type keypoint struct {
	color    colorful.Color
	position float64 // [0-1]
}

// gradient interpolates between keypoints in HCL space, which keeps the
// perceived brightness change even along the scale.
type gradient []keypoint

var colorThemes = map[ColorTheme]gradient{
	ClassicTheme: {
		{colorful.Hsv(240, 0.9, 0.2), 0},
		{colorful.Hsv(180, 0.95, 0.75), 0.4},
		{colorful.Hsv(60, 1, 0.95), 0.75},
		{colorful.Hsv(0, 1, 1), 1},
	},
	GrayscaleTheme: {
		{colorful.Color{R: 0.05, G: 0.05, B: 0.05}, 0},
		{colorful.Color{R: 1, G: 1, B: 1}, 1},
	},
	JungleTheme: {
		{mustParseHex("#0b2e13"), 0},
		{mustParseHex("#2e7d32"), 0.5},
		{mustParseHex("#f9e547"), 1},
	},
	ThermalTheme: {
		{mustParseHex("#000000"), 0},
		{mustParseHex("#b71c1c"), 0.33},
		{mustParseHex("#ffd600"), 0.66},
		{mustParseHex("#ffffff"), 1},
	},
	MarineTheme: {
		{mustParseHex("#0a1d4d"), 0},
		{mustParseHex("#1565c0"), 0.4},
		{mustParseHex("#4dd0e1"), 0.8},
		{mustParseHex("#e0f7fa"), 1},
	},
}

// mustParseHex parses a "#rrggbb" color literal and panics on malformed input.
func mustParseHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("invalid hex color %q: %v", s, err))
	}
	return c
}

func (g gradient) at(t float64) colorful.Color {
	t = math.Max(0, math.Min(1, t))
	for i := 0; i < len(g)-1; i++ {
		c1, c2 := g[i], g[i+1]
		if c1.position <= t && t <= c2.position {
			t := (t - c1.position) / (c2.position - c1.position)
			return c1.color.BlendHcl(c2.color, t).Clamped()
		}
	}
	return g[len(g)-1].color
}

// ColorMapper maps power values onto a precomputed color table.
type ColorMapper struct {
	colorMap    []color.Color
	themeName   ColorTheme
	boundsMin   float64
	boundsRange float64
}

// NewColorMapper creates a color mapper for theme spanning bounds.
func NewColorMapper(theme ColorTheme, bounds PowerBounds, size int) (*ColorMapper, error) {
	g, ok := colorThemes[theme]
	if !ok {
		return nil, fmt.Errorf("unknown color theme '%s'", theme)
	}
	if size < 2 {
		size = DefaultColorMapSize
	}

	cm := &ColorMapper{
		colorMap:    make([]color.Color, size),
		themeName:   theme,
		boundsMin:   bounds.Min,
		boundsRange: bounds.Max - bounds.Min,
	}
	for i := range cm.colorMap {
		cm.colorMap[i] = g.at(float64(i) / float64(size-1))
	}
	return cm, nil
}

// Color returns the color for power in dBm, noDataColor for nil.
func (cm *ColorMapper) Color(power *float64) color.Color {
	if power == nil {
		return noDataColor
	}
	if cm.boundsRange <= 0 {
		return cm.colorMap[len(cm.colorMap)-1]
	}

	index := int((*power - cm.boundsMin) / cm.boundsRange * float64(len(cm.colorMap)-1))
	index = max(0, min(index, len(cm.colorMap)-1))
	return cm.colorMap[index]
}

func (cm *ColorMapper) ThemeName() ColorTheme {
	return cm.themeName
}
