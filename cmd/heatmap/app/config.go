package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"

	defaultMaxWidth = 2048
)

type ImageFormat string

type Config struct {
	DBPath        string
	SessionID     int64
	ListSessions  bool
	OutputFile    string
	Format        ImageFormat
	Theme         ColorTheme
	TimeZone      *time.Location
	MaxPower      *float64 // dBm
	MinPower      *float64 // dBm
	StartTime     *time.Time
	EndTime       *time.Time
	CompleteOnly  bool
	MaxWidth      int
	Verbose       bool
	NoAnnotations bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Format:   ImagePNG,
		Theme:    ClassicTheme,
		TimeZone: time.Local,
		MaxWidth: defaultMaxWidth,
	}
}

// ParseArgs builds the configuration from command line arguments. Usage is
// written to output when the arguments are invalid.
func ParseArgs(name string, args []string, output io.Writer) (*Config, error) {
	c := NewConfig()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	var imageFormat, theme, timeZone, startTime, endTime string
	var minPower, maxPower float64
	fs.StringVar(&c.DBPath, "db", "", "Path to the database file")
	fs.Int64Var(&c.SessionID, "s", 1, "Session ID")
	fs.BoolVar(&c.ListSessions, "list", false, "List the recorded sessions and exit")
	fs.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	fs.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	fs.StringVar(&theme, "theme", string(ClassicTheme), "Color theme. [classic, grayscale, jungle, thermal, marine]")
	fs.StringVar(&timeZone, "tz", "Local", "Time zone of the time scale, e.g. UTC or Europe/Berlin")
	fs.StringVar(&startTime, "from", "", "Skip passes recorded before this RFC 3339 time")
	fs.StringVar(&endTime, "to", "", "Skip passes recorded after this RFC 3339 time")
	fs.BoolVar(&c.CompleteOnly, "complete-only", false, "Skip passes aborted by a key press")
	fs.IntVar(&c.MaxWidth, "max-width", defaultMaxWidth, "Maximum width of the waterfall in pixels")
	fs.Float64Var(&minPower, "min-power", 0, "Define a manual minimum power in dBm (format nn.n)")
	fs.Float64Var(&maxPower, "max-power", 0, "Define a manual maximum power in dBm (format nn.n)")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	fs.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as time and frequency scales")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "min-power" {
			c.MinPower = &minPower
		}
		if f.Name == "max-power" {
			c.MaxPower = &maxPower
		}
	})

	err := c.apply(strings.ToLower(imageFormat), strings.ToLower(theme), timeZone, startTime, endTime)
	if err != nil {
		fs.Usage()
		return nil, err
	}
	return c, nil
}

func (c *Config) apply(imageFormat, theme, timeZone, startTime, endTime string) error {
	if c.DBPath == "" {
		return errors.New("db path is required")
	}
	if c.ListSessions {
		return nil
	}

	switch {
	case c.SessionID <= 0:
		return errors.New("session id is required")
	case c.OutputFile == "":
		return errors.New("output file is required")
	case c.MaxWidth <= 0:
		return fmt.Errorf("max width must be positive: %d", c.MaxWidth)
	}

	if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		return fmt.Errorf("invalid image format: %s", imageFormat)
	}
	c.Format = ImageFormat(imageFormat)

	if _, ok := colorThemes[ColorTheme(theme)]; !ok {
		return fmt.Errorf("invalid color theme: %s", theme)
	}
	c.Theme = ColorTheme(theme)

	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}
	c.TimeZone = loc

	if c.StartTime, err = parseTime(startTime); err != nil {
		return fmt.Errorf("invalid start time: %w", err)
	}
	if c.EndTime, err = parseTime(endTime); err != nil {
		return fmt.Errorf("invalid end time: %w", err)
	}
	if c.StartTime != nil && c.EndTime != nil && c.StartTime.After(*c.EndTime) {
		return errors.New("start time is after end time")
	}

	if c.MinPower != nil && c.MaxPower != nil && *c.MinPower >= *c.MaxPower {
		return fmt.Errorf("min power %0.1f must be below max power %0.1f", *c.MinPower, *c.MaxPower)
	}

	if filepath.Ext(c.OutputFile) == "" {
		c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	}
	return nil
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
