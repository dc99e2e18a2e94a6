package app

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/roman-kulish/handheld-spectrum/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	if config.ListSessions {
		return listSessions(ctx, store, logger)
	}

	spec, err := readSpectrum(ctx, store, config, logger)
	if err != nil {
		return err
	}

	renderer, err := NewSpectrumRenderer(RenderConfig{
		Location:      config.TimeZone,
		ColorTheme:    config.Theme,
		Bounds:        manualBounds(config, spec.Histogram.Bounds()),
		NoAnnotations: config.NoAnnotations,
	})
	if err != nil {
		return fmt.Errorf("creating spectrum renderer: %w", err)
	}

	logger.Info("rendering spectrum",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", spec.Width),
			slog.Int("height", spec.Height),
		))

	img, err := renderer.Render(spec)
	if err != nil {
		return fmt.Errorf("rendering spectrum: %w", err)
	}

	return writeImage(config.OutputFile, config.Format, img)
}

func listSessions(ctx context.Context, store storage.Store, logger *slog.Logger) error {
	sessions, err := store.Sessions(ctx)
	if err != nil {
		return err
	}

	for _, s := range sessions {
		attrs := []any{
			slog.Int64("id", s.ID),
			slog.String("device", s.Device),
			slog.String("started", s.StartTime.Local().Format(time.DateTime)),
		}
		if s.Config != nil {
			attrs = append(attrs, slog.String("config", *s.Config))
		}
		logger.Info("session", attrs...)
	}
	return nil
}

func readSpectrum(ctx context.Context, store storage.Store, config *Config, logger *slog.Logger) (*SpectrumData, error) {
	var opts []storage.ReaderOption
	var filters []any

	switch {
	case config.StartTime != nil && config.EndTime != nil:
		opts = append(opts, storage.WithTimeRange(config.StartTime.UTC(), config.EndTime.UTC()))

		filters = append(filters,
			slog.String("minTimestamp", config.StartTime.UTC().Format(time.DateTime)),
			slog.String("maxTimestamp", config.EndTime.UTC().Format(time.DateTime)))

	case config.StartTime != nil:
		opts = append(opts, storage.WithStartTime(config.StartTime.UTC()))
		filters = append(filters, slog.String("minTimestamp", config.StartTime.UTC().Format(time.DateTime)))

	case config.EndTime != nil:
		opts = append(opts, storage.WithEndTime(config.EndTime.UTC()))
		filters = append(filters, slog.String("maxTimestamp", config.EndTime.UTC().Format(time.DateTime)))
	}

	if config.CompleteOnly {
		opts = append(opts, storage.WithCompleteOnly())
		filters = append(filters, slog.Bool("completeOnly", true))
	}

	logger.Info("reader configuration", filters...)

	reader, err := store.ReadPasses(ctx, config.SessionID, opts...)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	spec := NewSpectrumData()
	for reader.Next(ctx) {
		spec.Update(reader.Current())
	}
	if err = reader.Error(); err != nil {
		return nil, err
	}
	if spec.Passes == 0 {
		return nil, fmt.Errorf("session %d has no passes to render", config.SessionID)
	}

	spec.Build(config.MaxWidth)

	bounds := spec.Histogram.Bounds()
	logger.Info("finished reading passes",
		slog.Group("stats",
			slog.Int("passes", spec.Passes),
			slog.Int("aborted", spec.Aborted),
			slog.String("minTimestamp", spec.TimestampStart.Local().Format(time.DateTime)),
			slog.String("maxTimestamp", spec.TimestampEnd.Local().Format(time.DateTime)),
			slog.String("minFreq", formatFrequency(spec.FrequencyMin)),
			slog.String("maxFreq", formatFrequency(spec.FrequencyMax)),
			slog.String("minPower", fmt.Sprintf("%0.1fdBm", bounds.Min)),
			slog.String("maxPower", fmt.Sprintf("%0.1fdBm", bounds.Max)),
		))

	return spec, nil
}

// manualBounds overrides the measured bounds with the ones given on the
// command line. It returns nil when none were given.
func manualBounds(config *Config, measured PowerBounds) *PowerBounds {
	if config.MinPower == nil && config.MaxPower == nil {
		return nil
	}

	b := measured
	if config.MinPower != nil {
		b.Min = *config.MinPower
	}
	if config.MaxPower != nil {
		b.Max = *config.MaxPower
	}
	return &b
}

func writeImage(path string, format ImageFormat, img image.Image) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return encodeImage(out, format, img)
}

func encodeImage(w io.Writer, format ImageFormat, img image.Image) error {
	switch format {
	case ImagePNG:
		return png.Encode(w, img)
	case ImageJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 98})
	default:
		return fmt.Errorf("invalid image format: %s", format)
	}
}
