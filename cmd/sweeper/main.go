package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/lumberjack.v2"

	"github.com/roman-kulish/handheld-spectrum/cmd/sweeper/app"
)

func main() {
	var logLevel slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &logLevel}))

	var configPath string
	flag.StringVar(&configPath, "c", "", "Path to the configuration file")
	flag.Parse()

	if configPath == "" {
		logger.Error("no configuration file provided")
		os.Exit(1)
	}

	config, err := app.LoadConfig(configPath)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to load configuration file: %s", err.Error()), slog.String("path", configPath))
		os.Exit(1)
	}

	level, _ := config.Settings.Level() // validated by LoadConfig
	logLevel.Set(level)

	if config.Settings.LogFile != "" {
		rotatingFile, err := newRotatingFile(&config.Settings)
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		defer rotatingFile.Close()

		// the terminal view owns the screen, so logs go to the file only
		var w io.Writer = rotatingFile
		if !config.Display.Terminal {
			w = io.MultiWriter(os.Stderr, rotatingFile)
		}
		logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &logLevel}))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err = app.Run(ctx, config, logger); err != nil {
		logger.Error(err.Error())

		cancel()
		os.Exit(1)
	}
}

func newRotatingFile(s *app.Settings) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(s.LogFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   s.LogFile,
		MaxSize:    s.LogMaxSize,    // megabytes
		MaxBackups: s.LogMaxBackups, // number of backups
		MaxAge:     s.LogMaxAge,     // days
		Compress:   s.LogCompress,
	}, nil
}
