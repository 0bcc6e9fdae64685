package cmd

import (
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

func setLogger(path string, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    5,
		MaxBackups: 5,
		Compress:   true,
	}, &slog.HandlerOptions{
		Level: level,
	}))

	slog.SetDefault(logger)
	slog.Debug("DEBUGGING ENABLED")
}
