// Package logging configures zap for the portal and provides the HTTP access log middleware.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel converts a textual level into an atomic level. Unknown levels fall back to info.
func ParseLevel(level string) zap.AtomicLevel {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	return zap.NewAtomicLevelAt(lvl)
}

// New builds a console logger writing to stdout.
func New(level string) (*zap.Logger, error) {
	cfg := &zap.Config{
		Level:    ParseLevel(level),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "severity",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build(zap.AddStacktrace(zap.DPanicLevel))
}

// Init builds the logger and installs it as the zap global.
// The returned func restores the previous globals and flushes the logger.
func Init(level string) (*zap.Logger, func(), error) {
	logger, err := New(level)
	if err != nil {
		return nil, nil, err
	}
	undo := zap.ReplaceGlobals(logger)
	return logger, func() {
		_ = logger.Sync()
		undo()
	}, nil
}
