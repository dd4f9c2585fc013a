// Package logging builds the zap logger from configuration.
package logging

import (
	"fmt"
	"strings"

	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logger. json uses the production config and console the
// development config. Output other than stdout/stderr is treated as a file path
// and rotated with lumberjack.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.ErrorOutputPaths = []string{"stderr"}

	switch cfg.Output {
	case "", "stdout":
		zc.OutputPaths = []string{"stdout"}
	case "stderr":
		zc.OutputPaths = []string{"stderr"}
	default:
		return newRotating(zc, cfg), nil
	}

	return zc.Build()
}

func newRotating(zc zap.Config, cfg config.LoggingConfig) *zap.Logger {
	var encoder zapcore.Encoder
	if zc.Encoding == "console" {
		encoder = zapcore.NewConsoleEncoder(zc.EncoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(zc.EncoderConfig)
	}

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Output,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})

	core := zapcore.NewCore(encoder, writer, zc.Level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}
