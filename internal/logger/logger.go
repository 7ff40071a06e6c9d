package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger used across the module. The *Obj variants
// attach a whole map under a single key, which keeps event payloads grouped
// in JSON output.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)

	DebugObj(msg, key string, obj map[string]any)
	InfoObj(msg, key string, obj map[string]any)
	WarnObj(msg, key string, obj map[string]any)
	ErrorObj(msg, key string, obj map[string]any)

	Sync() error
}

// Options controls how New builds the logger.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	// OutputPaths are zap sink URLs or file paths. Empty means stderr.
	OutputPaths []string
}

type zapLogger struct {
	l *zap.Logger
}

// New builds a zap-backed Logger from opts.
func New(opts Options) (Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	encoding := strings.ToLower(strings.TrimSpace(opts.Format))
	if encoding == "" {
		encoding = "console"
	}
	if encoding != "console" && encoding != "json" {
		return nil, fmt.Errorf("unknown log format %q (valid: console, json)", opts.Format)
	}

	outputs := opts.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = encoding
	cfg.OutputPaths = outputs
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if encoding == "console" {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg.Sampling = nil

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &zapLogger{l: l}, nil
}

// FromZap adapts an existing zap logger, mainly for tests using zaptest/observer.
func FromZap(l *zap.Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return &zapLogger{l: l}
}

// ParseLevel maps a config string onto a zap level. Empty means info.
func ParseLevel(raw string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", raw)
	}
}

func (z *zapLogger) Debug(msg string, fields ...zap.Field) { z.l.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...zap.Field)  { z.l.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...zap.Field)  { z.l.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...zap.Field) { z.l.Error(msg, fields...) }

func (z *zapLogger) DebugObj(msg, key string, obj map[string]any) {
	z.l.Debug(msg, zap.Any(key, obj))
}

func (z *zapLogger) InfoObj(msg, key string, obj map[string]any) {
	z.l.Info(msg, zap.Any(key, obj))
}

func (z *zapLogger) WarnObj(msg, key string, obj map[string]any) {
	z.l.Warn(msg, zap.Any(key, obj))
}

func (z *zapLogger) ErrorObj(msg, key string, obj map[string]any) {
	z.l.Error(msg, zap.Any(key, obj))
}

func (z *zapLogger) Sync() error { return z.l.Sync() }

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...zap.Field)              {}
func (NopLogger) Info(string, ...zap.Field)               {}
func (NopLogger) Warn(string, ...zap.Field)               {}
func (NopLogger) Error(string, ...zap.Field)              {}
func (NopLogger) DebugObj(string, string, map[string]any) {}
func (NopLogger) InfoObj(string, string, map[string]any)  {}
func (NopLogger) WarnObj(string, string, map[string]any)  {}
func (NopLogger) ErrorObj(string, string, map[string]any) {}
func (NopLogger) Sync() error                             { return nil }
