// Package log provides the named, colored component loggers used by every service.
// Each logger writes human-readable lines to its console writer and, when a file is
// configured, JSON lines to a rotating log file.
package log

import (
	"errors"
	"io"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const colorReset = "\033[0m"

var (
	ErrEmptyName    = errors.New("logger name is required")
	ErrNilWriter    = errors.New("logger writer is required")
	ErrInvalidLevel = errors.New("invalid log level")
)

// Options controls level and file output. The zero value logs at info level to the
// console only.
type Options struct {
	Level      string // debug, info, warn or error; empty means info.
	File       string // Rotating log file; empty disables file output.
	MaxSizeMB  int    // Size at which the file is rotated.
	MaxBackups int    // Rotated files to keep.
	MaxAgeDays int    // Days to keep rotated files.
}

// Logger is a named component logger.
type Logger struct {
	z *zap.Logger
}

// New creates a logger that prefixes every console line with name in the given color.
func New(name, color string, w io.Writer, opts ...Options) (*Logger, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if w == nil {
		return nil, ErrNilWriter
	}

	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	level := zapcore.InfoLevel
	if o.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(o.Level))); err != nil {
			return nil, errors.Join(ErrInvalidLevel, err)
		}
	}
	atomicLevel := zap.NewAtomicLevelAt(level)

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
	}

	consoleCfg := encoderCfg
	consoleCfg.EncodeName = func(n string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(color + "[" + n + "]" + colorReset)
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(zapcore.AddSync(w)), atomicLevel)

	if o.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    max(1, o.MaxSizeMB),
			MaxBackups: max(0, o.MaxBackups),
			MaxAge:     max(0, o.MaxAgeDays),
		}
		core = zapcore.NewTee(
			core,
			zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(fileWriter), atomicLevel),
		)
	}

	return &Logger{z: zap.New(core).Named(name)}, nil
}

func (l *Logger) Debug(msg string) {
	l.z.Debug(msg)
}

func (l *Logger) Info(msg string) {
	l.z.Info(msg)
}

func (l *Logger) Warning(msg string) {
	l.z.Warn(msg)
}

func (l *Logger) Error(msg string) {
	l.z.Error(msg)
}

// Zap exposes the underlying zap logger for libraries that take one.
func (l *Logger) Zap() *zap.Logger {
	return l.z
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.z.Sync()
}
