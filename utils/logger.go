package utils

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides leveled, printf-style logging throughout the application.
type Logger struct {
	s *zap.SugaredLogger
}

// NewLogger creates an info-level Logger writing to stdout/stderr.
func NewLogger() *Logger {
	return NewLoggerWithLevel("info")
}

// NewLoggerWithLevel creates a Logger that drops entries below level.
// Unknown levels fall back to info.
func NewLoggerWithLevel(level string) *Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encCfg.EncodeCaller = nil
	enc := zapcore.NewConsoleEncoder(encCfg)

	enabled := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= lvl })
	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= lvl && l < zapcore.ErrorLevel })
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return enabled(l) && l >= zapcore.ErrorLevel })

	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(os.Stdout), low),
		zapcore.NewCore(enc, zapcore.Lock(os.Stderr), high),
	)
	return NewLoggerFromZap(zap.New(core))
}

// NewLoggerFromZap wraps an existing zap logger.
func NewLoggerFromZap(z *zap.Logger) *Logger {
	return &Logger{s: z.Sugar()}
}

// NewNopLogger discards everything. Used by tests.
func NewNopLogger() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

func (l *Logger) Info(format string, args ...any)  { l.s.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.s.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...any) { l.s.Errorf(format, args...) }
func (l *Logger) Debug(format string, args ...any) { l.s.Debugf(format, args...) }

// Sync flushes buffered entries.
func (l *Logger) Sync() { _ = l.s.Sync() }
