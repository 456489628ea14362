package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level controls which log messages are emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Field is a structured logging attribute attached to a single message.
type Field struct {
	fields []zap.Field
}

// WithField creates a single key/value logging attribute.
func WithField(key string, value interface{}) Field {
	return Field{fields: []zap.Field{zap.Any(key, value)}}
}

// WithFields creates a logging attribute carrying multiple key/value pairs.
func WithFields(fields map[string]interface{}) Field {
	zs := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zs = append(zs, zap.Any(k, v))
	}
	return Field{fields: zs}
}

// Logger is a leveled structured logger used across all services.
type Logger struct {
	z *zap.Logger
}

// New creates a logger writing JSON lines to stderr at the given level.
func New(level Level) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		zapLevel(level),
	)

	return &Logger{z: zap.New(core)}
}

// NewNop creates a logger that discards everything. Useful in tests.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop()}
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func flatten(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.fields...)
	}
	return out
}

// Debug logs a message at debug level.
func (l *Logger) Debug(msg string, fields ...Field) {
	l.z.Debug(msg, flatten(fields)...)
}

// Info logs a message at info level.
func (l *Logger) Info(msg string, fields ...Field) {
	l.z.Info(msg, flatten(fields)...)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.z.Warn(msg, flatten(fields)...)
}

// Error logs a message at error level.
func (l *Logger) Error(msg string, fields ...Field) {
	l.z.Error(msg, flatten(fields)...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() {
	_ = l.z.Sync()
}
