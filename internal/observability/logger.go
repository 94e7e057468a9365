package observability

import (
	"context"
	"fmt"
	"strings"

	"github.com/lejendary/oauth2-server/internal/security"
	"github.com/lejendary/oauth2-server/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging with context awareness.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
}

// Field represents a structured log field.
type Field = zap.Field

// NewLogger builds a zap logger. format is "json" or "console"/"text".
func NewLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(format) {
	case "", "json":
		cfg = zap.NewProductionConfig()
	case "console", "text":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

type contextLogger struct {
	base *zap.Logger
}

// NewContextLogger wraps base so every entry carries the request ID and the
// login of the current principal when the context has them.
func NewContextLogger(base *zap.Logger) Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &contextLogger{base: base}
}

func (l *contextLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.base.Debug(msg, l.with(ctx, fields)...)
}

func (l *contextLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.base.Info(msg, l.with(ctx, fields)...)
}

func (l *contextLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.base.Warn(msg, l.with(ctx, fields)...)
}

func (l *contextLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.base.Error(msg, l.with(ctx, fields)...)
}

// ContextFields returns the request-scoped fields for ctx.
func ContextFields(ctx context.Context) []Field {
	if ctx == nil {
		return nil
	}
	var fields []Field
	if id := middleware.GetRequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if login := security.CurrentLogin(ctx); login != "" {
		fields = append(fields, zap.String("login", login))
	}
	return fields
}

func (l *contextLogger) with(ctx context.Context, fields []Field) []Field {
	return append(ContextFields(ctx), fields...)
}
