package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel represents logging levels
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration
type Config struct {
	Level       LogLevel
	ServiceName string
	Environment string
	Version     string
	Output      io.Writer
	AddSource   bool
}

// DefaultConfig returns a default logger configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		Level:       LevelInfo,
		ServiceName: serviceName,
		Environment: getEnv("ENVIRONMENT", "development"),
		Version:     getEnv("VERSION", "unknown"),
		Output:      os.Stdout,
	}
}

// Logger wraps slog.Logger with service attributes and aggregation helpers
type Logger struct {
	*slog.Logger
	serviceName string
}

// New creates a new Logger instance
func New(config *Config) *Logger {
	level := slog.LevelInfo
	switch config.Level {
	case LevelDebug:
		level = slog.LevelDebug
	case LevelWarn:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	}

	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level:     level,
		AddSource: config.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339Nano))
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler).With(
			"service", config.ServiceName,
			"environment", config.Environment,
			"version", config.Version,
		),
		serviceName: config.ServiceName,
	}
}

// Discard returns a logger that drops everything. Used by tests and optional components.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *Logger) with(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), serviceName: l.serviceName}
}

// WithContext creates a logger carrying request/correlation/trace ids found in ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	attrs := extractContextAttrs(ctx)
	if len(attrs) == 0 {
		return l
	}
	return l.with(attrs...)
}

// WithError adds an error to the logger
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.with("error", err.Error())
}

// WithComponent adds a component name to the logger
func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

// WithOperation adds an operation name to the logger
func (l *Logger) WithOperation(operation string) *Logger {
	return l.with("operation", operation)
}

// WithFields adds multiple fields to the logger
func (l *Logger) WithFields(fields map[string]any) *Logger {
	attrs := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	return l.with(attrs...)
}

// JoinFailed logs an enrichment join that failed and was dropped from the merged result.
func (l *Logger) JoinFailed(ctx context.Context, join string, err error) {
	l.WithContext(ctx).Warn("Enrichment join failed",
		"join", join,
		"error", errString(err),
	)
}

// QueryFailed logs a primary query failure.
func (l *Logger) QueryFailed(ctx context.Context, operation string, err error) {
	l.WithContext(ctx).WithOperation(operation).Error("Primary query failed",
		"error", errString(err),
	)
}

// Performance logs the duration of an aggregation
func (l *Logger) Performance(ctx context.Context, operation string, duration time.Duration, success bool, details map[string]any) {
	l.WithContext(ctx).WithOperation(operation).WithFields(details).Info("Aggregation completed",
		"durationMs", duration.Milliseconds(),
		"success", success,
	)
}

// Downstream logs a single downstream call at debug level, or error when it failed
func (l *Logger) Downstream(ctx context.Context, service, operation string, duration time.Duration, err error) {
	level := slog.LevelDebug
	attrs := []any{
		"downstream", service,
		"operation", operation,
		"durationMs", duration.Milliseconds(),
	}
	if err != nil {
		level = slog.LevelError
		attrs = append(attrs, "error", err.Error())
	}
	l.WithContext(ctx).Log(ctx, level, "Downstream call", attrs...)
}

// SetDefault sets this logger as the default slog logger
func (l *Logger) SetDefault() {
	slog.SetDefault(l.Logger)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

type contextKey string

const (
	RequestIDKey     contextKey = "requestId"
	CorrelationIDKey contextKey = "correlationId"
	TraceIDKey       contextKey = "traceId"
	SessionIDKey     contextKey = "sessionId"
)

func extractContextAttrs(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	var attrs []any
	for _, key := range []contextKey{RequestIDKey, CorrelationIDKey, TraceIDKey, SessionIDKey} {
		if v := ctx.Value(key); v != nil {
			attrs = append(attrs, string(key), v)
		}
	}
	return attrs
}

// ContextWithRequestID adds request ID to context
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// ContextWithCorrelationID adds correlation ID to context
func ContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}

// ContextWithTraceID adds trace ID to context
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// ContextWithSessionID adds the caller's session ID to context
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
