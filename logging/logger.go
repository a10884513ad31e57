// Package logging provides a tiny abstraction over slog so the runtime can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer MeshLogger with contextual
// helpers (component, framework, transaction) and domain specific helpers for
// transactions and aborted invocations.
package logging

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"os"
	"runtime"
	"strings"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

var slogLevels = [...]slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

func (l LogLevel) valid() bool { return l >= LogLevelDebug && l <= LogLevelError }

// String returns the upper-case level name.
func (l LogLevel) String() string {
	if !l.valid() {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// slogLevel maps l onto the slog scale. Unknown levels map to info.
func (l LogLevel) slogLevel() slog.Level {
	if !l.valid() {
		return slog.LevelInfo
	}
	return slogLevels[l]
}

// ParseLogLevel maps a level name to a LogLevel. Unknown names yield info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger defines the minimal logging interface of the runtime.
// Args are slog style key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// MeshLogger wraps slog.Logger adding contextual cloning helpers and
// runtime specific convenience methods. With* methods return copies.
type MeshLogger struct {
	logger        *slog.Logger
	context       map[string]any
	component     string
	framework     string
	transactionID string
}

// LoggerConfig configures construction of a MeshLogger.
type LoggerConfig struct {
	Level       LogLevel
	Format      string // json or text
	Output      io.Writer
	AddSource   bool
	Component   string
	CustomAttrs map[string]any
}

// DefaultLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stderr, CustomAttrs: map[string]any{}}
}

// NewLogger builds a MeshLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *MeshLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level.slogLevel(), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	ctx := maps.Clone(cfg.CustomAttrs)
	if ctx == nil {
		ctx = map[string]any{}
	}
	return &MeshLogger{logger: slog.New(handler), context: ctx, component: cfg.Component}
}

func (l *MeshLogger) clone() *MeshLogger {
	nl := *l
	nl.context = maps.Clone(l.context)
	if nl.context == nil {
		nl.context = map[string]any{}
	}
	return &nl
}

// WithContext adds a key/value attribute that will be attached to every log entry.
func (l *MeshLogger) WithContext(key string, value any) *MeshLogger {
	nl := l.clone()
	nl.context[key] = value
	return nl
}

// WithComponent sets the logical component (kernel, framework, delegator, ...).
func (l *MeshLogger) WithComponent(c string) *MeshLogger {
	nl := l.clone()
	nl.component = c
	return nl
}

// WithTransaction attaches framework and transaction identifiers.
func (l *MeshLogger) WithTransaction(framework, txID string) *MeshLogger {
	nl := l.clone()
	nl.framework = framework
	nl.transactionID = txID
	return nl
}

func (l *MeshLogger) buildAttrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, len(l.context)+3)
	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	if l.framework != "" {
		attrs = append(attrs, slog.String("framework", l.framework))
	}
	if l.transactionID != "" {
		attrs = append(attrs, slog.String("transaction_id", l.transactionID))
	}
	for k, v := range l.context {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

func (l *MeshLogger) log(level slog.Level, msg string, args ...any) {
	ctx := context.Background()
	if !l.logger.Handler().Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, callerPC())
	r.AddAttrs(l.buildAttrs()...)
	r.Add(args...)
	_ = l.logger.Handler().Handle(ctx, r)
}

func callerPC() uintptr {
	var pcs [1]uintptr
	// skip runtime.Callers, callerPC, log and the exported level method
	runtime.Callers(4, pcs[:])
	return pcs[0]
}

// Debug logs at debug level.
func (l *MeshLogger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

// Info logs at info level.
func (l *MeshLogger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args...)
}

// Warn logs at warn level.
func (l *MeshLogger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

// Error logs at error level.
func (l *MeshLogger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

// LogTransaction records the end of a framework transaction.
func (l *MeshLogger) LogTransaction(outcome string, dur time.Duration, components, bindings int) {
	level := slog.LevelInfo
	msg := "Transaction committed"
	switch outcome {
	case "rejected":
		level = slog.LevelWarn
		msg = "Transaction rejected by validator"
	case "rolled_back":
		msg = "Transaction rolled back"
	}
	attrs := l.buildAttrs()
	attrs = append(attrs,
		slog.String("outcome", outcome),
		slog.Duration("duration", dur),
		slog.Int("component_count", components),
		slog.Int("binding_count", bindings),
	)
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogInvocationAborted records a call halted by a pre-method.
func (l *MeshLogger) LogInvocationAborted(iid, method, hook string, status any) {
	attrs := l.buildAttrs()
	attrs = append(attrs,
		slog.String("interface", iid),
		slog.String("method", method),
		slog.String("hook", hook),
		slog.Any("status", status),
	)
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "Invocation halted by pre-method", attrs...)
}

// StartTimer returns a closure that logs the elapsed duration when invoked.
func (l *MeshLogger) StartTimer(op string) func() {
	start := time.Now()
	return func() { l.Debug("Operation completed", "operation", op, "duration", time.Since(start)) }
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// NewSlogLogger creates a new MeshLogger with the specified configuration.
func NewSlogLogger(level LogLevel, format string, addSource bool) *MeshLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}

var (
	_ Logger = (*SlogAdapter)(nil)
	_ Logger = (*MeshLogger)(nil)
	_ Logger = NoOpLogger{}
	_ Logger = (*taggedLogger)(nil)
)

// ForComponent tags l with a component name when l supports it.
func ForComponent(l Logger, component string) Logger {
	switch v := l.(type) {
	case nil:
		return NoOpLogger{}
	case *MeshLogger:
		return v.WithComponent(component)
	case *SlogAdapter:
		return &SlogAdapter{Logger: v.With("component", component)}
	default:
		return l
	}
}

// ForTransaction tags l with a framework name and transaction id. The
// returned logger is meant to live as long as the transaction.
func ForTransaction(l Logger, framework, txID string) Logger {
	switch v := l.(type) {
	case nil:
		return NoOpLogger{}
	case NoOpLogger:
		return v
	case *MeshLogger:
		return v.WithTransaction(framework, txID)
	case *SlogAdapter:
		return &SlogAdapter{Logger: v.With("framework", framework, "transaction_id", txID)}
	default:
		return &taggedLogger{next: l, args: []any{"framework", framework, "transaction_id", txID}}
	}
}

// taggedLogger prefixes every entry's args with a fixed set of pairs.
type taggedLogger struct {
	next Logger
	args []any
}

func (t *taggedLogger) with(args []any) []any {
	return append(append(make([]any, 0, len(t.args)+len(args)), t.args...), args...)
}

func (t *taggedLogger) Debug(msg string, args ...any) { t.next.Debug(msg, t.with(args)...) }
func (t *taggedLogger) Info(msg string, args ...any)  { t.next.Info(msg, t.with(args)...) }
func (t *taggedLogger) Warn(msg string, args ...any)  { t.next.Warn(msg, t.with(args)...) }
func (t *taggedLogger) Error(msg string, args ...any) { t.next.Error(msg, t.with(args)...) }

// LogTransaction records the end of a framework transaction on l, which is
// expected to come from ForTransaction.
func LogTransaction(l Logger, outcome string, dur time.Duration, components, bindings int) {
	if ml, ok := l.(*MeshLogger); ok {
		ml.LogTransaction(outcome, dur, components, bindings)
		return
	}
	args := []any{"outcome", outcome, "duration", dur, "component_count", components, "binding_count", bindings}
	if outcome == "rejected" {
		l.Warn("Transaction rejected by validator", args...)
		return
	}
	l.Info("Transaction finished", args...)
}

// LogInvocationAborted records a call halted by a pre-method on l.
func LogInvocationAborted(l Logger, iid, method, hook string, status any) {
	if ml, ok := l.(*MeshLogger); ok {
		ml.LogInvocationAborted(iid, method, hook, status)
		return
	}
	l.Debug("Invocation halted by pre-method", "interface", iid, "method", method, "hook", hook, "status", status)
}

// StartTimer returns a closure that logs the elapsed time of op on l at
// debug level.
func StartTimer(l Logger, op string) func() {
	if ml, ok := l.(*MeshLogger); ok {
		return ml.StartTimer(op)
	}
	start := time.Now()
	return func() { l.Debug("Operation completed", "operation", op, "duration", time.Since(start)) }
}
