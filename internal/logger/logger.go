package logger

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	base *zap.Logger
	log  *zap.SugaredLogger
)

// Options controls the global logger.
// Env "development" switches to a colored console encoder and debug level.
type Options struct {
	Env    string
	Level  string
	Format string // "json" or "console"
}

// Init builds the global logger. Safe to call more than once; the last call wins.
func Init(opts Options) {
	level := zapcore.InfoLevel
	if opts.Env == "development" {
		level = zapcore.DebugLevel
	}
	if opts.Level != "" {
		if parsed, err := zapcore.ParseLevel(opts.Level); err == nil {
			level = parsed
		}
	}

	format := opts.Format
	if format == "" {
		format = "json"
		if opts.Env == "development" {
			format = "console"
		}
	}

	var encoder zapcore.Encoder
	if format == "console" {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	} else {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
	set(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)))
}

// Replace swaps the global logger, e.g. for zap.NewNop() in tests.
func Replace(l *zap.Logger) {
	set(l)
}

func set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	// helpers below add one frame
	log = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
}

// L returns the structured logger for components that take an injected *zap.Logger.
func L() *zap.Logger {
	mu.RLock()
	l := base
	mu.RUnlock()
	if l == nil {
		Init(Options{Env: "development"})
		return L()
	}
	return l
}

func sugar() *zap.SugaredLogger {
	mu.RLock()
	s := log
	mu.RUnlock()
	if s == nil {
		Init(Options{Env: "development"})
		return sugar()
	}
	return s
}

// Sync flushes buffered entries. Call on shutdown.
func Sync() {
	_ = L().Sync()
}

// ============================================
// Convenience helpers
// ============================================

func Debug(msg string, keysAndValues ...any) {
	sugar().Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...any) {
	sugar().Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...any) {
	sugar().Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...any) {
	sugar().Errorw(msg, keysAndValues...)
}

// Fatal logs and exits with status 1.
func Fatal(msg string, keysAndValues ...any) {
	sugar().Fatalw(msg, keysAndValues...)
}

// With returns a child logger carrying the given fields.
// Example: logger.With("request_id", id).Infow("request approved")
func With(keysAndValues ...any) *zap.SugaredLogger {
	return sugar().With(keysAndValues...)
}

// ============================================
// Specialised loggers
// ============================================

func DBLog(operation, query string, duration time.Duration, err error) {
	fields := []any{
		"operation", operation,
		"query", query,
		"duration_ms", duration.Milliseconds(),
	}

	if err != nil {
		fields = append(fields, zap.Error(err))
		sugar().Errorw("database operation failed", fields...)
		return
	}
	sugar().Debugw("database operation", fields...)
}

// WorkerLog records the outcome of a background job run.
func WorkerLog(worker, operation string, err error, keysAndValues ...any) {
	fields := append([]any{
		"worker", worker,
		"operation", operation,
	}, keysAndValues...)

	if err != nil {
		fields = append(fields, zap.Error(err))
		sugar().Errorw("worker operation failed", fields...)
		return
	}
	sugar().Infow("worker operation completed", fields...)
}
