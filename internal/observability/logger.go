package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger — структурный логгер поверх slog: stderr + файл с ротацией
type Logger struct {
	slog *slog.Logger
	file *lumberjack.Logger
}

// NewLogger создаёт логгер. Пустой logPath — только stderr.
func NewLogger(logPath, logLevel, format string) *Logger {
	var (
		out  io.Writer = os.Stderr
		file *lumberjack.Logger
	)
	if logPath != "" {
		file = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // дней
		}
		out = io.MultiWriter(os.Stderr, file)
	}

	return &Logger{
		slog: slog.New(newHandler(out, format, parseLevel(logLevel))),
		file: file,
	}
}

// NewNopLogger — логгер для тестов, ничего не пишет
func NewNopLogger() *Logger {
	return &Logger{
		slog: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func newHandler(out io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(out, opts)
	}
	return slog.NewTextHandler(out, opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With добавляет поля ко всем сообщениям
func (l *Logger) With(fields ...any) *Logger {
	return &Logger{slog: l.slog.With(fields...), file: l.file}
}

func (l *Logger) Debug(msg string, fields ...any) {
	l.slog.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...any) {
	l.slog.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...any) {
	l.slog.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...any) {
	l.slog.Error(msg, fields...)
}

// Close закрывает файл лога
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
