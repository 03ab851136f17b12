package logger

import (
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogrusLogger implements the ports.Logger interface using logrus.
type LogrusLogger struct {
	logger *logrus.Logger
}

// LogLevel defines the logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string level to LogLevel.
func ParseLevel(levelStr string) LogLevel {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo // Default to Info
	}
}

func (l LogLevel) toLogrus() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// New creates a new logrus-backed logger writing to stderr.
func New(level LogLevel) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(level.toLogrus())
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000000",
	})
	return &LogrusLogger{logger: l}
}

func (l *LogrusLogger) entry(fields ...map[string]interface{}) *logrus.Entry {
	if len(fields) > 0 && fields[0] != nil {
		return l.logger.WithFields(logrus.Fields(fields[0]))
	}
	return logrus.NewEntry(l.logger)
}

// Debug logs a message at Debug level.
func (l *LogrusLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.entry(fields...).Debug(msg)
}

// Info logs a message at Info level.
func (l *LogrusLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.entry(fields...).Info(msg)
}

// Warn logs a message at Warning level.
func (l *LogrusLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.entry(fields...).Warn(msg)
}

// Error logs an error message at Error level.
func (l *LogrusLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	entry := l.entry(fields...)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(msg)
}
