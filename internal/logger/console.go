package logger

import (
	"context"
	"io"
	"os"

	"shopsearch/internal/models"

	"github.com/rs/zerolog"
)

// ConsoleLogger implements Service by writing JSON lines through zerolog
type ConsoleLogger struct {
	log zerolog.Logger
}

// NewConsoleLogger creates a logger writing to stdout. debug lowers the level to debug.
func NewConsoleLogger(debug bool) Service {
	return newConsoleLogger(os.Stdout, debug)
}

// newConsoleLogger creates the concrete implementation
func newConsoleLogger(w io.Writer, debug bool) *ConsoleLogger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return &ConsoleLogger{
		log: zerolog.New(w).Level(level).With().Timestamp().Str("service", "shopsearch").Logger(),
	}
}

// LogInfo logs an informational message
func (l *ConsoleLogger) LogInfo(ctx context.Context, operation, message string, metadata map[string]interface{}) {
	l.write(l.log.Info(), ctx, operation, "", metadata).Msg(message)
}

// LogSuccess logs a successful operation
func (l *ConsoleLogger) LogSuccess(ctx context.Context, operation, targetName, message string, metadata map[string]interface{}) {
	l.write(l.log.Info(), ctx, operation, targetName, metadata).Bool("success", true).Msg(message)
}

// LogError logs an error with required severity
func (l *ConsoleLogger) LogError(ctx context.Context, operation, targetName, message string, err error, severity models.LogSeverity, metadata map[string]interface{}) {
	event := l.log.Error()
	if severity == models.LogSeverityLow {
		event = l.log.Warn()
	}
	l.write(event, ctx, operation, targetName, metadata).
		Err(err).
		Str("severity", string(severity)).
		Msg(message)
}

// write attaches the fields shared by every entry
func (l *ConsoleLogger) write(event *zerolog.Event, ctx context.Context, operation, targetName string, metadata map[string]interface{}) *zerolog.Event {
	logEvent := GetLogEvent(ctx)

	event = event.
		Str("operation", operation).
		Str("process_id", logEvent.ProcessID).
		Str("process_type", string(logEvent.ProcessType))

	if logEvent.ClientIP != "" {
		event = event.Str("client_ip", logEvent.ClientIP)
	}
	if targetName != "" {
		event = event.Str("target", targetName)
	}
	if len(metadata) > 0 {
		event = event.Interface("metadata", metadata)
	}
	return event
}

// Close is a no-op for stdout
func (l *ConsoleLogger) Close() error {
	return nil
}
