package logger

import (
	"context"
	"time"

	"shopsearch/internal/models"

	"github.com/google/uuid"
)

type contextKey string

const logEventKey contextKey = "log_event"

// NewLogEvent creates a log event with a fresh process id
func NewLogEvent(processType models.ProcessType, clientIP string) *models.LogEvent {
	return &models.LogEvent{
		ProcessID:   uuid.New().String(),
		ProcessType: processType,
		StartTime:   time.Now().UTC(),
		ClientIP:    clientIP,
	}
}

// WithLogEvent adds a log event to the context
func WithLogEvent(ctx context.Context, logEvent *models.LogEvent) context.Context {
	return context.WithValue(ctx, logEventKey, logEvent)
}

// GetLogEvent retrieves the log event from context.
// A context without one yields a new internal event.
func GetLogEvent(ctx context.Context) *models.LogEvent {
	if le, ok := ctx.Value(logEventKey).(*models.LogEvent); ok && le != nil {
		return le
	}
	return NewInternalLogEvent()
}

// NewRequestLogEvent creates a log event for an HTTP request.
// A valid UUID supplied by the caller (X-Request-ID) is kept as the process id.
func NewRequestLogEvent(clientIP, requestID string) *models.LogEvent {
	event := NewLogEvent(models.ProcessTypeRequest, clientIP)
	if parsed, err := uuid.Parse(requestID); err == nil {
		event.ProcessID = parsed.String()
	}
	return event
}

// NewInternalLogEvent creates a log event for internal processes
func NewInternalLogEvent() *models.LogEvent {
	return NewLogEvent(models.ProcessTypeInternal, "")
}
