package logger

import (
	"context"
	"sync"
	"time"

	"shopsearch/internal/models"

	"github.com/google/uuid"
)

// DatabaseLogger implements Service by inserting entries into a database.
// Inserts run asynchronously; entries that fail to insert go to the fallback logger.
type DatabaseLogger struct {
	db       DatabaseConnection
	fallback Service
	pending  sync.WaitGroup
}

// NewDatabaseLogger creates a new database logger
func NewDatabaseLogger(db DatabaseConnection, fallback Service) Service {
	return newDatabaseLogger(db, fallback)
}

func newDatabaseLogger(db DatabaseConnection, fallback Service) *DatabaseLogger {
	return &DatabaseLogger{
		db:       db,
		fallback: fallback,
	}
}

// LogInfo logs an informational message (no severity)
func (l *DatabaseLogger) LogInfo(ctx context.Context, operation, message string, metadata map[string]interface{}) {
	l.logEntry(ctx, "", operation, "", message, nil, metadata)
}

// LogSuccess logs a successful operation (no severity)
func (l *DatabaseLogger) LogSuccess(ctx context.Context, operation, targetName, message string, metadata map[string]interface{}) {
	l.logEntry(ctx, "", operation, targetName, message, nil, metadata)
}

// LogError logs an error with required severity
func (l *DatabaseLogger) LogError(ctx context.Context, operation, targetName, message string, err error, severity models.LogSeverity, metadata map[string]interface{}) {
	l.logEntry(ctx, severity, operation, targetName, message, err, metadata)
}

func (l *DatabaseLogger) logEntry(ctx context.Context, severity models.LogSeverity, operation, targetName, message string, err error, metadata map[string]interface{}) {
	logEvent := GetLogEvent(ctx)

	entry := &models.LogEntry{
		ID:          uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		Severity:    severity,
		Message:     message,
		Operation:   operation,
		TargetName:  targetName,
		ProcessID:   logEvent.ProcessID,
		ProcessType: logEvent.ProcessType,
		ClientIP:    logEvent.ClientIP,
		Metadata:    metadata,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	l.pending.Add(1)
	go func() {
		defer l.pending.Done()

		logCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if insertErr := l.db.InsertLog(logCtx, entry); insertErr != nil && l.fallback != nil {
			fallbackCtx := WithLogEvent(context.Background(), logEvent)
			l.fallback.LogError(fallbackCtx, OpLogInsert, operation, "Failed to insert log entry", insertErr, models.LogSeverityLow, map[string]interface{}{
				"message": message,
			})
		}
	}()
}

// Close waits for in-flight inserts and closes the database connection
func (l *DatabaseLogger) Close() error {
	l.pending.Wait()
	return l.db.Close()
}

// LogOperations defines constants for common operations
const (
	OpSearch         = "search"
	OpSearchView     = "search_view"
	OpProductOffers  = "product_offers"
	OpCacheHit       = "cache_hit"
	OpCacheMiss      = "cache_miss"
	OpCacheSet       = "cache_set"
	OpFetchResults   = "fetch_results"
	OpServerStart    = "server_start"
	OpServerShutdown = "server_shutdown"
	OpHealthCheck    = "health_check"
	OpRenderPage     = "render_page"
	OpLogInsert      = "log_insert"
)
