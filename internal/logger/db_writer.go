package logger

import (
	"context"
	"fmt"
	"time"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level      zapcore.Level
	Message    string
	ScheduleID string
	Caller     string // Function name
}

// LogSink is the part of *mongo.Collection the writer needs.
type LogSink interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	collection LogSink
	logChan    chan LogEntry
	appId      string
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(collection LogSink, appId string) *DBLogWriter {
	writer := &DBLogWriter{
		collection: collection,
		logChan:    make(chan LogEntry, 1000), // Buffer 1000 logs
		appId:      appId,
	}

	go writer.processLogs()

	return writer
}

// AddLog is called by our Zap hook
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		// Channel full: drop rather than block the caller
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

func (w *DBLogWriter) processLogs() {
	for entry := range w.logChan {
		logRecord := common_models.Log{
			AppID:        w.appId,
			Message:      entry.Message,
			Caller:       entry.Caller,
			ScheduleID:   entry.ScheduleID,
			LogLevelId:   mapLevelToInt(entry.Level),
			CreatedOnUtc: time.Now().UTC(),
		}

		// Errors are ignored to keep the app running
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, _ = w.collection.InsertOne(ctx, logRecord)
		cancel()
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
