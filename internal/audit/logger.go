// Package audit appends an immutable record for every delivered change
// notification.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/myspares/catalog-platform/internal/feed"
	"github.com/myspares/catalog-platform/internal/models"
	repository "github.com/myspares/catalog-platform/internal/repositories"
)

type Logger struct {
	audits repository.AuditRepository
}

func NewLogger(audits repository.AuditRepository) *Logger {
	return &Logger{audits: audits}
}

// Handle implements feed.Handler. A storage failure is logged locally and
// swallowed; the listener loop must keep running whether or not the audit
// append succeeded. Duplicate rows under redelivery are accepted.
func (l *Logger) Handle(ctx context.Context, event *feed.ChangeEvent) {
	record := &models.AuditRecord{
		ID:            uuid.New(),
		Collection:    string(event.Collection),
		Operation:     string(event.Operation),
		DocumentKey:   event.DocumentKey,
		FullDocument:  event.FullDocument,
		UpdatedFields: event.UpdatedFields,
		Timestamp:     event.Timestamp,
	}

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	if err := l.audits.Insert(ctx, record); err != nil {
		slog.Error("failed to log audit record",
			slog.String("collection", record.Collection),
			slog.String("operation", record.Operation),
			slog.String("documentKey", record.DocumentKey.String()),
			slog.Any("error", err))
	}
}
