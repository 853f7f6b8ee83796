package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tenderdesk/tenderdesk/internal/notifications"
	"github.com/tenderdesk/tenderdesk/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskNotificationScan re-runs the alert rules over current data.
	TaskNotificationScan = "notifications:scan"
	// TaskAuditCleanup prunes audit rows past the retention window.
	TaskAuditCleanup = "audit:cleanup"
)

// NewNotificationScanTask constructs the periodic scan task.
func NewNotificationScanTask() *asynq.Task {
	return asynq.NewTask(TaskNotificationScan, nil)
}

// NewAuditCleanupTask constructs the audit retention task.
func NewAuditCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskAuditCleanup, nil)
}

// NotificationScanHandler returns the handler wired to the notification
// service. The scan is idempotent, so overlapping runs stay safe.
func NotificationScanHandler(svc *notifications.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := svc.Refresh(ctx); err != nil {
			logger.Error("notification scan failed", slog.Any("error", err))
			return err
		}
		logger.Info("notification scan complete")
		return nil
	}
}

// AuditCleanupHandler returns the handler pruning old audit rows.
func AuditCleanupHandler(audit *shared.AuditLogger, retention time.Duration, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := audit.Cleanup(ctx, retention); err != nil {
			logger.Error("audit cleanup failed", slog.Any("error", err))
			return err
		}
		logger.Info("audit cleanup complete")
		return nil
	}
}
