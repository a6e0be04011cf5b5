package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartNotificationWorker subscribes the notification policy to ticket events.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	if logger != nil {
		logger.Info("notification handlers registered")
	}
}

// StartReportInvalidation drops the cached report rollup whenever a ticket changes.
func StartReportInvalidation(dispatcher events.Dispatcher, reports *service.ReportService, logger *zap.Logger) {
	if dispatcher == nil || reports == nil {
		return
	}
	invalidate := func(ctx context.Context, _ events.Event) error {
		reports.Invalidate(ctx)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketCreated, invalidate)
	dispatcher.Subscribe(events.EventTicketUpdated, invalidate)
	if logger != nil {
		logger.Info("report cache invalidation registered")
	}
}
