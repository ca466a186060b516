package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/case-service/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to domain
// events. It returns false when there is nothing to start.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) bool {
	if notificationService == nil {
		return false
	}
	notificationService.RegisterHandlers()
	if logger != nil {
		logger.Info("notification worker started")
	}
	return true
}
