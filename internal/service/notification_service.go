package service

import (
	"zilconnect/internal/domain"
	"zilconnect/internal/metrics"
	"zilconnect/internal/models"
	"zilconnect/internal/repository"

	"go.uber.org/zap"
)

// NotificationService writes the bell-icon side channel. Callers treat every
// method as best-effort: a failed notification is logged here and must never
// fail the operation that triggered it.
type NotificationService struct {
	repo    *repository.NotificationRepository
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, m *metrics.Metrics, log *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, metrics: m, log: log}
}

func (s *NotificationService) Notify(userID uint, notifType, message string, relatedID uint) error {
	err := s.repo.Create(&models.Notification{
		UserID:    userID,
		Type:      notifType,
		Message:   message,
		RelatedID: relatedID,
	})
	if err != nil {
		s.log.Warn("notification create failed",
			zap.Uint("user_id", userID),
			zap.String("type", notifType),
			zap.Error(err))
		return err
	}
	if s.metrics != nil {
		s.metrics.Notifications.WithLabelValues(notifType).Inc()
	}
	return nil
}

func (s *NotificationService) NotifyConnectionRequest(targetUserID uint, senderName string, connectionID uint) error {
	return s.Notify(targetUserID, domain.NotificationConnectionRequest,
		senderName+" sent you a connection request", connectionID)
}

func (s *NotificationService) NotifyConnectionAccepted(requesterUserID uint, accepterName string, connectionID uint) error {
	return s.Notify(requesterUserID, domain.NotificationConnectionAccepted,
		accepterName+" accepted your connection request", connectionID)
}

func (s *NotificationService) NotifyNewMessage(receiverUserID uint, senderBusinessName string, connectionID uint) error {
	return s.Notify(receiverUserID, domain.NotificationNewMessage,
		"New message from "+senderBusinessName, connectionID)
}

func (s *NotificationService) NotifyEnrollmentCreated(userID uint, productName string, enrollmentID uint) error {
	return s.Notify(userID, domain.NotificationSystem,
		"Your enrollment in "+productName+" was received", enrollmentID)
}
