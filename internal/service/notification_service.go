package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

type notificationRepository interface {
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	Create(ctx context.Context, n *models.Notification) error
	MarkRead(ctx context.Context, id, userID string) error
}

// NotificationService delivers in-app notifications triggered by schedule
// publication, swap activity, and leave decisions.
type NotificationService struct {
	repo   notificationRepository
	logger *zap.Logger
}

// NewNotificationService wires the notification repository.
func NewNotificationService(repo notificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger}
}

// List returns one user's notifications with pagination metadata.
func (s *NotificationService) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, *models.Pagination, error) {
	notifications, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, paginationOf(filter.Page, filter.PageSize, total), nil
}

// MarkRead flags a notification read for its owner. A mismatch between the
// caller and the notification's owner is silently a no-op at the repository
// level (the WHERE clause requires both id and user_id), so no extra
// ownership check is needed here.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// Notify creates a notification for a single recipient. Collaborating
// services (schedule, swap, leave) call this directly; failures are logged,
// not propagated, matching the audit service's best-effort posture.
func (s *NotificationService) Notify(ctx context.Context, userID string, notifType models.NotificationType, priority models.NotificationPriority, title, message string, relatedType, relatedID *string) {
	n := &models.Notification{
		UserID:      userID,
		Title:       title,
		Message:     message,
		Type:        notifType,
		Priority:    priority,
		RelatedType: relatedType,
		RelatedID:   relatedID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Warn("failed to create notification", zap.String("user_id", userID), zap.Error(err))
	}
}
