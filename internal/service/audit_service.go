package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	ListByResource(ctx context.Context, resource, resourceID string, page, pageSize int) ([]models.AuditLog, int, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.AuditLog, int, error)
}

// AuditService records and surfaces the audit trail. Collaborating services
// call Record directly rather than through an HTTP endpoint; the history
// endpoints are read-only.
type AuditService struct {
	repo   auditRepository
	logger *zap.Logger
}

// NewAuditService wires the audit repository.
func NewAuditService(repo auditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Record stores an audit entry. Failures are logged, not propagated, since an
// audit write must never block the action it is describing.
func (s *AuditService) Record(ctx context.Context, log *models.AuditLog) {
	if err := s.repo.Create(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", log.Action), zap.Error(err))
	}
}

// HistoryForResource returns the audit trail for one entity, newest first.
func (s *AuditService) HistoryForResource(ctx context.Context, resource, resourceID string, page, pageSize int) ([]models.AuditLog, *models.Pagination, error) {
	logs, total, err := s.repo.ListByResource(ctx, resource, resourceID, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit history")
	}
	return logs, paginationOf(page, pageSize, total), nil
}

// HistoryForUser returns every entry recorded for one actor, newest first.
func (s *AuditService) HistoryForUser(ctx context.Context, userID string, page, pageSize int) ([]models.AuditLog, *models.Pagination, error) {
	logs, total, err := s.repo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit history")
	}
	return logs, paginationOf(page, pageSize, total), nil
}

func paginationOf(page, pageSize, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
