package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

type swapRequestRepo interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	List(ctx context.Context, filter models.SwapRequestFilter) ([]models.SwapRequest, int, error)
	FindByID(ctx context.Context, id string) (*models.SwapRequest, error)
	Create(ctx context.Context, request *models.SwapRequest) error
	UpdateStatus(ctx context.Context, tx *sqlx.Tx, request *models.SwapRequest) error
}

type swapAssignmentRepo interface {
	FindByID(ctx context.Context, tx *sqlx.Tx, id string) (*models.Assignment, error)
	UpdateDoctor(ctx context.Context, tx *sqlx.Tx, assignmentID, doctorID string) error
}

// CreateSwapRequestRequest describes a doctor's request to trade or give away
// one of their assignments.
type CreateSwapRequestRequest struct {
	RequesterAssignmentID string                 `json:"requester_assignment_id" validate:"required"`
	RequestType           models.SwapRequestType  `json:"request_type" validate:"required,oneof=swap giveaway"`
	TargetID              *string                `json:"target_id"`
	TargetAssignmentID    *string                `json:"target_assignment_id"`
	Message               *string                `json:"message"`
}

// SwapService coordinates doctor-initiated swap and giveaway requests:
// creation, acceptance (which exchanges assignment ownership), rejection,
// and cancellation.
type SwapService struct {
	repo          swapRequestRepo
	assignments   swapAssignmentRepo
	notifications *NotificationService
	audit         *AuditService
	logger        *zap.Logger
}

// NewSwapService wires the swap request workflow. notifications and audit
// may be nil, in which case those side effects are skipped.
func NewSwapService(repo swapRequestRepo, assignments swapAssignmentRepo, notifications *NotificationService, audit *AuditService, logger *zap.Logger) *SwapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SwapService{repo: repo, assignments: assignments, notifications: notifications, audit: audit, logger: logger}
}

// List returns swap requests matching filters.
func (s *SwapService) List(ctx context.Context, filter models.SwapRequestFilter) ([]models.SwapRequest, *models.Pagination, error) {
	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list swap requests")
	}
	return requests, paginationOf(filter.Page, filter.PageSize, total), nil
}

// Create registers a new swap or giveaway request. The requester must own
// the assignment being offered; a two-way swap additionally requires a
// target assignment.
func (s *SwapService) Create(ctx context.Context, requesterID string, req CreateSwapRequestRequest) (*models.SwapRequest, error) {
	offered, err := s.assignments.FindByID(ctx, nil, req.RequesterAssignmentID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "requester assignment not found")
	}
	if offered.DoctorID != requesterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "requester does not own the offered assignment")
	}
	if req.RequestType == models.SwapTypeSwap && req.TargetAssignmentID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a swap request requires a target assignment")
	}

	request := &models.SwapRequest{
		RequesterID:           requesterID,
		TargetID:              req.TargetID,
		RequesterAssignmentID: req.RequesterAssignmentID,
		TargetAssignmentID:    req.TargetAssignmentID,
		RequestType:           req.RequestType,
		Status:                models.SwapRequestPending,
		Message:               req.Message,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create swap request")
	}

	if s.notifications != nil && req.TargetID != nil {
		s.notifications.Notify(ctx, *req.TargetID, models.NotificationSwapReceived, models.NotificationPriorityNormal,
			"New swap request", "a colleague has requested a shift swap", strPtr("swap_request"), &request.ID)
	}
	if s.audit != nil {
		s.audit.Record(ctx, &models.AuditLog{UserID: &requesterID, Action: models.AuditActionSwapRequest, Resource: "swap_requests", ResourceID: &request.ID})
	}
	return request, nil
}

// Accept approves a pending swap request. For a two-way swap it exchanges
// the doctor on both assignments; for a giveaway it reassigns the offered
// assignment to the responder. Both the assignment update(s) and the
// request's status transition commit in one transaction.
func (s *SwapService) Accept(ctx context.Context, requestID, responderID string, responseMessage *string) (*models.SwapRequest, error) {
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "swap request not found")
	}
	if request.Status != models.SwapRequestPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "swap request is not pending")
	}
	if request.TargetID != nil && *request.TargetID != responderID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "swap request is not addressed to this doctor")
	}

	tx, err := s.repo.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if request.RequestType == models.SwapTypeSwap {
		target, tErr := s.assignments.FindByID(ctx, tx, *request.TargetAssignmentID)
		if tErr != nil {
			err = appErrors.Clone(appErrors.ErrNotFound, "target assignment not found")
			return nil, err
		}
		if target.DoctorID != responderID {
			err = appErrors.Clone(appErrors.ErrForbidden, "responder does not own the target assignment")
			return nil, err
		}
		if err = s.assignments.UpdateDoctor(ctx, tx, request.RequesterAssignmentID, responderID); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign requester assignment")
			return nil, err
		}
		if err = s.assignments.UpdateDoctor(ctx, tx, *request.TargetAssignmentID, request.RequesterID); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign target assignment")
			return nil, err
		}
	} else {
		if err = s.assignments.UpdateDoctor(ctx, tx, request.RequesterAssignmentID, responderID); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign offered assignment")
			return nil, err
		}
	}

	now := time.Now().UTC()
	request.Status = models.SwapRequestAccepted
	request.ApprovedByID = &responderID
	request.ApprovedAt = &now
	request.RespondedAt = &now
	request.ResponseMessage = responseMessage
	if err = s.repo.UpdateStatus(ctx, tx, request); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update swap request status")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit swap acceptance")
		return nil, err
	}

	if s.notifications != nil {
		s.notifications.Notify(ctx, request.RequesterID, models.NotificationSwapAccepted, models.NotificationPriorityNormal,
			"Swap accepted", "your swap request was accepted", strPtr("swap_request"), &request.ID)
	}
	if s.audit != nil {
		s.audit.Record(ctx, &models.AuditLog{UserID: &responderID, Action: models.AuditActionSwapApprove, Resource: "swap_requests", ResourceID: &request.ID})
	}
	return request, nil
}

// Reject declines a pending swap request without touching any assignment.
func (s *SwapService) Reject(ctx context.Context, requestID, responderID string, responseMessage *string) (*models.SwapRequest, error) {
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "swap request not found")
	}
	if request.Status != models.SwapRequestPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "swap request is not pending")
	}
	if request.TargetID != nil && *request.TargetID != responderID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "swap request is not addressed to this doctor")
	}

	now := time.Now().UTC()
	request.Status = models.SwapRequestRejected
	request.RespondedAt = &now
	request.ResponseMessage = responseMessage
	if err := s.repo.UpdateStatus(ctx, nil, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update swap request status")
	}

	if s.notifications != nil {
		s.notifications.Notify(ctx, request.RequesterID, models.NotificationSwapDeclined, models.NotificationPriorityNormal,
			"Swap declined", "your swap request was declined", strPtr("swap_request"), &request.ID)
	}
	if s.audit != nil {
		s.audit.Record(ctx, &models.AuditLog{UserID: &responderID, Action: models.AuditActionSwapReject, Resource: "swap_requests", ResourceID: &request.ID})
	}
	return request, nil
}

// Cancel withdraws a pending swap request. Only the requester may cancel.
func (s *SwapService) Cancel(ctx context.Context, requestID, requesterID string) (*models.SwapRequest, error) {
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "swap request not found")
	}
	if request.RequesterID != requesterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the requester may cancel this request")
	}
	if request.Status != models.SwapRequestPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "swap request is not pending")
	}

	now := time.Now().UTC()
	request.Status = models.SwapRequestCancelled
	request.RespondedAt = &now
	if err := s.repo.UpdateStatus(ctx, nil, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update swap request status")
	}
	if s.notifications != nil && request.TargetID != nil {
		s.notifications.Notify(ctx, *request.TargetID, models.NotificationSwapCancelled, models.NotificationPriorityLow,
			"Swap cancelled", "a swap request addressed to you was cancelled", strPtr("swap_request"), &request.ID)
	}
	return request, nil
}

func strPtr(v string) *string { return &v }
