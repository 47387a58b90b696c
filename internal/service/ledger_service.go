package service

import (
	"context"
	"strings"

	"quartermaster/internal/access"
	"quartermaster/internal/models"
	"quartermaster/internal/notifications"
	"quartermaster/internal/observability"
	"quartermaster/internal/repository"
	"quartermaster/internal/validation"
)

type LedgerService struct {
	requestRepo  repository.RequestRepository
	resourceRepo repository.ResourceRepository
	events       EventPublisher
}

type CreateRequestInput struct {
	ResourceID        uint   `json:"resource_id" validate:"required"`
	QuantityRequested int    `json:"quantity_requested" validate:"gt=0"`
	Purpose           string `json:"purpose" validate:"notblank,max=2000"`
}

func NewLedgerService(
	requestRepo repository.RequestRepository,
	resourceRepo repository.ResourceRepository,
	events EventPublisher,
) *LedgerService {
	return &LedgerService{
		requestRepo:  requestRepo,
		resourceRepo: resourceRepo,
		events:       publisherOrNoop(events),
	}
}

// ListAll returns every request, optionally narrowed to one status. Admin only.
func (s *LedgerService) ListAll(ctx context.Context, p *access.Principal, status string) ([]models.Request, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	filter := repository.RequestFilter{}
	if status != "" {
		st := models.RequestStatus(strings.ToLower(strings.TrimSpace(status)))
		if !st.Valid() {
			return nil, models.NewValidationError("status must be one of: pending approved rejected")
		}
		filter.Status = st
	}
	return s.requestRepo.List(ctx, filter)
}

func (s *LedgerService) ListMine(ctx context.Context, p *access.Principal) ([]models.Request, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	userID := p.UserID
	return s.requestRepo.List(ctx, repository.RequestFilter{UserID: &userID})
}

// Create records a pending request. Stock is not checked or reserved here;
// it is only debited when an administrator approves.
func (s *LedgerService) Create(ctx context.Context, p *access.Principal, in CreateRequestInput) (*models.Request, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.resourceRepo.GetByID(ctx, in.ResourceID); err != nil {
		return nil, err
	}

	request := &models.Request{
		UserID:            p.UserID,
		ResourceID:        in.ResourceID,
		QuantityRequested: in.QuantityRequested,
		Purpose:           strings.TrimSpace(in.Purpose),
		Status:            models.RequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}
	observability.RequestsCreatedTotal.Inc()

	created, err := s.requestRepo.GetByID(ctx, request.ID)
	if err != nil {
		return nil, err
	}

	err = s.events.PublishAdmins(ctx, notifications.NewEvent(notifications.EventRequestCreated, created))
	logPublishError(ctx, "publish_request_created", err, map[string]interface{}{"request_id": created.ID})

	return created, nil
}

// Stats returns dashboard counters: global for admins, own requests otherwise.
func (s *LedgerService) Stats(ctx context.Context, p *access.Principal) (*models.RequestStats, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return nil, err
	}

	var scope *uint
	if !p.IsAdmin() {
		userID := p.UserID
		scope = &userID
	}
	counts, err := s.requestRepo.CountByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}
	totalResources, outOfStock, err := s.resourceRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.RequestStats{
		PendingRequests:  counts[models.RequestStatusPending],
		ApprovedRequests: counts[models.RequestStatusApproved],
		RejectedRequests: counts[models.RequestStatusRejected],
		TotalResources:   totalResources,
	}
	stats.TotalRequests = stats.PendingRequests + stats.ApprovedRequests + stats.RejectedRequests
	if p.IsAdmin() {
		stats.OutOfStockResources = outOfStock
	}
	return stats, nil
}
