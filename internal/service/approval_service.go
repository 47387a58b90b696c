package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"quartermaster/internal/access"
	"quartermaster/internal/cache"
	"quartermaster/internal/models"
	"quartermaster/internal/notifications"
	"quartermaster/internal/observability"
	"quartermaster/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// ApprovalService moves pending requests to approved or rejected.
type ApprovalService struct {
	db           *gorm.DB
	requestRepo  repository.RequestRepository
	resourceRepo repository.ResourceRepository
	events       EventPublisher
	now          func() time.Time
}

type SetStatusInput struct {
	RequestID       uint
	Status          models.RequestStatus
	RejectionReason string
}

func NewApprovalService(
	db *gorm.DB,
	requestRepo repository.RequestRepository,
	resourceRepo repository.ResourceRepository,
	events EventPublisher,
) *ApprovalService {
	return &ApprovalService{
		db:           db,
		requestRepo:  requestRepo,
		resourceRepo: resourceRepo,
		events:       publisherOrNoop(events),
		now:          time.Now,
	}
}

// SetStatus reviews a pending request. Approval debits the resource in the
// same transaction that records the transition, so either both happen or
// neither does.
func (s *ApprovalService) SetStatus(ctx context.Context, p *access.Principal, in SetStatusInput) (req *models.Request, err error) {
	span, ctx := observability.NewSpan(ctx, "ApprovalService.SetStatus")
	defer span.End()
	span.AddAttributes(
		attribute.Int("request.id", int(in.RequestID)),
		attribute.String("request.status", string(in.Status)),
	)

	start := s.now()
	defer func() {
		outcome := "ok"
		if err != nil {
			span.SetError(err)
			outcome = outcomeFor(err)
		}
		observability.RecordReview(statusLabel(in.Status), outcome)
	}()

	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	var reason *string
	if in.Status == models.RequestStatusRejected {
		if r := strings.TrimSpace(in.RejectionReason); r != "" {
			reason = &r
		}
	}

	var reviewed models.Request
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := s.requestRepo.WithTx(tx)
		resources := s.resourceRepo.WithTx(tx)

		current, err := requests.GetByID(ctx, in.RequestID)
		if err != nil {
			return err
		}
		if in.Status != models.RequestStatusApproved && in.Status != models.RequestStatusRejected {
			return models.NewValidationError("status must be one of: approved rejected")
		}
		if !current.IsPending() {
			return models.NewAlreadyReviewedError(current.ID, current.Status)
		}

		if in.Status == models.RequestStatusApproved {
			resource, err := resources.GetByID(ctx, current.ResourceID)
			if err != nil {
				return err
			}
			ok, err := resources.Debit(ctx, resource.ID, current.QuantityRequested)
			if err != nil {
				return err
			}
			if !ok {
				return models.NewInsufficientStockError(resource.QuantityAvailable, current.QuantityRequested)
			}
		}

		ok, err := requests.TransitionFromPending(ctx, current.ID, repository.Transition{
			Status:          in.Status,
			ReviewerID:      p.UserID,
			ReviewedAt:      s.now().UTC(),
			RejectionReason: reason,
		})
		if err != nil {
			return err
		}
		if !ok {
			// Another reviewer committed first; rolling back undoes the debit.
			return models.NewAlreadyReviewedError(current.ID, models.RequestStatus("reviewed"))
		}
		reviewed = *current
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	observability.ReviewLatency.WithLabelValues(string(in.Status)).Observe(s.now().Sub(start).Seconds())
	if in.Status == models.RequestStatusApproved {
		cache.InvalidateResource(ctx, reviewed.ResourceID)
		observability.StockDebitedTotal.Add(float64(reviewed.QuantityRequested))
	}

	updated, err := s.requestRepo.GetByID(ctx, reviewed.ID)
	if err != nil {
		return nil, err
	}

	pubErr := s.events.PublishUser(ctx, updated.UserID, notifications.NewEvent(notifications.EventRequestReviewed, updated))
	logPublishError(ctx, "publish_request_reviewed", pubErr, map[string]interface{}{"request_id": updated.ID})

	return updated, nil
}

func outcomeFor(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return strings.ToLower(appErr.Code)
	}
	return "error"
}

// statusLabel keeps caller input out of metric label values.
func statusLabel(st models.RequestStatus) string {
	if st.Valid() {
		return string(st)
	}
	return "invalid"
}
