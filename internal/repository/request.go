package repository

import (
	"context"
	"errors"
	"time"

	"quartermaster/internal/models"
	"quartermaster/internal/observability"

	"gorm.io/gorm"
)

// RequestFilter narrows a request listing.
type RequestFilter struct {
	Status models.RequestStatus
	UserID *uint
}

// Transition describes the review outcome written onto a pending request.
type Transition struct {
	Status          models.RequestStatus
	ReviewerID      uint
	ReviewedAt      time.Time
	RejectionReason *string
}

// RequestRepository defines persistence operations for resource requests.
type RequestRepository interface {
	List(ctx context.Context, filter RequestFilter) ([]models.Request, error)
	GetByID(ctx context.Context, id uint) (*models.Request, error)
	Create(ctx context.Context, request *models.Request) error
	// TransitionFromPending applies t only if the request is still pending.
	// It reports false when another reviewer got there first.
	TransitionFromPending(ctx context.Context, id uint, t Transition) (bool, error)
	CountByStatus(ctx context.Context, userID *uint) (map[models.RequestStatus]int64, error)
	WithTx(tx *gorm.DB) RequestRepository
}

type requestRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewRequestRepository returns a new RequestRepository implementation.
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db, log: observability.NewRepoLogger("requests")}
}

func (r *requestRepository) WithTx(tx *gorm.DB) RequestRepository {
	return &requestRepository{db: tx, log: r.log}
}

// withJoins preloads the related records; deleted resources stay visible in history.
func withJoins(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Resource", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Preload("User").
		Preload("Reviewer")
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]models.Request, error) {
	q := withJoins(r.db.WithContext(ctx))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}

	requests := []models.Request{}
	if err := q.Order("created_at DESC, id DESC").Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *requestRepository) GetByID(ctx context.Context, id uint) (*models.Request, error) {
	var request models.Request
	if err := withJoins(r.db.WithContext(ctx)).First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *requestRepository) Create(ctx context.Context, request *models.Request) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{
		"request_id":  request.ID,
		"resource_id": request.ResourceID,
		"quantity":    request.QuantityRequested,
	})
	return nil
}

func (r *requestRepository) TransitionFromPending(ctx context.Context, id uint, t Transition) (bool, error) {
	reviewedAt := t.ReviewedAt.UTC()
	reviewerID := t.ReviewerID
	result := r.db.WithContext(ctx).Model(&models.Request{}).
		Where("id = ? AND status = ?", id, models.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":              t.Status,
			"reviewed_by_user_id": &reviewerID,
			"reviewed_at":         &reviewedAt,
			"rejection_reason":    t.RejectionReason,
			"updated_at":          reviewedAt,
		})
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "transition")
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"request_id": id, "status": t.Status})
	return true, nil
}

func (r *requestRepository) CountByStatus(ctx context.Context, userID *uint) (map[models.RequestStatus]int64, error) {
	var rows []struct {
		Status models.RequestStatus
		Count  int64
	}
	q := r.db.WithContext(ctx).Model(&models.Request{}).Select("status, COUNT(*) AS count")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if err := q.Group("status").Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	counts := make(map[models.RequestStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
