package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"quartermaster/internal/cache"
	"quartermaster/internal/models"
	"quartermaster/internal/observability"

	"gorm.io/gorm"
)

// ResourceFilter narrows a catalog listing.
type ResourceFilter struct {
	Search   string
	Category string
}

// ResourceRepository defines persistence operations for catalog resources.
type ResourceRepository interface {
	List(ctx context.Context, filter ResourceFilter) ([]models.Resource, error)
	Categories(ctx context.Context) ([]string, error)
	GetByID(ctx context.Context, id uint) (*models.Resource, error)
	Create(ctx context.Context, resource *models.Resource) error
	Update(ctx context.Context, resource *models.Resource) error
	Delete(ctx context.Context, id uint) error
	// Debit atomically subtracts quantity if enough stock remains.
	// It reports false, with no change, when stock is short or the resource is gone.
	Debit(ctx context.Context, id uint, quantity int) (bool, error)
	Count(ctx context.Context) (total int64, outOfStock int64, err error)
	// WithTx returns a repository bound to tx that bypasses the cache.
	WithTx(tx *gorm.DB) ResourceRepository
}

type resourceRepository struct {
	db     *gorm.DB
	cached bool
	log    *observability.RepoLogger
}

// NewResourceRepository returns a new ResourceRepository implementation.
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db, cached: true, log: observability.NewRepoLogger("resources")}
}

func (r *resourceRepository) WithTx(tx *gorm.DB) ResourceRepository {
	return &resourceRepository{db: tx, cached: false, log: r.log}
}

func (r *resourceRepository) List(ctx context.Context, filter ResourceFilter) ([]models.Resource, error) {
	q := r.db.WithContext(ctx).Model(&models.Resource{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		q = q.Where("category = ?", c)
	}

	resources := []models.Resource{}
	if err := q.Order("created_at DESC, id DESC").Find(&resources).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return resources, nil
}

func (r *resourceRepository) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	fetch := func() error {
		return r.db.WithContext(ctx).Model(&models.Resource{}).
			Distinct().Order("category").Pluck("category", &categories).Error
	}
	var err error
	if r.cached {
		err = cache.Aside(ctx, cache.CategoriesKey, &categories, cache.CategoriesTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

func (r *resourceRepository) GetByID(ctx context.Context, id uint) (*models.Resource, error) {
	var resource models.Resource
	fetch := func() error {
		if err := r.db.WithContext(ctx).First(&resource, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Resource", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	}

	var err error
	if r.cached {
		err = cache.Aside(ctx, cache.ResourceKey(id), &resource, cache.ResourceTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *resourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	if err := r.db.WithContext(ctx).Create(resource).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.CategoriesKey)
	r.log.LogCreate(ctx, map[string]interface{}{"resource_id": resource.ID, "quantity": resource.QuantityAvailable})
	return nil
}

func (r *resourceRepository) Update(ctx context.Context, resource *models.Resource) error {
	result := r.db.WithContext(ctx).Model(&models.Resource{}).
		Where("id = ?", resource.ID).
		Updates(map[string]interface{}{
			"name":               resource.Name,
			"description":        resource.Description,
			"category":           resource.Category,
			"quantity_available": resource.QuantityAvailable,
			"updated_at":         time.Now().UTC(),
		})
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "update")
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Resource", resource.ID)
	}
	cache.InvalidateResource(ctx, resource.ID)
	r.log.LogUpdate(ctx, map[string]interface{}{"resource_id": resource.ID})
	return nil
}

func (r *resourceRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Resource{}, id)
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "delete")
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Resource", id)
	}
	cache.InvalidateResource(ctx, id)
	r.log.LogDelete(ctx, map[string]interface{}{"resource_id": id})
	return nil
}

func (r *resourceRepository) Debit(ctx context.Context, id uint, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Resource{}).
		Where("id = ? AND quantity_available >= ?", id, quantity).
		Updates(map[string]interface{}{
			"quantity_available": gorm.Expr("quantity_available - ?", quantity),
			"updated_at":         time.Now().UTC(),
		})
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "debit")
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"resource_id": id, "debited": quantity})
	return true, nil
}

func (r *resourceRepository) Count(ctx context.Context) (int64, int64, error) {
	var total, outOfStock int64
	db := r.db.WithContext(ctx).Model(&models.Resource{})
	if err := db.Count(&total).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Resource{}).
		Where("quantity_available = 0").Count(&outOfStock).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	return total, outOfStock, nil
}
