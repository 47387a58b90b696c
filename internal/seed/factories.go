// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"

	"quartermaster/internal/auth"
	"quartermaster/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DemoPassword is the password given to every generated user.
const DemoPassword = "password123"

var demoCategories = []string{"electronics", "instruments", "tools", "av", "lab", "books"}

// Options tune the factory.
type Options struct {
	// EmailDomain is appended to generated user addresses.
	EmailDomain string
	DryRun      bool
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	// synthetic ID counter when running in DryRun mode
	nextID uint
	// cached hash of DemoPassword; bcrypt per user is slow for large batches
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	if opts.EmailDomain == "" {
		opts.EmailDomain = "example.edu"
	}
	return &Factory{db: db, opts: opts, nextID: 1000}
}

// BuildResource returns an unsaved resource with fake content.
func (f *Factory) BuildResource(createdBy uint, overrides ...func(*models.Resource)) *models.Resource {
	r := &models.Resource{
		Name:              gofakeit.ProductName(),
		Description:       gofakeit.Sentence(12),
		Category:          gofakeit.RandomString(demoCategories),
		QuantityAvailable: gofakeit.Number(0, 40),
		CreatedByUserID:   createdBy,
	}
	for _, override := range overrides {
		override(r)
	}
	return r
}

// CreateResources persists n generated resources in one batch.
func (f *Factory) CreateResources(n int, createdBy uint) ([]*models.Resource, error) {
	if n <= 0 {
		return nil, nil
	}
	out := make([]*models.Resource, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.BuildResource(createdBy))
	}
	if f.opts.DryRun {
		for _, r := range out {
			f.nextID++
			r.ID = f.nextID
		}
		log.Printf("[dry-run] CreateResources: %d resources (no DB write)", n)
		return out, nil
	}
	if err := f.db.Create(&out).Error; err != nil {
		return nil, fmt.Errorf("create resources: %w", err)
	}
	return out, nil
}

// CreateUser constructs and persists a sample user with DemoPassword.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	if f.passwordHash == "" {
		hash, err := auth.HashPassword(DemoPassword)
		if err != nil {
			return nil, err
		}
		f.passwordHash = hash
	}

	first := strings.ToLower(gofakeit.FirstName())
	user := &models.User{
		FullName: gofakeit.Name(),
		Email:    fmt.Sprintf("%s.%d@%s", first, gofakeit.Number(1000, 99999), f.opts.EmailDomain),
		Password: f.passwordHash,
		Role:     models.RoleUser,
	}
	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Email)
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return user, nil
}

// CreateUsers persists n generated users.
func (f *Factory) CreateUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return users, err
		}
		users = append(users, u)
	}
	return users, nil
}

// CreateRequest persists a pending request from user for resource.
func (f *Factory) CreateRequest(user *models.User, resource *models.Resource, overrides ...func(*models.Request)) (*models.Request, error) {
	req := &models.Request{
		UserID:            user.ID,
		ResourceID:        resource.ID,
		QuantityRequested: gofakeit.Number(1, 5),
		Purpose:           gofakeit.Sentence(8),
		Status:            models.RequestStatusPending,
	}
	for _, override := range overrides {
		override(req)
	}
	if f.opts.DryRun {
		f.nextID++
		req.ID = f.nextID
		return req, nil
	}
	if err := f.db.Create(req).Error; err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}
